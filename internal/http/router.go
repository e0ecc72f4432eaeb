package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/contracts-service/internal/http/middleware"
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, environment string, allowedOrigins []string) *gin.Engine {
	switch strings.ToLower(environment) {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(handler.log))
	router.Use(middleware.CORS(allowedOrigins))

	handler.Register(router, authMiddleware)
	return router
}
