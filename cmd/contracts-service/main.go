package main

import (
	"fmt"
	"os"

	"github.com/nurpe/contracts-service/internal/auth"
	"github.com/nurpe/contracts-service/internal/config"
	"github.com/nurpe/contracts-service/internal/db"
	"github.com/nurpe/contracts-service/internal/excel"
	httphandler "github.com/nurpe/contracts-service/internal/http"
	"github.com/nurpe/contracts-service/internal/http/middleware"
	"github.com/nurpe/contracts-service/internal/logger"
	"github.com/nurpe/contracts-service/internal/pdf"
	"github.com/nurpe/contracts-service/internal/repository"
	"github.com/nurpe/contracts-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	ledgerRepo := repository.NewLedgerRepository(database, cfg.DB.TxTimeout)
	contractRepo := repository.NewContractRepository(database)
	reportRepo := repository.NewReportRepository(database)

	retry := service.RetryPolicy{
		MaxAttempts: cfg.Settlement.MaxAttempts,
		BaseDelay:   cfg.Settlement.RetryBaseDelay,
	}
	settlementService := service.NewSettlementService(ledgerRepo, retry, log)
	depositService := service.NewDepositService(ledgerRepo, cfg.Settlement.DepositCapRatio, retry, log)
	contractService := service.NewContractService(contractRepo, pdf.NewGenerator())
	reportService := service.NewReportService(reportRepo, excel.NewGenerator(), cfg.Report.BestClientsLimit)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(settlementService, depositService, contractService, reportService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.CORSAllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
