package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nurpe/contracts-service/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	ProfileID int64  `json:"profile_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(tokenString string) (model.Principal, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role := model.Role(claims.Role)
	switch role {
	case model.RoleClient, model.RoleContractor, model.RoleAdmin:
	default:
		return model.Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	if claims.ProfileID <= 0 {
		return model.Principal{}, fmt.Errorf("%w: missing profile_id", ErrInvalidToken)
	}

	return model.Principal{ProfileID: claims.ProfileID, Role: role}, nil
}

// Issue signs an access token for the principal that expires after ttl.
func (p *Parser) Issue(principal model.Principal, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	now := time.Now()
	claims := Claims{
		ProfileID: principal.ProfileID,
		Role:      string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", principal.ProfileID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
