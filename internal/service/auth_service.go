package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/pkg/config"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
)

// AuthService implements the staff password gates. There are no staff user
// accounts, only one shared password per role, so login verifies the bcrypt
// hash for the requested role and issues a session token carrying it.
type AuthService struct {
	config    config.AuthConfig
	validator *validator.Validate
	logger    *zap.Logger
	clock     Clock
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(cfg config.AuthConfig, validate *validator.Validate, logger *zap.Logger, clock Clock) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &AuthService{config: cfg, validator: validate, logger: logger, clock: clock}
}

// Login verifies the shared password for a role and issues a session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	hash := s.config.AdminPasswordHash
	if req.Role == models.RoleLibrary {
		hash = s.config.LibraryPasswordHash
	}
	if hash == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "login is not configured for this role")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		s.logger.Warn("failed staff login attempt", zap.String("role", string(req.Role)))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid role or password")
	}

	issuedAt := s.clock.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiration)
	claims := &models.SessionClaims{
		Role: req.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "defense-portal-api",
			Subject:   string(req.Role),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}

	s.logger.Info("staff login", zap.String("role", string(req.Role)))
	return &models.LoginResponse{
		Token:     signed,
		Role:      req.Role,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.clock.Now() }))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}
