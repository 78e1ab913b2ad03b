package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vogiaan1904/ticketbottle-museum/config"
	"github.com/vogiaan1904/ticketbottle-museum/internal/repository"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/logger"
)

type SessionService interface {
	CreateSession(ctx context.Context) (CreateSessionOutput, error)
	ValidateToken(ctx context.Context, token string) (string, error)
}

type sessionClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

type sessionService struct {
	store repository.SessionStore
	conf  config.JWTConfig
	ttl   time.Duration
	l     logger.Logger
}

func NewSessionService(
	store repository.SessionStore,
	conf config.JWTConfig,
	ttl time.Duration,
	l logger.Logger,
) SessionService {
	return &sessionService{
		store: store,
		conf:  conf,
		ttl:   ttl,
		l:     l,
	}
}

func (s *sessionService) CreateSession(ctx context.Context) (CreateSessionOutput, error) {
	ssID := uuid.New().String()

	if err := s.store.Create(ctx, ssID, s.ttl); err != nil {
		s.l.Errorf(ctx, "sessionService.CreateSession: %v", err)
		return CreateSessionOutput{}, err
	}

	now := time.Now()
	expAt := now.Add(s.conf.Expiry)

	claims := sessionClaims{
		SessionID: ssID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(s.conf.Secret))
	if err != nil {
		return CreateSessionOutput{}, fmt.Errorf("failed to sign token: %w", err)
	}

	s.l.Infof(ctx, "Session opened: %s", ssID)

	return CreateSessionOutput{
		SessionID: ssID,
		Token:     tokenStr,
		ExpiresAt: expAt,
	}, nil
}

// ValidateToken returns the session id of a signed, unexpired token whose
// session still exists.
func (s *sessionService) ValidateToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrTokenEmpty
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenUnexpectedSignature
		}
		return []byte(s.conf.Secret), nil
	})
	if err != nil {
		s.l.Warnf(ctx, "Invalid JWT token: %v", err)
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !parsed.Valid || claims.SessionID == "" {
		return "", ErrTokenInvalidClaims
	}

	ok, err := s.store.Exists(ctx, claims.SessionID)
	if err != nil {
		s.l.Errorf(ctx, "sessionService.ValidateToken: %v", err)
		return "", err
	}
	if !ok {
		return "", ErrSessionNotFound
	}

	return claims.SessionID, nil
}

// IsTokenError reports whether err means the caller must open a new session.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenEmpty) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrTokenInvalidClaims) ||
		errors.Is(err, ErrSessionNotFound)
}
