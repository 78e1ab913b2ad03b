package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogiaan1904/ticketbottle-museum/config"
	"github.com/vogiaan1904/ticketbottle-museum/internal/repository/memory"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/logger"
)

func newTestSessionService() SessionService {
	return NewSessionService(
		memory.NewSessionStore(),
		config.JWTConfig{Secret: "test-secret", Expiry: time.Hour},
		time.Hour,
		logger.NewNop(),
	)
}

func TestSessionService_CreateAndValidate(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService()

	out, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, out.SessionID)
	assert.NotEmpty(t, out.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), out.ExpiresAt, time.Minute)

	sid, err := svc.ValidateToken(ctx, out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.SessionID, sid)
}

func TestSessionService_ValidateToken_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService()

	sign := func(secret string, claims jwt.Claims) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty", token: "", wantErr: ErrTokenEmpty},
		{name: "garbage", token: "not.a.jwt", wantErr: ErrTokenInvalid},
		{
			name:    "wrong secret",
			token:   sign("other", sessionClaims{SessionID: "s1"}),
			wantErr: ErrTokenInvalid,
		},
		{
			name: "expired",
			token: sign("test-secret", sessionClaims{
				SessionID:        "s1",
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
			}),
			wantErr: ErrTokenInvalid,
		},
		{
			name:    "no session id",
			token:   sign("test-secret", sessionClaims{}),
			wantErr: ErrTokenInvalidClaims,
		},
		{
			name:    "unknown session",
			token:   sign("test-secret", sessionClaims{SessionID: "ghost"}),
			wantErr: ErrSessionNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(ctx, tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsTokenError(err))
		})
	}
}

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()

	unlockA := k.Lock("a")
	unlockB := k.Lock("b")
	assert.Equal(t, 2, k.len())

	done := make(chan struct{})
	go func() {
		unlock := k.Lock("a")
		unlock()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second lock on the same key must wait")
	case <-time.After(20 * time.Millisecond):
	}

	unlockA()
	<-done
	unlockB()
	assert.Equal(t, 0, k.len())
}
