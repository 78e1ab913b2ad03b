package repository

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("key not found")
	ErrSessionNotFound = errors.New("session not found")
)

// SessionStore keeps opaque values per session. All of a session's values
// expire together, ttl after Create.
type SessionStore interface {
	Create(ctx context.Context, sessionID string, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Save(ctx context.Context, sessionID, key string, value []byte) error
	Load(ctx context.Context, sessionID, key string) ([]byte, error)
	Clear(ctx context.Context, sessionID string) error
}
