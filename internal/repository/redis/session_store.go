package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vogiaan1904/ticketbottle-museum/internal/repository"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/logger"
	pkgRedis "github.com/vogiaan1904/ticketbottle-museum/pkg/redis"
)

// Each session is a marker key carrying the TTL and a hash holding the
// values. The hash is re-aligned to the marker's remaining TTL on every write.
type redisSessionStore struct {
	cli    *pkgRedis.Client
	prefix string
	l      logger.Logger
}

func NewSessionStore(cli *pkgRedis.Client, prefix string, l logger.Logger) repository.SessionStore {
	if prefix == "" {
		prefix = "museum"
	}
	return &redisSessionStore{
		cli:    cli,
		prefix: prefix,
		l:      l,
	}
}

func (r *redisSessionStore) Create(ctx context.Context, sessionID string, ttl time.Duration) error {
	pipe := r.cli.Pipeline()
	pipe.Set(ctx, r.sessionKey(sessionID), time.Now().UTC().Format(time.RFC3339), ttl)
	pipe.Del(ctx, r.dataKey(sessionID))

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisSessionStore.Create: %v", err)
		return err
	}

	r.l.Debugf(ctx, "Session created: %s", sessionID)

	return nil
}

func (r *redisSessionStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.cli.Exists(ctx, r.sessionKey(sessionID))
	if err != nil {
		r.l.Errorf(ctx, "redisSessionStore.Exists: %v", err)
		return false, err
	}

	return n > 0, nil
}

func (r *redisSessionStore) Save(ctx context.Context, sessionID, key string, value []byte) error {
	ttl, err := r.cli.PTTL(ctx, r.sessionKey(sessionID))
	if err != nil {
		r.l.Errorf(ctx, "redisSessionStore.Save.PTTL: %v", err)
		return err
	}

	if ttl <= 0 {
		return repository.ErrSessionNotFound
	}

	dataKey := r.dataKey(sessionID)
	pipe := r.cli.Pipeline()
	pipe.HSet(ctx, dataKey, key, value)
	pipe.PExpire(ctx, dataKey, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisSessionStore.Save: %v", err)
		return err
	}

	return nil
}

func (r *redisSessionStore) Load(ctx context.Context, sessionID, key string) ([]byte, error) {
	data, err := r.cli.HGet(ctx, r.dataKey(sessionID), key)
	if err != nil {
		if errors.Is(err, pkgRedis.Nil) {
			return nil, repository.ErrNotFound
		}
		r.l.Errorf(ctx, "redisSessionStore.Load: %v", err)
		return nil, err
	}

	return data, nil
}

func (r *redisSessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := r.cli.Del(ctx, r.dataKey(sessionID)); err != nil {
		r.l.Errorf(ctx, "redisSessionStore.Clear: %v", err)
		return err
	}

	r.l.Debugf(ctx, "Session cleared: %s", sessionID)

	return nil
}

func (r *redisSessionStore) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, sessionID)
}

func (r *redisSessionStore) dataKey(sessionID string) string {
	return fmt.Sprintf("%s:session:%s:data", r.prefix, sessionID)
}
