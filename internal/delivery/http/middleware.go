package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/vogiaan1904/ticketbottle-museum/internal/service"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/response"
)

type sessionKey struct{}

func withSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionID is set by the auth middleware.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionKey{}).(string)
	return sid
}

// requestLogger logs one line per request and tags the context with the
// request id for downstream log lines.
func requestLogger(l logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := l.WithFields(r.Context(), "request_id", middleware.GetReqID(r.Context()))
			r = r.WithContext(ctx)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			l.Infof(ctx, "HTTP %s %s status=%d duration_ms=%d remote_addr=%s",
				r.Method, r.URL.Path, status, time.Since(start).Milliseconds(), r.RemoteAddr)
		})
	}
}

// authenticate resolves the bearer session token to a session id.
func authenticate(sessions service.SessionService, l logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))

			sid, err := sessions.ValidateToken(r.Context(), token)
			if err != nil {
				if service.IsTokenError(err) {
					l.Debugf(r.Context(), "http.authenticate: %v", err)
					response.Error(w, errUnauthorized)
					return
				}
				l.Errorf(r.Context(), "http.authenticate: %v", err)
				response.Error(w, err)
				return
			}

			ctx := withSessionID(r.Context(), sid)
			ctx = l.WithFields(ctx, "session_id", sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
