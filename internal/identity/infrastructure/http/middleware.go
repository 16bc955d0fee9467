package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmehra2102/chipstore/internal/identity/application"
	"github.com/dmehra2102/chipstore/internal/identity/domain"
	"github.com/dmehra2102/chipstore/pkg/httpx"
)

type sessionKey struct{}

func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Authenticate attaches the session for a valid bearer token. Requests
// without one continue as guests.
func Authenticate(log *slog.Logger, svc *application.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := svc.Authenticate(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess))
			case errors.Is(err, domain.ErrUnauthenticated):
			default:
				log.Error("session lookup failed", "err", err)
				httpx.WriteError(w, http.StatusInternalServerError, "session lookup failed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(domain.Session)
	return s, ok
}

func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			httpx.WriteError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin trusts the role cached in the session.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
			return
		}
		if !sess.IsAdmin() {
			httpx.WriteError(w, http.StatusForbidden, domain.ErrForbidden.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
