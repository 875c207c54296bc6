package idempotency

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const HeaderKey = "Idempotency-Key"

// Middleware rejects a request whose Idempotency-Key was already used within the
// store's TTL. Requests without the header pass through. Redis errors fail open.
// A claim is only kept when the handler answers 2xx, so a failed attempt can be
// retried with the same key.
func Middleware(log *slog.Logger, store *Store, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderKey)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			claim := store.RequestKey(scope+":"+r.URL.Path, key)
			seen, err := store.Seen(r.Context(), claim)
			if err != nil {
				log.Error("idempotency check failed", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				log.Info("duplicate request rejected", "key", key, "path", r.URL.Path)
				http.Error(w, "duplicate request", http.StatusConflict)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= 200 && status < 300 {
				return
			}
			if err := store.Release(context.WithoutCancel(r.Context()), claim); err != nil {
				log.Error("idempotency release failed", "key", key, "err", err)
			}
		})
	}
}
