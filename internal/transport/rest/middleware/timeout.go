package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	logctx "github.com/pribylovaa/bragboard/pkg/log"
)

// Timeout ограничивает обработку запроса бюджетом d. Более длинный срок
// родителя сокращается до d, более короткий остаётся как есть.
// Исчерпанный бюджет логируется. Значение <=0 делает мидлвар no-op.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				logctx.From(ctx).Warn("request_budget_exceeded",
					"path", r.URL.Path,
					"budget", d,
				)
			}
		})
	}
}
