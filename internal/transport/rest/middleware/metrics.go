package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/bragboard/internal/metrics"
)

// Metrics считает запросы; метка route — шаблон маршрута chi, а не сырой путь.
// Паника обработчика учитывается как 500 и пробрасывается дальше, к Recover.
func Metrics(m *metrics.HTTP) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			start := time.Now()
			m.Start()

			defer func() {
				status := sw.code()
				rec := recover()
				if rec != nil {
					status = http.StatusInternalServerError
				}

				var route string
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					route = rctx.RoutePattern()
				}

				m.Observe(r.Method, route, status, time.Since(start))

				if rec != nil {
					panic(rec)
				}
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
