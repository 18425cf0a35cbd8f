package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/bragboard/internal/errors"
	"github.com/pribylovaa/bragboard/internal/metrics"
	"github.com/pribylovaa/bragboard/internal/transport/rest/handlers"
	"github.com/pribylovaa/bragboard/internal/transport/rest/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	Metrics  *metrics.HTTP
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(comments handlers.Comments, verifier middleware.Verifier, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),
		middleware.RequestID(),          // до логирования: request_id попадает в логгер
		middleware.Logging(opts.Logger), // request-scoped логгер в контексте
		middleware.Metrics(opts.Metrics),
		middleware.Timeout(opts.Timeout),
	)

	root.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, r, http.StatusNotFound)
	})

	h := handlers.New(comments)

	// Все маршруты комментариев требуют bearer-токен.
	protected := func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier))
		registerRoutes(r, h)
	}

	if opts.BasePath != "" {
		root.Route(opts.BasePath, protected)
		return root
	}

	root.Group(protected)
	return root
}

// registerRoutes — единая точка регистрации REST-эндпойнтов комментариев.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Get("/comments", h.ListComments)
	r.Post("/comments", h.CreateComment)
	r.Get("/comments/{id}", h.GetComment)
	r.Put("/comments/{id}", h.EditComment)
	r.Delete("/comments/{id}", h.DeleteComment)
	r.Post("/comments/{id}/react", h.ReactToComment)
}
