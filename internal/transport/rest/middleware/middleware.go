package middleware

import (
	"context"
	"net/http"

	"github.com/pribylovaa/bragboard/internal/models"
)

// Middleware — стандартный net/http мидлвар.
type Middleware func(http.Handler) http.Handler

// Chain применяет мидлвары к обработчику в порядке их перечисления.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type ctxKey int

const (
	ctxRequestID ctxKey = iota + 1
	ctxAuthor
)

// RequestIDFrom возвращает X-Request-Id текущего запроса.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestID).(string)
	return id
}

// AuthorFrom возвращает автора запроса, положенного Authenticate.
func AuthorFrom(ctx context.Context) (models.Author, bool) {
	a, ok := ctx.Value(ctxAuthor).(models.Author)
	return a, ok
}

// WithAuthor кладёт автора в контекст.
func WithAuthor(ctx context.Context, a models.Author) context.Context {
	return context.WithValue(ctx, ctxAuthor, a)
}

// statusWriter оборачивает ResponseWriter, чтобы перехватить статус и размер.
type statusWriter struct {
	http.ResponseWriter
	status int
	count  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	count, err := w.ResponseWriter.Write(p)
	w.count += count
	return count, err
}

func (w *statusWriter) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w}
}
