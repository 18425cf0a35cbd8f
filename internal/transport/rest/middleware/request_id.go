package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/bragboard/internal/errors"
)

const maxRequestIDLen = 128

// RequestID обеспечивает наличие X-Request-Id:
//  1. берёт заголовок X-Request-Id, если он есть и не длиннее 128 символов;
//  2. иначе генерирует uuid;
//  3. кладёт id в заголовки ответа и запроса и в контекст (RequestIDFrom).
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(apierrors.HeaderRequestID)
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.NewString()
				r.Header.Set(apierrors.HeaderRequestID, id)
			}
			w.Header().Set(apierrors.HeaderRequestID, id)

			ctx := context.WithValue(r.Context(), ctxRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
