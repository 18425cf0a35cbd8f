package middleware

import (
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/bragboard/internal/errors"
	"github.com/pribylovaa/bragboard/internal/models"
	logctx "github.com/pribylovaa/bragboard/pkg/log"
)

// Verifier проверяет bearer-токен и возвращает автора.
type Verifier interface {
	Verify(token string) (models.Author, error)
}

// Authenticate требует "Authorization: Bearer <token>". Без заголовка или при
// неверном токене отвечает 401; иначе кладёт автора в контекст (AuthorFrom).
func Authenticate(v Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="bragboard"`)
				apierrors.WriteError(w, r, http.StatusUnauthorized)
				return
			}

			author, err := v.Verify(token)
			if err != nil {
				logctx.From(r.Context()).Warn("auth_rejected", "err", err)
				w.Header().Set("WWW-Authenticate", `Bearer realm="bragboard", error="invalid_token"`)
				apierrors.WriteError(w, r, http.StatusUnauthorized)
				return
			}

			ctx, _ := logctx.With(WithAuthor(r.Context(), author), "user_id", author.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])

	return token, token != ""
}
