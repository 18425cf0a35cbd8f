// Package log хранит request-scoped *slog.Logger в context.Context.
//
// Мидлвары HTTP-слоя кладут логгер с request_id в контекст, а сервисный слой и
// клиент достают его через From и дополняют своими атрибутами (op, id и т.д.).
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into кладёт логгер в контекст. nil-логгер игнорируется.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	if l == nil {
		return ctx
	}

	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер из контекста (или возвращает slog.Default()).
func From(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}

	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}

	return slog.Default()
}

// With дополняет логгер из контекста атрибутами и возвращает новый контекст
// вместе с обогащённым логгером.
func With(ctx context.Context, args ...any) (context.Context, *slog.Logger) {
	l := From(ctx).With(args...)

	return Into(ctx, l), l
}
