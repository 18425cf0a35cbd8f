package log

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Тесты pkg/log.
//
// Важно: тесты меняют slog.Default(), поэтому намеренно НЕ используют t.Parallel().

func newSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// capHandler — запоминает атрибуты последней записи.
type capHandler struct {
	base  []slog.Attr
	attrs map[string]any
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})
	h.attrs = out
	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.base = append(h.base, attrs...)
	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func TestFrom_ReturnsDefault_WhenNoLoggerInContext(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := newSilent()
	slog.SetDefault(def)

	require.Equal(t, def, From(context.Background()))
}

func TestIntoAndFrom_RoundTrip(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := newSilent()
	slog.SetDefault(def)

	l := newSilent()
	ctx := Into(context.Background(), l)

	require.Equal(t, l, From(ctx))
	require.Equal(t, def, From(context.Background()))
}

// TestInto_NilLoggerKeepsParent — nil не затирает логгер родителя.
func TestInto_NilLoggerKeepsParent(t *testing.T) {
	l := newSilent()
	ctx := Into(context.Background(), l)

	require.Equal(t, l, From(Into(ctx, nil)))
}

// TestFrom_WrongTypeFallsBackToDefault — «мусор» по нашему ключу не ломает From.
func TestFrom_WrongTypeFallsBackToDefault(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })
	def := newSilent()
	slog.SetDefault(def)

	ctx := context.WithValue(context.Background(), ctxKey{}, "not-a-logger")
	require.Equal(t, def, From(ctx))

	var nilLogger *slog.Logger
	ctx = context.WithValue(context.Background(), ctxKey{}, nilLogger)
	require.Equal(t, def, From(ctx))
}

// TestWith_EnrichesAndStores — With добавляет атрибуты и кладёт логгер в контекст.
func TestWith_EnrichesAndStores(t *testing.T) {
	h := &capHandler{}
	base := slog.New(h)

	ctx := Into(context.Background(), base.With("request_id", "rid-1"))
	ctx, l := With(ctx, "op", "thread/Post")

	l.Info("first")
	require.Equal(t, "rid-1", h.attrs["request_id"])
	require.Equal(t, "thread/Post", h.attrs["op"])

	From(ctx).Info("again")
	require.Equal(t, "thread/Post", h.attrs["op"])
}

// TestInto_PreservesCancellation — Into не меняет отмену и дедлайн.
func TestInto_PreservesCancellation(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Minute)
	child := Into(parent, newSilent())

	pdl, _ := parent.Deadline()
	cdl, ok := child.Deadline()
	require.True(t, ok)
	require.Equal(t, pdl, cdl)

	cancel()
	<-child.Done()
	require.ErrorIs(t, child.Err(), context.Canceled)
}
