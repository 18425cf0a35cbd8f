// Package timefmt превращает время создания комментария в относительную подпись
// («Just now», «5 minutes ago», ...) или в дату для старых комментариев.
package timefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// JustNow — подпись для свежих, будущих (рассинхрон часов) и битых меток.
	JustNow = "Just now"

	// DefaultDateLayout — формат даты для комментариев старше недели.
	DefaultDateLayout = "1/2/2006"

	skewWindow = 30 * time.Second
	week       = 7 * 24 * time.Hour
)

// sanity — всё, что раньше, считается мусором в данных.
var sanity = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// parseLayouts — принимаемые строковые форматы меток времени.
var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Formatter форматирует метки времени относительно «сейчас».
// Результат детерминирован при заданных часах, что и нужно тестам.
type Formatter struct {
	now    func() time.Time
	loc    *time.Location
	layout string
}

// Option настраивает Formatter.
type Option func(*Formatter)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLocation задаёт часовой пояс для абсолютных дат.
func WithLocation(loc *time.Location) Option {
	return func(f *Formatter) {
		if loc != nil {
			f.loc = loc
		}
	}
}

// WithDateLayout задаёт формат абсолютной даты.
func WithDateLayout(layout string) Option {
	return func(f *Formatter) {
		if strings.TrimSpace(layout) != "" {
			f.layout = layout
		}
	}
}

// New создаёт Formatter: по умолчанию time.Now, time.Local и DefaultDateLayout.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		now:    time.Now,
		loc:    time.Local,
		layout: DefaultDateLayout,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Format возвращает подпись для ts:
//   - нулевое время или раньше 2000 года, а также < 30s (в т.ч. в будущем) -> "Just now";
//   - 30–59s -> "<n> seconds ago";
//   - 1–59 мин, 1–23 ч, 1–6 дн -> "<n> minute(s)/hour(s)/day(s) ago";
//   - от 7 дней -> дата в заданном формате и часовом поясе.
func (f *Formatter) Format(ts time.Time) string {
	if ts.IsZero() || ts.Before(sanity) {
		return JustNow
	}

	elapsed := f.now().Sub(ts)
	switch {
	case elapsed < skewWindow:
		return JustNow
	case elapsed < time.Minute:
		return fmt.Sprintf("%d seconds ago", int(elapsed/time.Second))
	case elapsed < time.Hour:
		return plural(int(elapsed/time.Minute), "minute")
	case elapsed < 24*time.Hour:
		return plural(int(elapsed/time.Hour), "hour")
	case elapsed < week:
		return plural(int(elapsed/(24*time.Hour)), "day")
	default:
		return ts.In(f.loc).Format(f.layout)
	}
}

// FormatString разбирает метку (RFC3339, "2006-01-02 15:04:05", unix-секунды
// или миллисекунды) и форматирует её. Неразборчивая строка -> "Just now".
func (f *Formatter) FormatString(raw string) string {
	ts, ok := Parse(raw)
	if !ok {
		return JustNow
	}

	return f.Format(ts)
}

// Parse разбирает строковую метку времени.
func Parse(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return time.Time{}, false
	}

	for _, layout := range parseLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return time.Time{}, false
	}

	// 13+ знаков — миллисекунды (так их отдаёт JS Date.now()).
	if n >= 1e12 {
		return time.UnixMilli(n), true
	}

	return time.Unix(n, 0), true
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}

	return fmt.Sprintf("%d %ss ago", n, unit)
}
