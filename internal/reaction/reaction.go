// Package reaction применяет ответ сервера на переключение реакции к узлу
// дерева и ведёт состояние «запрос в полёте» для каждого комментария.
//
// Счётчики никогда не пересчитываются на клиенте: источник истины — сервер.
package reaction

import (
	"sync"

	"github.com/pribylovaa/bragboard/internal/models"
)

// Merge переносит в dst только ReactionCounts и CurrentUserReaction из ответа src.
func Merge(dst *models.Comment, src models.Comment) {
	if dst == nil {
		return
	}

	dst.ReactionCounts = src.ReactionCounts
	dst.CurrentUserReaction = src.CurrentUserReaction
}

// Snapshot — отображаемое состояние реакций до отправки запроса.
// Пока запрос в полёте, счётчики узла не меняются: откат после ошибки снимает
// флаг ожидания и узел не трогает.
type Snapshot struct {
	Counts  models.ReactionCounts
	Current models.ReactionKind
}

// Guard — per-comment флаг «реакция отправлена, ответа ещё нет».
// Нулевое значение готово к использованию.
// Это best-effort защита от двойных кликов, а не взаимное исключение запросов:
// ответы могут прийти в любом порядке, побеждает последний.
type Guard struct {
	mu      sync.Mutex
	pending map[string]Snapshot
}

// NewGuard создаёт пустой Guard.
func NewGuard() *Guard {
	return &Guard{pending: make(map[string]Snapshot)}
}

// Begin помечает комментарий как ожидающий ответа и запоминает снимок.
// false — по этому комментарию уже есть запрос в полёте, новый отправлять не нужно.
func (g *Guard) Begin(c models.Comment) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.pending[c.ID]; busy {
		return false
	}

	if g.pending == nil {
		g.pending = make(map[string]Snapshot)
	}

	g.pending[c.ID] = Snapshot{Counts: c.ReactionCounts, Current: c.CurrentUserReaction}

	return true
}

// Pending — есть ли по комментарию запрос в полёте.
func (g *Guard) Pending(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.pending[id]

	return ok
}

// Commit снимает флаг после успешного ответа.
func (g *Guard) Commit(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.pending, id)
}

// Rollback снимает флаг после ошибки и возвращает снимок, снятый в Begin.
func (g *Guard) Rollback(id string) (Snapshot, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.pending[id]
	delete(g.pending, id)

	return s, ok
}
