// Package thread — менеджер дерева комментариев одного поста на стороне клиента.
//
// Manager связывает клиента REST API, реконсилер дерева и защиту реакций от
// двойной отправки. Сетевые вызовы выполняются вне блокировки; слияние ответа
// в дерево атомарно под мьютексом. Ни одна ошибка API не фатальна: дерево
// остаётся в последнем известном состоянии, исход сообщается через Notifier.
package thread

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pribylovaa/bragboard/internal/client"
	"github.com/pribylovaa/bragboard/internal/models"
	"github.com/pribylovaa/bragboard/internal/reaction"
	"github.com/pribylovaa/bragboard/internal/tree"
	"github.com/pribylovaa/bragboard/pkg/log"
)

// ErrPending — по комментарию уже есть неотвеченный запрос реакции.
var ErrPending = errors.New("reaction request already pending")

// Remote — операции REST API, нужные менеджеру. Реализуется *client.Client.
type Remote interface {
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID, content, parentID string) (*models.Comment, error)
	EditComment(ctx context.Context, id, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	ReactToComment(ctx context.Context, id string, kind models.ReactionKind) (*models.Comment, error)
}

// Level — тип уведомления.
type Level int

const (
	Success Level = iota
	Failure
)

func (l Level) String() string {
	if l == Failure {
		return "failure"
	}

	return "success"
}

// Event — исход операции для показа пользователю.
type Event struct {
	Level     Level
	Message   string
	CommentID string
	Err       error
}

// Notifier — коллаборатор уведомлений (тосты хост-приложения).
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// NotifierFunc — адаптер функции к Notifier.
type NotifierFunc func(ctx context.Context, ev Event)

func (f NotifierFunc) Notify(ctx context.Context, ev Event) {
	f(ctx, ev)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) {}

// Option настраивает Manager.
type Option func(*Manager)

// WithNotifier задаёт получателя уведомлений.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notify = n
		}
	}
}

// WithAuthFailure задаёт реакцию хоста на отвергнутый токен (например, переход к логину).
func WithAuthFailure(fn func(ctx context.Context, err error)) Option {
	return func(m *Manager) {
		m.onAuth = fn
	}
}

// Manager — дерево комментариев одного поста, синхронизируемое с сервером.
type Manager struct {
	postID string
	remote Remote
	notify Notifier
	onAuth func(ctx context.Context, err error)
	guard  *reaction.Guard

	mu   sync.Mutex
	tree *tree.Tree
}

// New создаёт менеджер с пустым деревом; для загрузки вызовите Load.
func New(postID string, remote Remote, opts ...Option) *Manager {
	m := &Manager{
		postID: postID,
		remote: remote,
		notify: nopNotifier{},
		guard:  reaction.NewGuard(),
		tree:   tree.New(postID),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// PostID возвращает идентификатор поста.
func (m *Manager) PostID() string {
	return m.postID
}

// Load заменяет дерево списком с сервера. При ошибке дерево становится пустым.
func (m *Manager) Load(ctx context.Context) error {
	const op = "thread/Load"

	list, err := m.remote.ListComments(ctx, m.postID)
	if err != nil {
		m.mu.Lock()
		m.tree = tree.New(m.postID)
		m.mu.Unlock()

		m.fail(ctx, op, "Failed to load comments", "", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	t := tree.Build(m.postID, list)

	m.mu.Lock()
	m.tree = t
	m.mu.Unlock()

	log.From(ctx).Debug("comments_loaded", "op", op, "post_id", m.postID, "roots", t.Len(), "total", t.Count())

	return nil
}

// Post создаёт комментарий (parentID == "") или ответ и сливает его в дерево.
// Если родителя нет в локальном дереве, дерево перечитывается целиком.
func (m *Manager) Post(ctx context.Context, content, parentID string) (models.Comment, error) {
	const op = "thread/Post"

	msg := "Comment posted"
	failMsg := "Failed to post comment"
	if parentID != "" {
		msg = "Reply posted"
		failMsg = "Failed to post reply"
	}

	if strings.TrimSpace(content) == "" {
		err := fmt.Errorf("%s: empty content: %w", op, client.ErrValidation)
		m.fail(ctx, op, failMsg, parentID, err)
		return models.Comment{}, err
	}

	created, err := m.remote.CreateComment(ctx, m.postID, content, parentID)
	if err != nil {
		m.fail(ctx, op, failMsg, parentID, err)
		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	res := m.tree.Insert(*created)
	m.mu.Unlock()

	log.From(ctx).Debug("comment_reconciled", "op", op, "id", created.ID, "result", res.String())

	if res == tree.NeedsRefetch {
		// ошибка перечитывания уже сообщена через Notifier; сам комментарий создан.
		_ = m.Load(ctx)
	}

	m.notify.Notify(ctx, Event{Level: Success, Message: msg, CommentID: created.ID})

	return *created, nil
}

// Edit меняет текст комментария. Если сервер сообщает, что комментария
// больше нет, он удаляется и из локального дерева.
func (m *Manager) Edit(ctx context.Context, id, content string) (models.Comment, error) {
	const op = "thread/Edit"

	if strings.TrimSpace(content) == "" {
		err := fmt.Errorf("%s: empty content: %w", op, client.ErrValidation)
		m.fail(ctx, op, "Failed to update comment", id, err)
		return models.Comment{}, err
	}

	updated, err := m.remote.EditComment(ctx, id, content)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			m.mu.Lock()
			m.tree.Delete(id)
			m.mu.Unlock()
		}

		m.fail(ctx, op, "Failed to update comment", id, err)
		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	m.tree.Update(*updated)
	m.mu.Unlock()

	m.notify.Notify(ctx, Event{Level: Success, Message: "Comment updated", CommentID: id})

	return *updated, nil
}

// Delete удаляет комментарий на сервере и локально (корень — вместе с ответами).
// Уже удалённый комментарий — успех.
func (m *Manager) Delete(ctx context.Context, id string) error {
	const op = "thread/Delete"

	if err := m.remote.DeleteComment(ctx, id); err != nil && !errors.Is(err, client.ErrNotFound) {
		m.fail(ctx, op, "Failed to delete comment", id, err)
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	removed := m.tree.Delete(id)
	m.mu.Unlock()

	log.From(ctx).Debug("comment_deleted", "op", op, "id", id, "was_local", removed)
	m.notify.Notify(ctx, Event{Level: Success, Message: "Comment deleted", CommentID: id})

	return nil
}

// React переключает реакцию текущего пользователя. Пока ответ не получен,
// повторный вызов по тому же комментарию возвращает ErrPending без запроса.
// Успешный ответ заменяет счётчики узла; при ошибке снимается только флаг
// ожидания, счётчики остаются такими, какие сейчас в дереве.
// Комментарий, удалённый за время запроса, в дерево не возвращается.
func (m *Manager) React(ctx context.Context, id string, kind models.ReactionKind) (models.Comment, error) {
	const op = "thread/React"

	m.mu.Lock()
	node, ok := m.tree.Find(id)
	if !ok {
		m.mu.Unlock()
		return models.Comment{}, fmt.Errorf("%s: comment %q: %w", op, id, client.ErrNotFound)
	}

	if !m.guard.Begin(node) {
		m.mu.Unlock()
		return models.Comment{}, fmt.Errorf("%s: %w", op, ErrPending)
	}
	m.mu.Unlock()

	updated, err := m.remote.ReactToComment(ctx, id, kind)
	if err != nil {
		// Дерево могло быть перечитано за время запроса; его не трогаем.
		if snap, ok := m.guard.Rollback(id); ok {
			log.From(ctx).Debug("reaction_rolled_back", "op", op, "id", id,
				"like", snap.Counts.Like, "dislike", snap.Counts.Dislike)
		}

		m.fail(ctx, op, "Failed to react", id, err)
		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	m.guard.Commit(id)
	applied := m.tree.Apply(id, func(n *models.Comment) { reaction.Merge(n, *updated) })
	m.mu.Unlock()

	if !applied {
		log.From(ctx).Debug("reaction_for_missing_comment", "op", op, "id", id)
	}

	return *updated, nil
}

// Comments возвращает копию дерева в порядке сервера.
func (m *Manager) Comments() []models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.tree.Roots()
}

// Find возвращает копию узла по ID.
func (m *Manager) Find(id string) (models.Comment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.tree.Find(id)
}

// Pending — ждёт ли комментарий ответа на реакцию (для блокировки кнопки).
func (m *Manager) Pending(id string) bool {
	return m.guard.Pending(id)
}

func (m *Manager) fail(ctx context.Context, op, msg, id string, err error) {
	log.From(ctx).Warn("comment_operation_failed", "op", op, "id", id, "err", err)

	if errors.Is(err, client.ErrAuth) && m.onAuth != nil {
		m.onAuth(ctx, err)
	}

	m.notify.Notify(ctx, Event{Level: Failure, Message: msg, CommentID: id, Err: err})
}
