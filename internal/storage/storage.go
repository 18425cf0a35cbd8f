package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pribylovaa/bragboard/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID — идентификатор нельзя использовать как ключ (например, id пользователя с '.' или '$').
	ErrInvalidID = errors.New("invalid id")
)

// Storage описывает операции над комментариями постов.
type Storage interface {
	// CreateComment сохраняет новый комментарий или ответ.
	// Ожидается, что ParentID (если задан) уже указывает на корень и PostID
	// совпадает с постом родителя. ID, CreatedAt, UpdatedAt проставляет хранилище.
	CreateComment(ctx context.Context, rec models.CommentRecord) (*models.CommentRecord, error)

	// CommentByID возвращает комментарий. Если записи нет — ErrNotFound.
	CommentByID(ctx context.Context, id string) (*models.CommentRecord, error)

	// ListByPost возвращает все комментарии поста (корни и ответы плоским списком).
	// Сортировка: created_at ASC, _id ASC — порядок вставки.
	ListByPost(ctx context.Context, postID string) ([]models.CommentRecord, error)

	// UpdateContent заменяет текст, выставляет is_edited=true и updated_at=at.
	// Если записи нет — ErrNotFound.
	UpdateContent(ctx context.Context, id, content string, at time.Time) (*models.CommentRecord, error)

	// DeleteComment удаляет комментарий и все его ответы. Если записи нет — ErrNotFound.
	DeleteComment(ctx context.Context, id string) error

	// ToggleReaction атомарно переключает реакцию пользователя: та же — снимается,
	// другая — заменяет. Если записи нет — ErrNotFound.
	ToggleReaction(ctx context.Context, id, userID string, kind models.ReactionKind) (*models.CommentRecord, error)

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}
