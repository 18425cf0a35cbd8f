// service содержит бизнес-правила comments-service: двухуровневое дерево,
// права автора/модератора и переключение реакций.
package service

import (
	"errors"
	"strings"
	"time"

	"github.com/pribylovaa/bragboard/internal/config"
	"github.com/pribylovaa/bragboard/internal/models"
	"github.com/pribylovaa/bragboard/internal/storage"
)

var (
	// ErrInvalidArgument — неверные входные параметры запроса к сервису.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound — комментарий отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrParentNotFound — указан parent_id, но родителя нет.
	ErrParentNotFound = errors.New("parent not found")
	// ErrForbidden — действие доступно только автору или модератору.
	ErrForbidden = errors.New("forbidden")
	// ErrInternal — внутренняя ошибка (хранилище/БД/контекст).
	ErrInternal = errors.New("internal")
)

// Service — бизнес-логика comments-service.
type Service struct {
	storage    storage.Storage
	maxContent int
	moderators map[string]struct{}
	now        func() time.Time
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, cfg config.Config) *Service {
	mods := make(map[string]struct{}, len(cfg.Auth.ModeratorRoles))
	for _, r := range cfg.Auth.ModeratorRoles {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			mods[r] = struct{}{}
		}
	}

	return &Service{
		storage:    st,
		maxContent: cfg.Limits.MaxContent,
		moderators: mods,
		now:        time.Now,
	}
}

// IsModerator — может ли роль править и удалять чужие комментарии.
func (s *Service) IsModerator(role string) bool {
	_, ok := s.moderators[strings.ToLower(strings.TrimSpace(role))]
	return ok
}

func (s *Service) canModify(actor models.Author, rec *models.CommentRecord) bool {
	return (actor.ID != "" && actor.ID == rec.AuthorID) || s.IsModerator(actor.Role)
}
