package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/bragboard/internal/models"
	"github.com/pribylovaa/bragboard/internal/storage"
	"github.com/pribylovaa/bragboard/internal/tree"
	"github.com/pribylovaa/bragboard/pkg/log"
)

// CreateCommentInput — создание корневого комментария или ответа.
// Правила:
//   - если ParentID пуст, создаётся корень и обязателен PostID;
//   - если ParentID не пуст, создаётся ответ; PostID берётся у родителя,
//     ответ на ответ прикрепляется к корню родителя;
//   - всегда обязательны Author.ID и Content.
type CreateCommentInput struct {
	PostID   string
	ParentID string
	Author   models.Author
	Content  string
}

// EditCommentInput — изменение текста комментария.
type EditCommentInput struct {
	ID      string
	Actor   models.Author
	Content string
}

// ListTree возвращает дерево поста: корни в порядке создания, у каждого — ответы
// в порядке создания. Реакция зрителя заполняется для viewerID.
func (s *Service) ListTree(ctx context.Context, postID, viewerID string) ([]models.Comment, error) {
	const op = "service/comments/ListTree"

	lg := log.From(ctx).With("op", op, "post_id", postID)

	postID = strings.TrimSpace(postID)
	if postID == "" {
		lg.Warn("invalid argument: empty post_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	recs, err := s.storage.ListByPost(ctx, postID)
	if err != nil {
		lg.Error("storage error on ListByPost", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	flat := make([]models.Comment, 0, len(recs))
	for _, r := range recs {
		flat = append(flat, r.View(viewerID))
	}

	t := tree.Build(postID, flat)
	if dropped := len(flat) - t.Count(); dropped > 0 {
		lg.Warn("orphaned comments skipped", slog.Int("dropped", dropped))
	}

	return t.Roots(), nil
}

// CommentByID возвращает один комментарий (без ответов) для зрителя viewerID.
func (s *Service) CommentByID(ctx context.Context, id, viewerID string) (*models.Comment, error) {
	const op = "service/comments/CommentByID"

	rec, err := s.lookup(ctx, op, id)
	if err != nil {
		return nil, err
	}

	out := rec.View(viewerID)

	return &out, nil
}

// CreateComment создаёт комментарий или ответ.
//
// Ошибки:
//   - ErrInvalidArgument — пустой автор/текст, текст длиннее лимита, нет PostID у корня;
//   - ErrParentNotFound — родитель отсутствует;
//   - ErrInternal — прочие ошибки хранилища.
func (s *Service) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	const op = "service/comments/CreateComment"

	lg := log.From(ctx).With(
		"op", op,
		"author_id", in.Author.ID,
		"post_id", in.PostID,
		"parent_id", in.ParentID,
	)

	if strings.TrimSpace(in.Author.ID) == "" {
		lg.Warn("invalid argument: empty author id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	content, err := s.normalizeContent(in.Content)
	if err != nil {
		lg.Warn("invalid argument: content", "err", err)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	rec := models.CommentRecord{
		PostID:     strings.TrimSpace(in.PostID),
		AuthorID:   in.Author.ID,
		AuthorName: in.Author.Name,
		AuthorRole: in.Author.Role,
		Content:    content,
	}

	if parentID := strings.TrimSpace(in.ParentID); parentID != "" {
		parent, err := s.storage.CommentByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				lg.Warn("parent not found")
				return nil, fmt.Errorf("%s: %w", op, ErrParentNotFound)
			}

			lg.Error("storage error on CommentByID", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}

		// Глубина дерева — два уровня: ответ на ответ уходит к корню.
		rec.ParentID = parent.ID
		if parent.ParentID != "" {
			rec.ParentID = parent.ParentID
		}
		rec.PostID = parent.PostID
	} else if rec.PostID == "" {
		lg.Warn("invalid argument: empty post_id for root comment")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	created, err := s.storage.CreateComment(ctx, rec)
	if err != nil {
		lg.Error("storage error on CreateComment", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("comment_created", "id", created.ID, "root", created.ParentID == "")

	out := created.View(in.Author.ID)

	return &out, nil
}

// EditComment меняет текст; доступно автору и модераторам. Выставляет isEdited.
func (s *Service) EditComment(ctx context.Context, in EditCommentInput) (*models.Comment, error) {
	const op = "service/comments/EditComment"

	lg := log.From(ctx).With("op", op, "id", in.ID, "actor_id", in.Actor.ID)

	content, err := s.normalizeContent(in.Content)
	if err != nil {
		lg.Warn("invalid argument: content", "err", err)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	rec, err := s.lookup(ctx, op, in.ID)
	if err != nil {
		return nil, err
	}

	if !s.canModify(in.Actor, rec) {
		lg.Warn("forbidden: not author or moderator")
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	updated, err := s.storage.UpdateContent(ctx, rec.ID, content, s.now())
	if err != nil {
		return nil, s.mapStorage(lg, op, "UpdateContent", err)
	}

	out := updated.View(in.Actor.ID)

	return &out, nil
}

// DeleteComment удаляет комментарий вместе с ответами; доступно автору и модераторам.
func (s *Service) DeleteComment(ctx context.Context, id string, actor models.Author) error {
	const op = "service/comments/DeleteComment"

	lg := log.From(ctx).With("op", op, "id", id, "actor_id", actor.ID)

	rec, err := s.lookup(ctx, op, id)
	if err != nil {
		return err
	}

	if !s.canModify(actor, rec) {
		lg.Warn("forbidden: not author or moderator")
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.storage.DeleteComment(ctx, rec.ID); err != nil {
		return s.mapStorage(lg, op, "DeleteComment", err)
	}

	lg.Info("comment_deleted", "root", rec.ParentID == "")

	return nil
}

// React переключает реакцию actor на комментарии: та же снимается, другая заменяет.
func (s *Service) React(ctx context.Context, id string, actor models.Author, kind models.ReactionKind) (*models.Comment, error) {
	const op = "service/comments/React"

	lg := log.From(ctx).With("op", op, "id", id, "actor_id", actor.ID, "kind", string(kind))

	if !kind.Valid() || strings.TrimSpace(actor.ID) == "" || strings.TrimSpace(id) == "" {
		lg.Warn("invalid argument: reaction")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	updated, err := s.storage.ToggleReaction(ctx, strings.TrimSpace(id), actor.ID, kind)
	if err != nil {
		return nil, s.mapStorage(lg, op, "ToggleReaction", err)
	}

	out := updated.View(actor.ID)

	return &out, nil
}

func (s *Service) lookup(ctx context.Context, op, id string) (*models.CommentRecord, error) {
	lg := log.From(ctx).With("op", op, "id", id)

	id = strings.TrimSpace(id)
	if id == "" {
		lg.Warn("invalid argument: empty id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	rec, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		return nil, s.mapStorage(lg, op, "CommentByID", err)
	}

	return rec, nil
}

func (s *Service) mapStorage(lg *slog.Logger, op, call string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		lg.Warn("not found")
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, storage.ErrInvalidID):
		lg.Warn("invalid id", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	default:
		lg.Error("storage error on "+call, "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}
}

func (s *Service) normalizeContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", errors.New("empty content")
	}

	if s.maxContent > 0 && utf8.RuneCountInString(content) > s.maxContent {
		return "", fmt.Errorf("content longer than %d characters", s.maxContent)
	}

	return content, nil
}
