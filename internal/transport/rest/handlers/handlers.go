package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	apierrors "github.com/pribylovaa/bragboard/internal/errors"
	"github.com/pribylovaa/bragboard/internal/models"
	"github.com/pribylovaa/bragboard/internal/service"
	logctx "github.com/pribylovaa/bragboard/pkg/log"
)

// maxBodyBytes — предел тела запроса; длину текста дополнительно режет сервис.
const maxBodyBytes = 64 << 10

// Comments — бизнес-операции, нужные хендлерам. Реализуется *service.Service.
type Comments interface {
	ListTree(ctx context.Context, postID, viewerID string) ([]models.Comment, error)
	CommentByID(ctx context.Context, id, viewerID string) (*models.Comment, error)
	CreateComment(ctx context.Context, in service.CreateCommentInput) (*models.Comment, error)
	EditComment(ctx context.Context, in service.EditCommentInput) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string, actor models.Author) error
	React(ctx context.Context, id string, actor models.Author, kind models.ReactionKind) (*models.Comment, error)
}

// Handlers агрегирует зависимости REST-слоя.
type Handlers struct {
	comments Comments
	validate *validator.Validate
}

func New(c Comments) *Handlers {
	return &Handlers{comments: c, validate: validator.New()}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через writeError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля и хвост после объекта;
// затем валидируем теги validate.
func (h *Handlers) decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		return err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after json object")
	}

	return h.validate.Struct(value)
}

// writeError переводит ошибку сервиса в HTTP-статус:
//   - ErrInvalidArgument -> 400
//   - ErrForbidden -> 403
//   - ErrNotFound, ErrParentNotFound -> 404
//   - context.DeadlineExceeded -> 504
//   - прочее -> 500
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrParentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		logctx.From(r.Context()).Error("request_failed", "err", err)
	}

	apierrors.WriteError(w, r, status)
}
