package models

import (
	"time"
)

// Author — снимок автора/актора запроса, извлечённый из bearer-токена.
type Author struct {
	ID   string
	Name string
	Role string
}

// CommentRecord — комментарий в хранилище.
// В отличие от Comment хранит реакции всех пользователей (UserID -> реакция),
// из которых при отдаче наружу считаются счётчики и реакция зрителя.
type CommentRecord struct {
	ID         string
	PostID     string
	ParentID   string
	AuthorID   string
	AuthorName string
	AuthorRole string
	Content    string
	IsEdited   bool
	Reactions  map[string]ReactionKind
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// View проецирует запись в Comment для зрителя viewerID.
// Неизвестные значения в Reactions не учитываются.
func (r CommentRecord) View(viewerID string) Comment {
	var counts ReactionCounts
	for _, k := range r.Reactions {
		switch k {
		case ReactionLike:
			counts.Like++
		case ReactionDislike:
			counts.Dislike++
		}
	}

	var mine ReactionKind
	if viewerID != "" {
		if k, ok := r.Reactions[viewerID]; ok && k.Valid() {
			mine = k
		}
	}

	return Comment{
		ID:                  r.ID,
		PostID:              r.PostID,
		ParentID:            r.ParentID,
		AuthorID:            r.AuthorID,
		AuthorName:          r.AuthorName,
		AuthorRole:          r.AuthorRole,
		Content:             r.Content,
		CreatedAt:           r.CreatedAt,
		IsEdited:            r.IsEdited,
		ReactionCounts:      counts,
		CurrentUserReaction: mine,
	}
}
