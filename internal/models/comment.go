// Package models содержит доменные сущности комментариев BragBoard.
package models

import (
	"time"
)

// ReactionKind — вид реакции пользователя на комментарий.
// Пустая строка означает «реакции нет».
type ReactionKind string

const (
	ReactionNone    ReactionKind = ""
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// Valid сообщает, является ли k одной из допустимых реакций (none не считается).
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// ReactionCounts — агрегированные счётчики реакций комментария.
type ReactionCounts struct {
	Like    int `json:"like"`
	Dislike int `json:"dislike"`
}

// Get возвращает счётчик для указанной реакции (0 для неизвестной).
func (c ReactionCounts) Get(k ReactionKind) int {
	switch k {
	case ReactionLike:
		return c.Like
	case ReactionDislike:
		return c.Dislike
	default:
		return 0
	}
}

// Comment — комментарий или ответ в том виде, в котором его видит конкретный пользователь.
// Важно:
//   - ID — непрозрачный идентификатор, выдаётся сервером;
//   - ParentID пуст у корня; у ответа всегда указывает на корень (дерево двухуровневое);
//   - AuthorID/AuthorName/AuthorRole — снимок автора на момент создания;
//   - IsEdited выставляется при первой правке и больше не сбрасывается;
//   - CurrentUserReaction — собственная реакция запросившего пользователя;
//   - Replies заполняется только у корней.
type Comment struct {
	ID                  string         `json:"id"`
	PostID              string         `json:"postId"`
	ParentID            string         `json:"parentId,omitempty"`
	AuthorID            string         `json:"authorId"`
	AuthorName          string         `json:"authorName"`
	AuthorRole          string         `json:"authorRole"`
	Content             string         `json:"content"`
	CreatedAt           time.Time      `json:"createdAt"`
	IsEdited            bool           `json:"isEdited"`
	ReactionCounts      ReactionCounts `json:"reactionCounts"`
	CurrentUserReaction ReactionKind   `json:"currentUserReaction,omitempty"`
	Replies             []Comment      `json:"replies,omitempty"`
}

// IsRoot — корневой комментарий (без родителя).
func (c Comment) IsRoot() bool {
	return c.ParentID == ""
}
