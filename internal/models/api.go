package models

// Тела запросов и ответов REST API комментариев.

// CreateCommentRequest — создание корня или ответа (если задан ParentID).
type CreateCommentRequest struct {
	PostID   string `json:"postId"             validate:"required,max=128"`
	Content  string `json:"content"            validate:"required"`
	ParentID string `json:"parentId,omitempty" validate:"omitempty,max=128"`
}

// EditCommentRequest — правка текста.
type EditCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// ReactRequest — переключение реакции.
type ReactRequest struct {
	Type ReactionKind `json:"type" validate:"required,oneof=like dislike"`
}
