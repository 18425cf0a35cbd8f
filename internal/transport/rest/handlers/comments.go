package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/bragboard/internal/errors"
	"github.com/pribylovaa/bragboard/internal/models"
	"github.com/pribylovaa/bragboard/internal/service"
	"github.com/pribylovaa/bragboard/internal/transport/rest/middleware"
)

// ListComments — GET /comments?postId=...
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	postID := strings.TrimSpace(r.URL.Query().Get("postId"))
	if postID == "" {
		apierrors.WriteError(w, r, http.StatusBadRequest)
		return
	}

	viewer, _ := middleware.AuthorFrom(r.Context())

	roots, err := h.comments.ListTree(r.Context(), postID, viewer.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if roots == nil {
		roots = []models.Comment{}
	}

	writeJSON(w, http.StatusOK, roots)
}

// GetComment — GET /comments/{id}
func (h *Handlers) GetComment(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.AuthorFrom(r.Context())

	c, err := h.comments.CommentByID(r.Context(), chi.URLParam(r, "id"), viewer.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// CreateComment — POST /comments
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in models.CreateCommentRequest
	if err := h.decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, http.StatusBadRequest)
		return
	}

	author, _ := middleware.AuthorFrom(r.Context())

	c, err := h.comments.CreateComment(r.Context(), service.CreateCommentInput{
		PostID:   in.PostID,
		ParentID: in.ParentID,
		Author:   author,
		Content:  in.Content,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// EditComment — PUT /comments/{id}
func (h *Handlers) EditComment(w http.ResponseWriter, r *http.Request) {
	var in models.EditCommentRequest
	if err := h.decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, http.StatusBadRequest)
		return
	}

	actor, _ := middleware.AuthorFrom(r.Context())

	c, err := h.comments.EditComment(r.Context(), service.EditCommentInput{
		ID:      chi.URLParam(r, "id"),
		Actor:   actor,
		Content: in.Content,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// DeleteComment — DELETE /comments/{id}
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.AuthorFrom(r.Context())

	if err := h.comments.DeleteComment(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReactToComment — POST /comments/{id}/react
func (h *Handlers) ReactToComment(w http.ResponseWriter, r *http.Request) {
	var in models.ReactRequest
	if err := h.decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, http.StatusBadRequest)
		return
	}

	actor, _ := middleware.AuthorFrom(r.Context())

	c, err := h.comments.React(r.Context(), chi.URLParam(r, "id"), actor, in.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}
