package handler

import (
	"net/http"

	frontend_domain "github.com/prolearn/prolearn/frontend/internal/domain"
	"github.com/prolearn/prolearn/shared/api"
	"github.com/prolearn/prolearn/shared/utils"
)

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id", "post ID")
	if !ok {
		return
	}
	var body api.CommentRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	comment, err := h.posts.AddComment(r.Context(), postID, body.Content)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, frontend_domain.CommentView{
		Comment:     *comment,
		ContentHTML: h.TextProcessor.Render(comment.Content),
	})
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id", "post ID")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId", "comment ID")
	if !ok {
		return
	}
	if err := h.posts.DeleteComment(r.Context(), postID, commentID); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
