package handler

import (
	"net/http"

	frontend_domain "github.com/prolearn/prolearn/frontend/internal/domain"
	"github.com/prolearn/prolearn/shared/domain"
	"github.com/prolearn/prolearn/shared/utils"
)

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, frontend_domain.MeResponse{
		User:       *user,
		Validation: frontend_domain.NewValidationData(h.Public),
	})
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories := domain.Categories()
	views := make([]frontend_domain.CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, frontend_domain.CategoryView{Value: c, Label: c.Label()})
	}
	utils.WriteJSON(w, http.StatusOK, views)
}
