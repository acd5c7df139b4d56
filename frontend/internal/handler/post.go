package handler

import (
	"context"
	"net/http"

	frontend_domain "github.com/prolearn/prolearn/frontend/internal/domain"
	"github.com/prolearn/prolearn/frontend/internal/markdown"
	"github.com/prolearn/prolearn/shared/api"
	"github.com/prolearn/prolearn/shared/domain"
	mw "github.com/prolearn/prolearn/shared/middleware"
	"github.com/prolearn/prolearn/shared/utils"
)

const excerptLength = 200

func (h *Handler) postView(p domain.Post, viewer string) frontend_domain.PostView {
	view := frontend_domain.PostView{
		Post:            p,
		Media:           make([]frontend_domain.MediaView, 0, len(p.Media)),
		CategoryLabel:   p.Category.Label(),
		DescriptionHTML: h.TextProcessor.Render(p.Description),
		Excerpt:         markdown.Excerpt(p.Description, excerptLength),
		Editable:        viewer != "" && p.Owner == viewer,
	}
	for _, m := range p.Media {
		view.Media = append(view.Media, frontend_domain.MediaView{Id: m.Id, Kind: m.Kind, URL: h.posts.MediaURL(m.URL)})
	}
	return view
}

func viewerName(r *http.Request) string {
	if user := mw.GetUserFromContext(r); user != nil {
		return user.Username
	}
	return ""
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	size, err := queryInt(r, "size", h.Public.PageSize)
	if err != nil || size == 0 {
		http.Error(w, "invalid size: must be a positive integer", http.StatusBadRequest)
		return
	}

	var category domain.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		if category, err = domain.ParseCategory(raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	user := r.URL.Query().Get("user")
	if user != "" && category != "" {
		http.Error(w, "filter by category or by user, not both", http.StatusBadRequest)
		return
	}

	var result *api.PostPage
	switch {
	case category != "":
		result, err = h.posts.ListPostsByCategory(r.Context(), category, page, size)
	case user != "":
		result, err = h.posts.ListPostsByUser(r.Context(), user, page, size)
	default:
		result, err = h.posts.ListPosts(r.Context(), page, size)
	}
	if err != nil {
		writeBackendError(w, err)
		return
	}

	viewer := viewerName(r)
	data := frontend_domain.FeedPageData{
		Posts:         make([]frontend_domain.PostView, 0, len(result.Content)),
		Page:          result.Number,
		Size:          result.Size,
		TotalPages:    result.TotalPages,
		TotalElements: result.TotalElements,
		Last:          result.Last,
		Category:      category,
		User:          user,
	}
	for _, p := range result.Content {
		data.Posts = append(data.Posts, h.postView(p, viewer))
	}
	utils.WriteJSON(w, http.StatusOK, data)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "post ID")
	if !ok {
		return
	}
	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.postView(*post, viewerName(r)))
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	h.postAction(w, r, h.posts.DeletePost)
}

func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	h.postAction(w, r, h.posts.LikePost)
}

func (h *Handler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	h.postAction(w, r, h.posts.UnlikePost)
}

// postAction runs a body-less backend call against the post in the path and answers 204.
func (h *Handler) postAction(w http.ResponseWriter, r *http.Request, call func(ctx context.Context, id int64) error) {
	id, ok := pathID(w, r, "id", "post ID")
	if !ok {
		return
	}
	if err := call(r.Context(), id); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
