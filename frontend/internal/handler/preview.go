package handler

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prolearn/prolearn/frontend/internal/compose"
)

// ServePreview serves a staged file's bytes while its preview handle is live.
// Conditional requests are answered by http.ServeContent from the ETag.
func (h *Handler) ServePreview(w http.ResponseWriter, r *http.Request) {
	p, ok := h.previews.Get(compose.PreviewHandle(chi.URLParam(r, "handle")))
	if !ok {
		http.Error(w, "preview not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", p.ContentType)
	w.Header().Set("ETag", p.ETag)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, p.Filename, p.CreatedAt, bytes.NewReader(p.Data))
}
