package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prolearn/prolearn/frontend/internal/compose"
	frontend_domain "github.com/prolearn/prolearn/frontend/internal/domain"
	"github.com/prolearn/prolearn/shared/domain"
	"github.com/prolearn/prolearn/shared/logger"
	"github.com/prolearn/prolearn/shared/utils"
	"github.com/prolearn/prolearn/shared/validation"
)

const (
	previewPathPrefix = "/previews/"
	mediaFormField    = "media"
	// form fields besides the files themselves
	multipartBuffer = 1 << 20
)

func (h *Handler) editorPage(v compose.View) frontend_domain.EditorPageData {
	page := frontend_domain.EditorPageData{
		View:     v,
		Staged:   make([]frontend_domain.StagedMedia, 0, len(v.Staged)),
		Existing: make([]frontend_domain.ExistingMedia, 0, len(v.Existing)),
	}
	for _, s := range v.Staged {
		page.Staged = append(page.Staged, frontend_domain.StagedMedia{
			StagedView: s,
			PreviewURL: previewPathPrefix + string(s.Preview),
		})
	}
	for _, x := range v.Existing {
		page.Existing = append(page.Existing, frontend_domain.ExistingMedia{
			ExistingView: x,
			URL:          h.posts.MediaURL(x.RemoteRef),
		})
	}
	return page
}

// editor resolves the editor in the path for the current user, writing the failure itself.
func (h *Handler) editor(w http.ResponseWriter, r *http.Request) (*compose.Editor, bool) {
	user, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}
	e, err := h.editors.Get(chi.URLParam(r, "editorId"), user.Username)
	if err != nil {
		writeEditorError(w, err)
		return nil, false
	}
	return e, true
}

func (h *Handler) CreateEditor(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	e := h.editors.OpenCreate(user.Username)
	w.Header().Set("Location", "/api/editors/"+e.ID())
	utils.WriteJSON(w, http.StatusCreated, h.editorPage(e.View()))
}

// OpenEditEditor loads the post and opens an editor hydrated with its media.
// Only the owner may edit.
func (h *Handler) OpenEditEditor(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "post ID")
	if !ok {
		return
	}
	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if post.Owner != user.Username {
		http.Error(w, "You can only edit your own posts", http.StatusForbidden)
		return
	}

	e := h.editors.OpenEdit(user.Username, post)
	w.Header().Set("Location", "/api/editors/"+e.ID())
	utils.WriteJSON(w, http.StatusCreated, h.editorPage(e.View()))
}

func (h *Handler) GetEditor(w http.ResponseWriter, r *http.Request) {
	e, ok := h.editor(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.editorPage(e.View()))
}

// draftPatch updates only the fields present in the body.
type draftPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (p draftPatch) actions() []compose.Action {
	var actions []compose.Action
	if p.Title != nil {
		actions = append(actions, compose.SetTitle{Title: *p.Title})
	}
	if p.Description != nil {
		actions = append(actions, compose.SetDescription{Description: *p.Description})
	}
	if p.Category != nil {
		actions = append(actions, compose.SetCategory{Category: domain.Category(*p.Category)})
	}
	return actions
}

func (h *Handler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	e, ok := h.editor(w, r)
	if !ok {
		return
	}
	var patch draftPatch
	if err := utils.Decode(r.Body, &patch); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	for _, a := range patch.actions() {
		if err := e.Dispatch(a); err != nil {
			writeEditorError(w, err)
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, h.editorPage(e.View()))
}

func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	e, ok := h.editor(w, r)
	if !ok {
		return
	}

	limits := h.Public.Limits()
	maxRequestSize := validation.CalculateMaxRequestSize(limits, multipartBuffer)
	if err := validation.ValidateAndParseMultipart(r, w, maxRequestSize); err != nil {
		maxSizeMB := validation.FormatSizeMB(maxRequestSize)
		writeEditorError(w, fmt.Errorf("%w: upload exceeds the limit of %.0f MB", validation.ErrPayloadTooLarge, maxSizeMB))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.Log.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	headers := r.MultipartForm.File[mediaFormField]
	if len(headers) == 0 {
		http.Error(w, "no files in the media field", http.StatusBadRequest)
		return
	}
	files, err := readFiles(headers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := e.Dispatch(compose.AddFiles{Files: files}); err != nil {
		writeEditorError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.editorPage(e.View()))
}

func readFiles(headers []*multipart.FileHeader) ([]compose.File, error) {
	files := make([]compose.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}
		files = append(files, compose.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

func (h *Handler) RemoveMedia(w http.ResponseWriter, r *http.Request) {
	e, ok := h.editor(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid index: must be an integer", http.StatusBadRequest)
		return
	}
	if err := e.Dispatch(compose.RemoveStaged{Index: index}); err != nil {
		writeEditorError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.editorPage(e.View()))
}

func (h *Handler) ToggleExisting(w http.ResponseWriter, r *http.Request) {
	e, ok := h.editor(w, r)
	if !ok {
		return
	}
	mediaID, ok := pathID(w, r, "mediaId", "media ID")
	if !ok {
		return
	}
	if err := e.Dispatch(compose.ToggleRetain{ID: mediaID}); err != nil {
		writeEditorError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.editorPage(e.View()))
}

// Submit blocks until the backend answers. A client that disconnects does not abort the call.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	e, ok := h.editor(w, r)
	if !ok {
		return
	}
	post, err := e.Submit(r.Context())
	if err != nil {
		writeEditorError(w, err)
		return
	}
	v := e.View()
	switch {
	case post != nil:
		w.Header().Set("Location", fmt.Sprintf("/api/posts/%d", post.Id))
	case v.PostID != 0:
		w.Header().Set("Location", fmt.Sprintf("/api/posts/%d", v.PostID))
	}
	utils.WriteJSON(w, http.StatusOK, h.editorPage(v))
}

func (h *Handler) CloseEditor(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.editors.Close(chi.URLParam(r, "editorId"), user.Username); err != nil {
		writeEditorError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
