package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/prolearn/prolearn/frontend/internal/compose"
	"github.com/prolearn/prolearn/frontend/internal/markdown"
	"github.com/prolearn/prolearn/shared/api"
	"github.com/prolearn/prolearn/shared/config"
	"github.com/prolearn/prolearn/shared/domain"
	internal_errors "github.com/prolearn/prolearn/shared/errors"
	mw "github.com/prolearn/prolearn/shared/middleware"
)

const (
	testUser   = "demouser"
	testUserHd = "X-Test-User"
)

type updateCall struct {
	id       int64
	post     api.PostRequest
	retained []int64
	media    []api.Upload
}

// fakeBackend implements both PostService and compose.PostAPI and records calls.
type fakeBackend struct {
	mu sync.Mutex

	posts     map[int64]*domain.Post
	page      *api.PostPage
	err       error
	submitErr error

	calls   []string
	creates []api.PostRequest
	uploads [][]api.Upload
	updates []updateCall
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		posts: map[int64]*domain.Post{
			42: {
				Id: 42, Title: "Goroutines", Description: "**bold**", Category: domain.CategoryCoding,
				Owner: testUser,
				Media: []domain.Media{{Id: 7, URL: "a.jpg", Kind: domain.MediaImage}, {Id: 8, URL: "b.jpg", Kind: domain.MediaImage}},
			},
			43: {Id: 43, Title: "Not mine", Category: domain.CategoryOther, Owner: "someoneelse", Media: []domain.Media{}},
		},
		page: &api.PostPage{Content: []domain.Post{}, Size: 10},
	}
}

func (f *fakeBackend) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeBackend) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) ListPosts(_ context.Context, page, size int) (*api.PostPage, error) {
	f.record("list %d %d", page, size)
	return f.page, f.err
}

func (f *fakeBackend) ListPostsByCategory(_ context.Context, c domain.Category, page, size int) (*api.PostPage, error) {
	f.record("list %s %d %d", c, page, size)
	return f.page, f.err
}

func (f *fakeBackend) ListPostsByUser(_ context.Context, user string, page, size int) (*api.PostPage, error) {
	f.record("list user %s %d %d", user, page, size)
	return f.page, f.err
}

func (f *fakeBackend) GetPost(_ context.Context, id int64) (*domain.Post, error) {
	f.record("get %d", id)
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, internal_errors.NotFound("Post not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeBackend) DeletePost(_ context.Context, id int64) error {
	f.record("delete %d", id)
	return f.err
}

func (f *fakeBackend) LikePost(_ context.Context, id int64) error {
	f.record("like %d", id)
	return f.err
}

func (f *fakeBackend) UnlikePost(_ context.Context, id int64) error {
	f.record("unlike %d", id)
	return f.err
}

func (f *fakeBackend) AddComment(_ context.Context, postID int64, content string) (*domain.Comment, error) {
	f.record("comment %d", postID)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Comment{Id: 1, Content: content, Username: testUser}, nil
}

func (f *fakeBackend) DeleteComment(_ context.Context, postID, commentID int64) error {
	f.record("uncomment %d %d", postID, commentID)
	return f.err
}

func (f *fakeBackend) MediaURL(ref string) string {
	return "http://backend/api/posts/media/" + ref
}

func (f *fakeBackend) CreatePost(_ context.Context, post api.PostRequest, media []api.Upload) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.creates = append(f.creates, post)
	f.uploads = append(f.uploads, media)
	return &domain.Post{Id: 100, Title: post.Title, Category: post.Category, Owner: testUser}, nil
}

func (f *fakeBackend) UpdatePost(_ context.Context, id int64, post api.PostRequest, retained []int64, media []api.Upload) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.updates = append(f.updates, updateCall{id: id, post: post, retained: retained, media: media})
	out := &domain.Post{Id: id, Title: post.Title, Category: post.Category, Owner: testUser}
	for _, r := range retained {
		out.Media = append(out.Media, domain.Media{Id: r, URL: fmt.Sprintf("m%d.jpg", r), Kind: domain.MediaImage})
	}
	return out, nil
}

type testEnv struct {
	backend  *fakeBackend
	editors  *compose.Registry
	previews *compose.PreviewStore
	router   http.Handler
}

// withTestUser stands in for the auth middleware. The user can be switched per request.
func withTestUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get(testUserHd)
		if name == "" {
			name = testUser
		}
		user := &domain.User{Username: name, DisplayName: name}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), mw.UserClaimsKey, user)))
	})
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Default()
	backend := newFakeBackend()
	previews := compose.NewPreviewStore()
	editors := compose.NewRegistry(compose.Config{
		Limits:   cfg.Public.Limits(),
		Types:    cfg.Public.AllowedTypes(),
		Previews: previews,
		API:      backend,
	}, time.Hour)
	t.Cleanup(func() {
		editors.Shutdown()
		previews.Close()
	})

	h := New(cfg.Public, markdown.New(), backend, editors, previews)

	r := chi.NewRouter()
	r.Use(withTestUser)
	r.Get("/api/me", h.GetMe)
	r.Get("/api/categories", h.GetCategories)
	r.Get("/api/posts", h.ListPosts)
	r.Get("/api/posts/{id}", h.GetPost)
	r.Delete("/api/posts/{id}", h.DeletePost)
	r.Post("/api/posts/{id}/like", h.LikePost)
	r.Delete("/api/posts/{id}/like", h.UnlikePost)
	r.Post("/api/posts/{id}/comments", h.AddComment)
	r.Delete("/api/posts/{id}/comments/{commentId}", h.DeleteComment)
	r.Post("/api/posts/{id}/editor", h.OpenEditEditor)
	r.Post("/api/editors", h.CreateEditor)
	r.Get("/api/editors/{editorId}", h.GetEditor)
	r.Patch("/api/editors/{editorId}/draft", h.PatchDraft)
	r.Post("/api/editors/{editorId}/media", h.UploadMedia)
	r.Delete("/api/editors/{editorId}/media/{index}", h.RemoveMedia)
	r.Post("/api/editors/{editorId}/existing/{mediaId}/toggle", h.ToggleExisting)
	r.Post("/api/editors/{editorId}/submit", h.Submit)
	r.Delete("/api/editors/{editorId}", h.CloseEditor)
	r.Get("/previews/{handle}", h.ServePreview)

	return &testEnv{backend: backend, editors: editors, previews: previews, router: r}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) request(t *testing.T, method, url string, body string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, httptest.NewRequest(method, url, bytes.NewBufferString(body)))
}

type testUpload struct {
	name        string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, url string, files ...testUpload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="media"; filename="%s"`, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func jpeg(name string) testUpload {
	return testUpload{name: name, contentType: "image/jpeg", data: []byte("jpeg bytes of " + name)}
}

// editorResponse mirrors the editor JSON shape.
type editorResponse struct {
	ID     string `json:"id"`
	Mode   string `json:"mode"`
	PostID int64  `json:"postId"`
	Phase  string `json:"phase"`
	Draft  struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
	} `json:"draft"`
	Staged []struct {
		Index      int    `json:"index"`
		Name       string `json:"name"`
		Kind       string `json:"type"`
		Preview    string `json:"preview"`
		PreviewURL string `json:"previewUrl"`
	} `json:"staged"`
	Existing []struct {
		ID        int64  `json:"id"`
		RemoteRef string `json:"remoteRef"`
		URL       string `json:"url"`
		Retained  bool   `json:"retained"`
	} `json:"existing"`
	Counts compose.Counts `json:"counts"`
	CanAdd bool           `json:"canAdd"`
	Notice string         `json:"notice"`
	Error  *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func (e *testEnv) openEditor(t *testing.T) editorResponse {
	t.Helper()
	rr := e.request(t, http.MethodPost, "/api/editors", "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[editorResponse](t, rr)
}
