package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend answers the routes the CLI uses and records method, path and multipart fields.
type fakeBackend struct {
	mu       sync.Mutex
	requests []string
	retained []string
	files    map[string][]string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	if r.Header.Get("Authorization") == "" {
		f.mu.Unlock()
		http.Error(w, "no token", http.StatusUnauthorized)
		return
	}
	if err := r.ParseMultipartForm(1 << 20); err == nil {
		f.retained = r.MultipartForm.Value["retainMediaIds"]
		f.files = map[string][]string{}
		for field, headers := range r.MultipartForm.File {
			for _, h := range headers {
				f.files[field] = append(f.files[field], h.Filename)
			}
		}
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && (r.URL.Path == "/api/posts" || r.URL.Path == "/api/users/demouser/posts"):
		io.WriteString(w, `{"content":[{"id":1,"title":"Hello","category":"CODING","owner":"demouser","media":[]}],"number":0,"size":10,"totalPages":1,"last":true}`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/posts/42":
		io.WriteString(w, `{"id":42,"title":"Old","category":"CODING","owner":"demouser","media":[{"id":7,"url":"a.jpg","type":"IMAGE"},{"id":8,"url":"b.jpg","type":"IMAGE"}]}`)
	case r.Method == http.MethodPost && r.URL.Path == "/api/posts":
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":5,"title":"New","category":"CODING","owner":"demouser","media":[{"id":1,"url":"x.png","type":"IMAGE"}]}`)
	case r.Method == http.MethodPut && r.URL.Path == "/api/posts/42":
		io.WriteString(w, `{"id":42,"title":"Old","category":"CODING","owner":"demouser","media":[{"id":8,"url":"b.jpg","type":"IMAGE"}]}`)
	case r.Method == http.MethodPost && r.URL.Path == "/api/posts/5/comments":
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":3,"content":"hello world","username":"demouser"}`)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakeBackend) recorded() (requests, retained []string, files map[string][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...), f.retained, f.files
}

func runCLI(t *testing.T, backend *fakeBackend, args ...string) (string, error) {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	t.Setenv("JWT_SECRET", "cli-secret")

	var out bytes.Buffer
	prev := stdout
	stdout = &out
	t.Cleanup(func() { stdout = prev })

	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", t.TempDir() + "/missing", "--api", server.URL + "/api", "--log-level", "error"}, args...))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestMissingExplicitConfigFails(t *testing.T) {
	_, err := runCLI(t, &fakeBackend{}, "posts", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func writeConfigFolder(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte("page_size: 10\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte("jwt_key: cli-secret\n"), 0o644))
	return dir
}

func run(t *testing.T, backend *fakeBackend, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, backend, append([]string{"--config", writeConfigFolder(t)}, args...)...)
}

func TestPostsList(t *testing.T) {
	backend := &fakeBackend{}
	out, err := run(t, backend, "posts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "Coding")

	out, err = run(t, backend, "--json", "posts", "list")
	require.NoError(t, err)
	var page struct {
		Content []struct {
			Id int64 `json:"id"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Content, 1)

	_, err = run(t, backend, "posts", "list", "--category", "COOKING")
	assert.Error(t, err)

	out, err = run(t, backend, "posts", "list", "--user", "demouser")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
	requests, _, _ := backend.recorded()
	assert.Contains(t, requests, "GET /api/users/demouser/posts")

	_, err = run(t, backend, "posts", "list", "--user", "demouser", "--category", "CODING")
	assert.Error(t, err)
}

func TestPostsCreate(t *testing.T) {
	t.Run("with a file", func(t *testing.T) {
		backend := &fakeBackend{}
		file := filepath.Join(t.TempDir(), "shot.png")
		require.NoError(t, os.WriteFile(file, []byte("not really a png"), 0o644))

		out, err := run(t, backend, "posts", "create", "--title", "New", "--category", "CODING", "--file", file)
		require.NoError(t, err)
		assert.Contains(t, out, "created post 5")
		_, _, files := backend.recorded()
		assert.Equal(t, []string{"shot.png"}, files["media"])
	})

	t.Run("missing title never reaches the backend", func(t *testing.T) {
		backend := &fakeBackend{}
		_, err := run(t, backend, "posts", "create", "--category", "CODING")
		require.Error(t, err)
		assert.Equal(t, "Title and category are required.", err.Error())
		requests, _, _ := backend.recorded()
		assert.Empty(t, requests)
	})

	t.Run("too many files", func(t *testing.T) {
		backend := &fakeBackend{}
		dir := t.TempDir()
		var args []string
		for _, name := range []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg"} {
			p := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
			args = append(args, "--file", p)
		}
		_, err := run(t, backend, append([]string{"posts", "create", "--title", "T", "--category", "OTHER"}, args...)...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "up to 3 media files")
		requests, _, _ := backend.recorded()
		assert.Empty(t, requests)
	})
}

func TestPostsEdit(t *testing.T) {
	backend := &fakeBackend{}
	out, err := run(t, backend, "posts", "edit", "42", "--drop-media", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "updated post 42")
	requests, retained, _ := backend.recorded()
	assert.Equal(t, []string{"GET /api/posts/42", "PUT /api/posts/42"}, requests)
	assert.Equal(t, []string{"8"}, retained)
}

func TestPostActionsAndComments(t *testing.T) {
	backend := &fakeBackend{}

	out, err := run(t, backend, "posts", "like", "3")
	require.NoError(t, err)
	assert.Equal(t, "post 3 liked\n", out)

	out, err = run(t, backend, "comments", "add", "5", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "comment 3 added to post 5\n", out)

	_, err = run(t, backend, "posts", "delete", "abc")
	assert.Error(t, err)

	requests, _, _ := backend.recorded()
	assert.Equal(t, []string{"POST /api/posts/3/like", "POST /api/posts/5/comments"}, requests)
}
