package compose

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prolearn/prolearn/shared/api"
	"github.com/prolearn/prolearn/shared/domain"
	"github.com/prolearn/prolearn/shared/validation"
)

const mb = validation.MiB

var testTypes = validation.AllowedTypes{
	Images: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	Videos: []string{"video/mp4", "video/webm", "video/quicktime"},
}

func imageFile(name string, size int) File {
	return File{Name: name, ContentType: "image/jpeg", Data: make([]byte, size)}
}

func videoFile(name string, size int) File {
	return File{Name: name, ContentType: "video/mp4", Data: make([]byte, size)}
}

// --- recordingPreviews ---

// recordingPreviews counts every Create and Release per handle.
type recordingPreviews struct {
	*PreviewStore

	mu        sync.Mutex
	created   map[PreviewHandle]int
	released  map[PreviewHandle]int
	failAfter int
}

func newRecordingPreviews() *recordingPreviews {
	return &recordingPreviews{
		PreviewStore: NewPreviewStore(),
		created:      make(map[PreviewHandle]int),
		released:     make(map[PreviewHandle]int),
		failAfter:    -1,
	}
}

func (r *recordingPreviews) Create(f File) (PreviewHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAfter >= 0 && len(r.created) >= r.failAfter {
		return "", errors.New("preview backend failure")
	}
	h, err := r.PreviewStore.Create(f)
	if err != nil {
		return "", err
	}
	r.created[h]++
	return h, nil
}

func (r *recordingPreviews) Release(h PreviewHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released[h]++
	return r.PreviewStore.Release(h)
}

func (r *recordingPreviews) createdCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

// assertPaired checks that every created handle was released exactly once.
func (r *recordingPreviews) assertPaired(t *testing.T) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for h, n := range r.created {
		assert.Equal(t, 1, n, "handle %s created more than once", h)
		assert.Equal(t, 1, r.released[h], "handle %s release count", h)
	}
	assert.Len(t, r.released, len(r.created), "released handles that were never created")
	assert.Equal(t, 0, r.PreviewStore.Live())
}

// --- fakePostAPI ---

type createCall struct {
	Post  api.PostRequest
	Media []api.Upload
}

type updateCall struct {
	ID       int64
	Post     api.PostRequest
	Retained []int64
	Media    []api.Upload
}

type fakePostAPI struct {
	mu      sync.Mutex
	creates []createCall
	updates []updateCall

	// results are consumed in order; the last one repeats.
	results []fakeResult
	// gate, when set, blocks every call until it is closed or receives.
	gate    chan struct{}
	started chan struct{}
}

type fakeResult struct {
	post *domain.Post
	err  error
}

func (f *fakePostAPI) next() (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.results) == 0 {
		return &domain.Post{Id: 1}, nil
	}
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return r.post, r.err
}

func (f *fakePostAPI) wait(ctx context.Context) error {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakePostAPI) CreatePost(ctx context.Context, post api.PostRequest, media []api.Upload) (*domain.Post, error) {
	f.mu.Lock()
	f.creates = append(f.creates, createCall{Post: post, Media: media})
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.next()
}

func (f *fakePostAPI) UpdatePost(ctx context.Context, id int64, post api.PostRequest, retained []int64, media []api.Upload) (*domain.Post, error) {
	f.mu.Lock()
	f.updates = append(f.updates, updateCall{ID: id, Post: post, Retained: retained, Media: media})
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.next()
}

func (f *fakePostAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates) + len(f.updates)
}

// --- fakeProber ---

type fakeProber struct {
	durations map[string]time.Duration
	// gate, when set, holds every probe until closed.
	gate chan struct{}
}

func (p *fakeProber) Probe(ctx context.Context, f File) (time.Duration, bool) {
	if p.gate != nil {
		<-p.gate
	}
	d, ok := p.durations[f.Name]
	return d, ok
}

func testConfig(postAPI PostAPI, prober DurationProber) (Config, *recordingPreviews) {
	previews := newRecordingPreviews()
	return Config{
		Limits:   validation.DefaultLimits(),
		Types:    testTypes,
		Previews: previews,
		Prober:   prober,
		API:      postAPI,
	}, previews
}

func existingPost() *domain.Post {
	return &domain.Post{
		Id:          42,
		Title:       "Intro to Go",
		Description: "channels and goroutines",
		Category:    domain.CategoryCoding,
		Media: []domain.Media{
			{Id: 7, URL: "a.jpg", Kind: domain.MediaImage},
			{Id: 8, URL: "b.jpg", Kind: domain.MediaImage},
		},
	}
}
