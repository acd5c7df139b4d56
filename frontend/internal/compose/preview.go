package compose

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prolearn/prolearn/shared/utils"
)

var (
	// ErrPreviewReleased means the handle is unknown or was already released. Always a caller bug.
	ErrPreviewReleased = errors.New("preview handle already released")
	ErrStoreClosed     = errors.New("preview store is closed")
)

// File is a locally selected file. The editor that staged it owns Data exclusively.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f File) Size() int64 { return int64(len(f.Data)) }

type PreviewHandle string

// Preview is a render-ready view of a staged file.
type Preview struct {
	Handle      PreviewHandle
	Filename    string
	ContentType string
	Data        []byte
	ETag        string
	CreatedAt   time.Time
}

// Previewer allocates and revokes preview handles.
type Previewer interface {
	Create(f File) (PreviewHandle, error)
	Release(h PreviewHandle) error
}

// PreviewStore is the process-local Previewer served under /previews/{handle}.
type PreviewStore struct {
	mu     sync.RWMutex
	live   map[PreviewHandle]*Preview
	closed bool
}

func NewPreviewStore() *PreviewStore {
	return &PreviewStore{live: make(map[PreviewHandle]*Preview)}
}

func (s *PreviewStore) Create(f File) (PreviewHandle, error) {
	p := &Preview{
		Handle:      PreviewHandle(uuid.NewString()),
		Filename:    f.Name,
		ContentType: f.ContentType,
		Data:        f.Data,
		ETag:        utils.ContentETag(f.Data),
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrStoreClosed
	}
	s.live[p.Handle] = p
	livePreviews.Inc()
	return p.Handle, nil
}

func (s *PreviewStore) Release(h PreviewHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live[h]; !ok {
		return ErrPreviewReleased
	}
	delete(s.live, h)
	livePreviews.Dec()
	return nil
}

func (s *PreviewStore) Get(h PreviewHandle) (*Preview, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.live[h]
	return p, ok
}

// Live returns the number of outstanding handles.
func (s *PreviewStore) Live() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.live)
}

// Close refuses further Create calls. Outstanding handles stay valid until released.
func (s *PreviewStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// previewScope releases everything it acquired unless commit is called.
// Use with defer so that every exit path of a batch is covered.
type previewScope struct {
	previews  Previewer
	handles   []PreviewHandle
	committed bool
}

func newPreviewScope(p Previewer) *previewScope {
	return &previewScope{previews: p}
}

func (s *previewScope) acquire(f File) (PreviewHandle, error) {
	h, err := s.previews.Create(f)
	if err != nil {
		return "", err
	}
	s.handles = append(s.handles, h)
	return h, nil
}

func (s *previewScope) commit() { s.committed = true }

func (s *previewScope) close() {
	if s.committed {
		return
	}
	for _, h := range s.handles {
		_ = s.previews.Release(h)
	}
	s.handles = nil
}
