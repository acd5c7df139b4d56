package compose

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prolearn/prolearn/shared/domain"
	"github.com/prolearn/prolearn/shared/logger"
)

var ErrEditorNotFound = errors.New("editor not found")

type registryEntry struct {
	editor   *Editor
	owner    string
	lastSeen time.Time
}

// Registry owns every open editor. An editor idle for longer than idleTTL is
// treated as abandoned by its page and closed by the background sweep.
type Registry struct {
	cfg     Config
	idleTTL time.Duration
	now     func() time.Time
	log     *slog.Logger

	mu      sync.Mutex
	editors map[string]*registryEntry
}

func NewRegistry(cfg Config, idleTTL time.Duration) *Registry {
	return &Registry{
		cfg:     cfg,
		idleTTL: idleTTL,
		now:     time.Now,
		log:     logger.For("editor-registry"),
		editors: make(map[string]*registryEntry),
	}
}

// OpenCreate opens an empty editor for owner.
func (r *Registry) OpenCreate(owner string) *Editor {
	return r.add(NewCreateEditor(r.cfg), owner)
}

// OpenEdit opens an editor hydrated from post for owner.
func (r *Registry) OpenEdit(owner string, post *domain.Post) *Editor {
	return r.add(NewEditEditor(r.cfg, post), owner)
}

func (r *Registry) add(e *Editor, owner string) *Editor {
	r.mu.Lock()
	r.editors[e.ID()] = &registryEntry{editor: e, owner: owner, lastSeen: r.now()}
	openEditors.Set(float64(len(r.editors)))
	r.mu.Unlock()
	r.log.Debug("editor opened", "editor_id", e.ID(), "owner", owner, "mode", e.Mode().String())
	return e
}

// Get returns owner's editor and marks it active. Editors of other users are not found.
func (r *Registry) Get(id, owner string) (*Editor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.editors[id]
	if !ok || entry.owner != owner {
		return nil, ErrEditorNotFound
	}
	entry.lastSeen = r.now()
	return entry.editor, nil
}

// Close removes and tears down owner's editor.
func (r *Registry) Close(id, owner string) error {
	r.mu.Lock()
	entry, ok := r.editors[id]
	if !ok || entry.owner != owner {
		r.mu.Unlock()
		return ErrEditorNotFound
	}
	delete(r.editors, id)
	openEditors.Set(float64(len(r.editors)))
	r.mu.Unlock()

	entry.editor.Close()
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.editors)
}

// Sweep closes editors idle for longer than the TTL and returns how many were closed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var stale []*Editor
	for id, entry := range r.editors {
		if entry.lastSeen.Before(cutoff) {
			stale = append(stale, entry.editor)
			delete(r.editors, id)
		}
	}
	openEditors.Set(float64(len(r.editors)))
	r.mu.Unlock()

	for _, e := range stale {
		e.Close()
	}
	return len(stale)
}

// StartBackgroundCleanup runs Sweep every interval until ctx is done.
func (r *Registry) StartBackgroundCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	r.log.Info("started idle editor cleanup", "interval", interval, "idle_ttl", r.idleTTL)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				start := time.Now()
				if closed := r.Sweep(); closed > 0 {
					r.log.Info("closed idle editors", "closed", closed, "open", r.Len(), "duration", time.Since(start))
				}
			case <-ctx.Done():
				r.log.Info("idle editor cleanup shutting down")
				return
			}
		}
	}()
}

// Shutdown closes every editor.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	all := make([]*Editor, 0, len(r.editors))
	for _, entry := range r.editors {
		all = append(all, entry.editor)
	}
	clear(r.editors)
	openEditors.Set(0)
	r.mu.Unlock()

	for _, e := range all {
		e.Close()
	}
}
