package compose

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prolearn/prolearn/shared/domain"
	"github.com/prolearn/prolearn/shared/validation"
)

var ErrUnknownAttachment = errors.New("unknown existing attachment")

// StagedAttachment is a new file waiting for submit.
type StagedAttachment struct {
	File File
	// Kind is derived once, at selection.
	Kind    domain.MediaKind
	Preview PreviewHandle
	Width   *int
	Height  *int
	batch   uint64
}

// ExistingAttachment is server-side media of the post being edited.
type ExistingAttachment struct {
	ID        int64
	Kind      domain.MediaKind
	RemoteRef string
	Retained  bool
}

type Counts struct {
	RetainedExisting int `json:"retainedExisting"`
	Staged           int `json:"staged"`
	Total            int `json:"total"`
}

// AttachmentSet holds staged files and, in edit mode, the post's existing media.
// It is not safe for concurrent use; the owning Editor serializes access.
type AttachmentSet struct {
	limits   validation.Limits
	types    validation.AllowedTypes
	previews Previewer
	log      *slog.Logger

	staged   []StagedAttachment
	existing []ExistingAttachment

	// generation changes on every committed mutation.
	generation uint64
	lastBatch  uint64
}

func NewAttachmentSet(limits validation.Limits, types validation.AllowedTypes, previews Previewer, log *slog.Logger) *AttachmentSet {
	return &AttachmentSet{limits: limits, types: types, previews: previews, log: log}
}

// Hydrate replaces the existing media with a fetched post's media, all retained.
func (s *AttachmentSet) Hydrate(media []domain.Media) {
	s.existing = make([]ExistingAttachment, 0, len(media))
	for _, m := range media {
		s.existing = append(s.existing, ExistingAttachment{ID: m.Id, Kind: m.Kind, RemoteRef: m.URL, Retained: true})
	}
	s.generation++
}

func (s *AttachmentSet) snapshot() validation.Snapshot {
	var snap validation.Snapshot
	for _, e := range s.existing {
		if e.Retained {
			snap.Retained = append(snap.Retained, e.Kind)
		}
	}
	for _, st := range s.staged {
		snap.Staged = append(snap.Staged, st.Kind)
	}
	return snap
}

// Batch identifies the files committed by one AddStaged call.
type Batch struct {
	ID         uint64
	Generation uint64
	Videos     []File
}

// AddStaged validates files against the combined prospective state and stages them.
// On any error the set is unchanged and no preview stays allocated.
func (s *AttachmentSet) AddStaged(files []File) (Batch, error) {
	if len(files) == 0 {
		return Batch{}, nil
	}

	files = append([]File(nil), files...)
	kinds := make([]domain.MediaKind, len(files))
	candidates := make([]validation.Candidate, len(files))
	for i, f := range files {
		mimeType, err := validation.DetectMimeTypeOf(f.Name, f.ContentType)
		if err != nil {
			return Batch{}, fmt.Errorf("%w: %s", validation.ErrInvalidMimeType, f.Name)
		}
		kind, err := s.types.Kind(mimeType)
		if err != nil {
			return Batch{}, err
		}
		files[i].ContentType = mimeType
		kinds[i] = kind
		candidates[i] = validation.Candidate{Name: f.Name, Kind: kind, Size: f.Size()}
	}

	if err := s.limits.CheckBatch(s.snapshot(), candidates); err != nil {
		return Batch{}, err
	}

	scope := newPreviewScope(s.previews)
	defer scope.close()

	s.lastBatch++
	batch := Batch{ID: s.lastBatch}
	entries := make([]StagedAttachment, 0, len(files))
	for i, f := range files {
		h, err := scope.acquire(f)
		if err != nil {
			return Batch{}, fmt.Errorf("cannot create preview for %s: %w", f.Name, err)
		}
		w, hgt := validation.ExtractImageDimensions(bytes.NewReader(f.Data), kinds[i])
		entries = append(entries, StagedAttachment{File: f, Kind: kinds[i], Preview: h, Width: w, Height: hgt, batch: batch.ID})
		if kinds[i] == domain.MediaVideo {
			batch.Videos = append(batch.Videos, f)
		}
	}

	s.staged = append(s.staged, entries...)
	scope.commit()
	s.generation++
	batch.Generation = s.generation
	return batch, nil
}

// RemoveStaged drops the staged file at index and releases its preview.
// An out-of-range index is a caller bug and panics.
func (s *AttachmentSet) RemoveStaged(index int) {
	if index < 0 || index >= len(s.staged) {
		panic(fmt.Sprintf("compose: RemoveStaged index %d out of range [0,%d)", index, len(s.staged)))
	}
	s.release(s.staged[index])
	s.staged = append(s.staged[:index], s.staged[index+1:]...)
	s.generation++
}

// removeBatch drops every staged file of the batch. It reports the number removed.
func (s *AttachmentSet) removeBatch(id uint64) int {
	kept := s.staged[:0]
	removed := 0
	for _, st := range s.staged {
		if st.batch == id {
			s.release(st)
			removed++
			continue
		}
		kept = append(kept, st)
	}
	clear(s.staged[len(kept):])
	s.staged = kept
	if removed > 0 {
		s.generation++
	}
	return removed
}

// ToggleRetain flips whether existing media id is kept on the next submit.
// Re-including media re-validates the set and may fail.
func (s *AttachmentSet) ToggleRetain(id int64) error {
	for i := range s.existing {
		if s.existing[i].ID != id {
			continue
		}
		if !s.existing[i].Retained {
			s.existing[i].Retained = true
			if err := s.limits.CheckSet(s.snapshot()); err != nil {
				s.existing[i].Retained = false
				return err
			}
		} else {
			s.existing[i].Retained = false
		}
		s.generation++
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownAttachment, id)
}

func (s *AttachmentSet) Counts() Counts {
	var c Counts
	for _, e := range s.existing {
		if e.Retained {
			c.RetainedExisting++
		}
	}
	c.Staged = len(s.staged)
	c.Total = c.RetainedExisting + c.Staged
	return c
}

// CanAdd reports whether the upload control should be available.
func (s *AttachmentSet) CanAdd() bool {
	snap := s.snapshot()
	all := append(snap.Retained, snap.Staged...)
	if len(all) >= s.limits.MaxFiles {
		return false
	}
	for _, k := range all {
		if k == domain.MediaVideo {
			return false
		}
	}
	return true
}

// RetainedIDs lists retained existing media in their original order.
func (s *AttachmentSet) RetainedIDs() []int64 {
	ids := []int64{}
	for _, e := range s.existing {
		if e.Retained {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Staged returns a copy of the staged entries in order.
func (s *AttachmentSet) Staged() []StagedAttachment {
	return append([]StagedAttachment(nil), s.staged...)
}

func (s *AttachmentSet) Existing() []ExistingAttachment {
	return append([]ExistingAttachment(nil), s.existing...)
}

func (s *AttachmentSet) Generation() uint64 { return s.generation }

// Clear releases every preview and empties the set.
func (s *AttachmentSet) Clear() {
	for _, st := range s.staged {
		s.release(st)
	}
	s.staged = nil
	s.existing = nil
	s.generation++
}

func (s *AttachmentSet) release(st StagedAttachment) {
	if err := s.previews.Release(st.Preview); err != nil {
		s.log.Error("preview release failed", "handle", st.Preview, "file", st.File.Name, "error", err)
	}
}
