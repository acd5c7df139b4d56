package validation

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/prolearn/prolearn/shared/domain"
)

const MiB = 1 << 20

// Limits bounds the attachments of a single post.
type Limits struct {
	MaxFiles         int
	MaxImageBytes    int64
	MaxVideoBytes    int64
	MaxVideoDuration time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		MaxFiles:         3,
		MaxImageBytes:    10 * MiB,
		MaxVideoBytes:    30 * MiB,
		MaxVideoDuration: 30 * time.Second,
	}
}

func (l Limits) MaxBytes(kind domain.MediaKind) int64 {
	if kind == domain.MediaVideo {
		return l.MaxVideoBytes
	}
	return l.MaxImageBytes
}

// Candidate is a newly proposed file, described by what validation needs.
type Candidate struct {
	Name string
	Kind domain.MediaKind
	Size int64
}

// Snapshot is the current attachment state: retained existing kinds plus staged kinds.
type Snapshot struct {
	Retained []domain.MediaKind
	Staged   []domain.MediaKind
}

func (s Snapshot) kinds() []domain.MediaKind {
	all := make([]domain.MediaKind, 0, len(s.Retained)+len(s.Staged))
	all = append(all, s.Retained...)
	return append(all, s.Staged...)
}

// CheckBatch decides whether batch may join the current state.
// The combined prospective state is evaluated, so adding files in several small
// batches cannot bypass the count or video rules. Only the new files are size-checked.
func (l Limits) CheckBatch(current Snapshot, batch []Candidate) error {
	if len(batch) == 0 {
		return nil
	}
	prospective := current.kinds()
	for _, c := range batch {
		prospective = append(prospective, c.Kind)
	}
	if err := l.checkKinds(prospective); err != nil {
		return err
	}
	for _, c := range batch {
		if limit := l.MaxBytes(c.Kind); c.Size > limit {
			return &FileTooLargeError{Name: c.Name, Kind: c.Kind, Limit: limit}
		}
	}
	return nil
}

// CheckSet validates a complete state, e.g. before re-including an existing attachment.
func (l Limits) CheckSet(s Snapshot) error {
	return l.checkKinds(s.kinds())
}

func (l Limits) checkKinds(kinds []domain.MediaKind) error {
	if len(kinds) > l.MaxFiles {
		return fmt.Errorf("%w: you can only have up to %d media files total", ErrTooManyAttachments, l.MaxFiles)
	}
	for _, k := range kinds {
		if k == domain.MediaVideo && len(kinds) > 1 {
			return ErrVideoExclusivity
		}
	}
	return nil
}

// AllowedTypes is the media-type admission list.
type AllowedTypes struct {
	Images []string
	Videos []string
}

// Kind resolves a declared media type to an attachment kind, or ErrInvalidMimeType.
func (a AllowedTypes) Kind(mimeType string) (domain.MediaKind, error) {
	allowed := BuildAllowedMimeMap(a.Images, a.Videos)
	base, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		base = mimeType
	}
	base = strings.ToLower(base)
	if !allowed[base] {
		return "", fmt.Errorf("%w: %s", ErrInvalidMimeType, mimeType)
	}
	kind, ok := domain.KindFromMediaType(base)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidMimeType, mimeType)
	}
	return kind, nil
}

func BuildAllowedMimeMap(imageMimes, videoMimes []string) map[string]bool {
	allowedMimes := make(map[string]bool, len(imageMimes)+len(videoMimes))
	for _, m := range imageMimes {
		allowedMimes[strings.ToLower(m)] = true
	}
	for _, m := range videoMimes {
		allowedMimes[strings.ToLower(m)] = true
	}
	return allowedMimes
}

// DetectMimeTypeOf prefers the declared Content-Type and falls back to the extension.
func DetectMimeTypeOf(filename, declared string) (string, error) {
	mimeType := declared
	if mimeType == "" || mimeType == "application/octet-stream" {
		if detected := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); detected != "" {
			mimeType = detected
		}
	}
	if mimeType == "" {
		return "", fmt.Errorf("could not detect MIME type for file: %s", filename)
	}
	return mimeType, nil
}

// ExtractImageDimensions decodes only the image header. Undecodable images yield nils.
func ExtractImageDimensions(r io.Reader, kind domain.MediaKind) (*int, *int) {
	if kind != domain.MediaImage {
		return nil, nil
	}
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return nil, nil
	}
	width, height := cfg.Width, cfg.Height
	return &width, &height
}
