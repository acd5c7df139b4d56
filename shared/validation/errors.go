package validation

import (
	"errors"
	"fmt"

	"github.com/prolearn/prolearn/shared/domain"
)

// ErrPayloadTooLarge is returned when the request body exceeds size limits
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrInvalidMimeType is returned when a file is neither an allowed image nor an allowed video
var ErrInvalidMimeType = errors.New("invalid MIME type")

// ErrTooManyAttachments is returned when the combined attachment count would exceed the limit
var ErrTooManyAttachments = errors.New("too many attachments")

// ErrVideoExclusivity is returned when a video would share the post with any other attachment
var ErrVideoExclusivity = errors.New("a video cannot be combined with other attachments")

// ErrFileTooLarge matches every *FileTooLargeError
var ErrFileTooLarge = errors.New("file too large")

// ErrVideoTooLong is returned by the duration probe
var ErrVideoTooLong = errors.New("video too long")

type FileTooLargeError struct {
	Name  string
	Kind  domain.MediaKind
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	noun := "Images"
	if e.Kind == domain.MediaVideo {
		noun = "Videos"
	}
	return fmt.Sprintf("File too large: %s. %s must be under %.0fMB.", e.Name, noun, FormatSizeMB(e.Limit))
}

func (e *FileTooLargeError) Is(target error) bool {
	return target == ErrFileTooLarge
}

// Reason maps a rejection to the short code used in metrics and API responses.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrTooManyAttachments):
		return "too-many-files"
	case errors.Is(err, ErrVideoExclusivity):
		return "video-exclusivity-violation"
	case errors.Is(err, ErrFileTooLarge):
		return "file-too-large"
	case errors.Is(err, ErrVideoTooLong):
		return "video-too-long"
	case errors.Is(err, ErrInvalidMimeType):
		return "invalid-media-type"
	case errors.Is(err, ErrPayloadTooLarge):
		return "payload-too-large"
	}
	return "other"
}
