package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MediaKind is the closed set of attachment kinds.
type MediaKind string

const (
	MediaImage MediaKind = "IMAGE"
	MediaVideo MediaKind = "VIDEO"
)

func (k MediaKind) Valid() bool {
	return k == MediaImage || k == MediaVideo
}

// KindFromMediaType derives the kind from a declared MIME type.
func KindFromMediaType(mediaType string) (MediaKind, bool) {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return MediaImage, true
	case strings.HasPrefix(mediaType, "video/"):
		return MediaVideo, true
	}
	return "", false
}

func (k *MediaKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kind := MediaKind(strings.ToUpper(s))
	if !kind.Valid() {
		return fmt.Errorf("unknown media type %q", s)
	}
	*k = kind
	return nil
}

// Media is an attachment already persisted by the backend.
// URL is an opaque token resolved under the media-serving path.
type Media struct {
	Id   int64     `json:"id"`
	URL  string    `json:"url"`
	Kind MediaKind `json:"type"`
}
