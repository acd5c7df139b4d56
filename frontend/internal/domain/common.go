package frontend_domain

import (
	"github.com/prolearn/prolearn/shared/config"
	"github.com/prolearn/prolearn/shared/domain"
)

// ValidationData holds the limits a client needs to validate forms before sending.
// This is the single source of truth for those numbers across handlers.
type ValidationData struct {
	TitleMaxLen       int `json:"titleMaxLen"`
	DescriptionMaxLen int `json:"descriptionMaxLen"`
	CommentMaxLen     int `json:"commentMaxLen"`

	MaxAttachments          int      `json:"maxAttachments"`
	MaxImageSizeBytes       int64    `json:"maxImageSizeBytes"`
	MaxVideoSizeBytes       int64    `json:"maxVideoSizeBytes"`
	MaxVideoDurationSeconds float64  `json:"maxVideoDurationSeconds"`
	AllowedImageMimeTypes   []string `json:"allowedImageMimeTypes"`
	AllowedVideoMimeTypes   []string `json:"allowedVideoMimeTypes"`
}

func NewValidationData(p config.Public) ValidationData {
	return ValidationData{
		TitleMaxLen:             255,
		DescriptionMaxLen:       1000,
		CommentMaxLen:           500,
		MaxAttachments:          p.MaxAttachments,
		MaxImageSizeBytes:       p.MaxImageSizeBytes,
		MaxVideoSizeBytes:       p.MaxVideoSizeBytes,
		MaxVideoDurationSeconds: p.MaxVideoDuration.Seconds(),
		AllowedImageMimeTypes:   p.AllowedImageMimeTypes,
		AllowedVideoMimeTypes:   p.AllowedVideoMimeTypes,
	}
}

type MeResponse struct {
	User       domain.User    `json:"user"`
	Validation ValidationData `json:"validation"`
}

type CategoryView struct {
	Value domain.Category `json:"value"`
	Label string          `json:"label"`
}

// ErrorBody is the JSON error shape of every editor endpoint.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}
