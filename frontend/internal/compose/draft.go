package compose

import (
	"errors"
	"strings"

	"github.com/prolearn/prolearn/shared/api"
	"github.com/prolearn/prolearn/shared/domain"
	"github.com/prolearn/prolearn/shared/utils"
)

var errDraftIncomplete = errors.New("title and category are required")

// PostDraft holds the text fields of the form until submit.
type PostDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    domain.Category `json:"category"`
}

func draftFrom(post *domain.Post) PostDraft {
	return PostDraft{Title: post.Title, Description: post.Description, Category: post.Category}
}

func (d PostDraft) request() api.PostRequest {
	return api.PostRequest{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Category:    d.Category,
	}
}

// validate checks required fields first, then the request bounds.
func (d PostDraft) validate() error {
	if strings.TrimSpace(d.Title) == "" || d.Category == "" {
		return errDraftIncomplete
	}
	return utils.Validate(d.request())
}
