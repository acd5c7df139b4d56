package frontend_domain

import (
	"github.com/prolearn/prolearn/frontend/internal/compose"
	"github.com/prolearn/prolearn/shared/domain"
)

type MediaView struct {
	Id   int64            `json:"id"`
	Kind domain.MediaKind `json:"type"`
	URL  string           `json:"url"`
}

// PostView is a post ready for display: media URLs resolved, description rendered.
type PostView struct {
	domain.Post
	Media           []MediaView `json:"media"`
	CategoryLabel   string      `json:"categoryLabel"`
	DescriptionHTML string      `json:"descriptionHtml"`
	Excerpt         string      `json:"excerpt"`
	Editable        bool        `json:"editable"`
}

type FeedPageData struct {
	Posts         []PostView      `json:"posts"`
	Page          int             `json:"page"`
	Size          int             `json:"size"`
	TotalPages    int             `json:"totalPages"`
	TotalElements int64           `json:"totalElements"`
	Last          bool            `json:"last"`
	Category      domain.Category `json:"category,omitempty"`
	User          string          `json:"user,omitempty"`
}

type CommentView struct {
	domain.Comment
	ContentHTML string `json:"contentHtml"`
}

type StagedMedia struct {
	compose.StagedView
	PreviewURL string `json:"previewUrl"`
}

type ExistingMedia struct {
	compose.ExistingView
	URL string `json:"url"`
}

// EditorPageData is an editor snapshot with every media reference turned into a URL.
type EditorPageData struct {
	compose.View
	Staged   []StagedMedia   `json:"staged"`
	Existing []ExistingMedia `json:"existing"`
}
