package handler

import (
	"context"

	"github.com/prolearn/prolearn/frontend/internal/compose"
	"github.com/prolearn/prolearn/frontend/internal/markdown"
	"github.com/prolearn/prolearn/shared/api"
	"github.com/prolearn/prolearn/shared/config"
	"github.com/prolearn/prolearn/shared/domain"
)

// PostService is the backend surface used by the feed, post and comment endpoints.
type PostService interface {
	ListPosts(ctx context.Context, page, size int) (*api.PostPage, error)
	ListPostsByCategory(ctx context.Context, category domain.Category, page, size int) (*api.PostPage, error)
	ListPostsByUser(ctx context.Context, username string, page, size int) (*api.PostPage, error)
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	DeletePost(ctx context.Context, id int64) error
	LikePost(ctx context.Context, id int64) error
	UnlikePost(ctx context.Context, id int64) error
	AddComment(ctx context.Context, postID int64, content string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID int64) error
	MediaURL(ref string) string
}

type Handler struct {
	Public        config.Public
	TextProcessor *markdown.TextProcessor

	posts    PostService
	editors  *compose.Registry
	previews *compose.PreviewStore
}

func New(publicCfg config.Public, textProcessor *markdown.TextProcessor, posts PostService, editors *compose.Registry, previews *compose.PreviewStore) *Handler {
	return &Handler{
		Public:        publicCfg,
		TextProcessor: textProcessor,
		posts:         posts,
		editors:       editors,
		previews:      previews,
	}
}
