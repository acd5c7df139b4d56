package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/prolearn/prolearn/shared/api"
	"github.com/prolearn/prolearn/shared/domain"
)

const mediaPath = "/posts/media/"

func pageQuery(page, size int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return "?" + q.Encode()
}

func (c *APIClient) listPage(ctx context.Context, path string) (*api.PostPage, error) {
	var result api.PostPage
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	if result.Content == nil {
		result.Content = []domain.Post{}
	}
	return &result, nil
}

// ListPosts fetches one zero-based page of the feed.
func (c *APIClient) ListPosts(ctx context.Context, page, size int) (*api.PostPage, error) {
	return c.listPage(ctx, "/posts"+pageQuery(page, size))
}

func (c *APIClient) ListPostsByCategory(ctx context.Context, category domain.Category, page, size int) (*api.PostPage, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	return c.listPage(ctx, "/posts/category/"+url.PathEscape(string(category))+pageQuery(page, size))
}

// ListPostsByUser fetches one page of the posts owned by username.
func (c *APIClient) ListPostsByUser(ctx context.Context, username string, page, size int) (*api.PostPage, error) {
	if username == "" {
		return nil, errors.New("username is required")
	}
	return c.listPage(ctx, "/users/"+url.PathEscape(username)+"/posts"+pageQuery(page, size))
}

func (c *APIClient) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	var post domain.Post
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *APIClient) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, nil)
}

func (c *APIClient) LikePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/like", id), nil, nil)
}

func (c *APIClient) UnlikePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d/like", id), nil, nil)
}

// MediaURL resolves an opaque media reference to its display URL.
func (c *APIClient) MediaURL(ref string) string {
	return c.BaseURL + mediaPath + url.PathEscape(ref)
}
