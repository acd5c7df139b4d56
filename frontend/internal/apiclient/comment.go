package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prolearn/prolearn/shared/api"
	"github.com/prolearn/prolearn/shared/domain"
)

func (c *APIClient) AddComment(ctx context.Context, postID int64, content string) (*domain.Comment, error) {
	var comment domain.Comment
	path := fmt.Sprintf("/posts/%d/comments", postID)
	if err := c.do(ctx, http.MethodPost, path, api.CommentRequest{Content: content}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *APIClient) DeleteComment(ctx context.Context, postID, commentID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d/comments/%d", postID, commentID), nil, nil)
}
