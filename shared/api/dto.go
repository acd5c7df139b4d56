package api

import "github.com/prolearn/prolearn/shared/domain"

// Request DTOs shared by the BFF handlers, the CLI and the apiclient

// PostRequest is the JSON "post" part of create and update requests.
type PostRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description" validate:"max=1000"`
	Category    domain.Category `json:"category" validate:"required,category"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

// Upload is one file part of an outgoing multipart request.
// Data is never mutated after the upload is built.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Response DTOs

// PostPage is one page of the feed, as paged by the backend.
type PostPage struct {
	Content       []domain.Post `json:"content"`
	TotalPages    int           `json:"totalPages"`
	TotalElements int64         `json:"totalElements"`
	Number        int           `json:"number"`
	Size          int           `json:"size"`
	Last          bool          `json:"last"`
}

// ErrorResponse is the backend's failure body. Message is shown to the user verbatim.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}
