package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/prolearn/prolearn/shared/api"
	"github.com/prolearn/prolearn/shared/domain"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// multipartBody describes one outgoing create or update request.
type multipartBody struct {
	post      api.PostRequest
	retained  []int64
	fileField string
	files     []api.Upload
}

func (b multipartBody) write(writer *multipart.Writer) error {
	postJSON, err := json.Marshal(b.post)
	if err != nil {
		return err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="post"; filename="blob"`)
	h.Set("Content-Type", "application/json")
	part, err := writer.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(postJSON); err != nil {
		return err
	}

	for _, id := range b.retained {
		if err := writer.WriteField("retainMediaIds", strconv.FormatInt(id, 10)); err != nil {
			return err
		}
	}

	for _, f := range b.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, b.fileField, escapeQuotes(f.Filename)))
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		} else {
			h.Set("Content-Type", "application/octet-stream")
		}
		part, err := writer.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, bytes.NewReader(f.Data)); err != nil {
			return err
		}
	}
	return nil
}

// sendMultipart streams body through a pipe so large videos are never buffered twice.
func (c *APIClient) sendMultipart(ctx context.Context, method, path string, body multipartBody) (*domain.Post, error) {
	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)

	go func() {
		if err := body.write(writer); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		if err := writer.Close(); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		pipeWriter.Close()
	}()

	req, err := c.newRequest(ctx, method, path, pipeReader)
	if err != nil {
		pipeReader.CloseWithError(err)
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.send(req)
	if err != nil {
		pipeReader.CloseWithError(err)
		return nil, err
	}
	defer resp.Body.Close()

	var post domain.Post
	if err := decodeBody(resp, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost sends POST /posts with the "post" JSON part and one "media" part per file.
func (c *APIClient) CreatePost(ctx context.Context, post api.PostRequest, files []api.Upload) (*domain.Post, error) {
	return c.sendMultipart(ctx, http.MethodPost, "/posts", multipartBody{
		post:      post,
		fileField: "media",
		files:     files,
	})
}

// UpdatePost sends PUT /posts/{id}. Existing media not listed in retained is deleted by the backend.
func (c *APIClient) UpdatePost(ctx context.Context, id int64, post api.PostRequest, retained []int64, files []api.Upload) (*domain.Post, error) {
	return c.sendMultipart(ctx, http.MethodPut, fmt.Sprintf("/posts/%d", id), multipartBody{
		post:      post,
		retained:  retained,
		fileField: "newMedia",
		files:     files,
	})
}
