package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prolearn/prolearn/shared/api"
	internal_errors "github.com/prolearn/prolearn/shared/errors"
)

// ErrBackendUnavailable wraps every transport failure: the request did not complete.
var ErrBackendUnavailable = errors.New("backend unavailable")

// TokenSource supplies the bearer token attached to every backend request.
type TokenSource interface {
	Token() (string, error)
}

// APIClient handles all communication with the backend API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
	tokens     TokenSource
}

// New creates a client for the backend rooted at baseURL (e.g. http://api:8080/api).
// The transport's default timeout applies; submits are never retried.
func New(baseURL string, tokens TokenSource) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{},
		tokens:     tokens,
	}
}

func (c *APIClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to obtain access token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send executes req and turns non-2xx responses into *ErrorWithStatusCode.
// On success the caller owns resp.Body.
func (c *APIClient) send(req *http.Request) (*http.Response, error) {
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, errorFromResponse(resp)
	}
	return resp, nil
}

// do is the single helper for JSON requests. body and out may be nil.
func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeBody(resp, out)
}

func decodeBody(resp *http.Response, out any) error {
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", internal_errors.ErrUndecodableResponse, err)
	}
	return nil
}

// errorFromResponse keeps the backend's message verbatim when it sends one.
func errorFromResponse(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var errResp api.ErrorResponse
	message := ""
	if err := json.Unmarshal(bodyBytes, &errResp); err == nil {
		message = strings.TrimSpace(errResp.Message)
	} else if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		message = strings.TrimSpace(string(bodyBytes))
	}
	return &internal_errors.ErrorWithStatusCode{Message: message, StatusCode: resp.StatusCode}
}
