package validation

import (
	"fmt"
	"net/http"
)

// ValidateAndParseMultipart caps the request body and parses the multipart form.
// Exceeding the cap makes the server stop reading and reset the connection.
func ValidateAndParseMultipart(r *http.Request, w http.ResponseWriter, maxSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		return fmt.Errorf("%w: failed to parse multipart form", ErrPayloadTooLarge)
	}
	return nil
}

// CalculateMaxRequestSize returns the attachment budget plus a buffer for form fields.
func CalculateMaxRequestSize(l Limits, bufferSize int64) int64 {
	return int64(l.MaxFiles)*max(l.MaxImageBytes, l.MaxVideoBytes) + bufferSize
}

// FormatSizeMB converts bytes to megabytes for user-facing messages.
func FormatSizeMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}
