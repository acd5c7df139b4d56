package handler

import (
	"errors"
	"net/http"

	"github.com/prolearn/prolearn/frontend/internal/compose"
	frontend_domain "github.com/prolearn/prolearn/frontend/internal/domain"
	"github.com/prolearn/prolearn/shared/logger"
	"github.com/prolearn/prolearn/shared/utils"
	"github.com/prolearn/prolearn/shared/validation"
)

const (
	kindConflict = "conflict"
	kindNotFound = "not-found"
	kindGone     = "gone"
	kindInternal = "internal-error"
)

// writeEditorError maps editor and submit failures onto status codes.
// Every response carries an ErrorBody so clients can branch on kind.
func writeEditorError(w http.ResponseWriter, err error) {
	status, body := editorErrorBody(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error("editor request failed", "error", err)
	}
	utils.WriteJSON(w, status, body)
}

func editorErrorBody(err error) (int, frontend_domain.ErrorBody) {
	var se *compose.SubmitError
	if errors.As(err, &se) {
		body := frontend_domain.ErrorBody{Kind: string(se.Kind), Message: se.Message}
		switch se.Kind {
		case compose.KindValidation:
			return http.StatusUnprocessableEntity, body
		case compose.KindServer:
			return http.StatusBadGateway, body
		default:
			return http.StatusServiceUnavailable, body
		}
	}

	switch {
	case errors.Is(err, compose.ErrSubmitInFlight):
		return http.StatusConflict, frontend_domain.ErrorBody{Kind: kindConflict, Message: err.Error()}
	case errors.Is(err, compose.ErrEditorNotFound),
		errors.Is(err, compose.ErrIndexOutOfRange),
		errors.Is(err, compose.ErrUnknownAttachment):
		return http.StatusNotFound, frontend_domain.ErrorBody{Kind: kindNotFound, Message: err.Error()}
	case errors.Is(err, compose.ErrEditorClosed):
		return http.StatusGone, frontend_domain.ErrorBody{Kind: kindGone, Message: err.Error()}
	case errors.Is(err, compose.ErrUnknownCategory):
		return http.StatusUnprocessableEntity, frontend_domain.ErrorBody{
			Kind: string(compose.KindValidation), Reason: "unknown-category", Message: err.Error(),
		}
	}

	if reason := validation.Reason(err); reason != "other" {
		status := http.StatusUnprocessableEntity
		if reason == "payload-too-large" {
			status = http.StatusRequestEntityTooLarge
		}
		return status, frontend_domain.ErrorBody{Kind: string(compose.KindValidation), Reason: reason, Message: err.Error()}
	}
	return http.StatusInternalServerError, frontend_domain.ErrorBody{Kind: kindInternal, Message: "Internal error"}
}
