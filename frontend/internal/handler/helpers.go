package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prolearn/prolearn/frontend/internal/apiclient"
	"github.com/prolearn/prolearn/shared/domain"
	"github.com/prolearn/prolearn/shared/logger"
	mw "github.com/prolearn/prolearn/shared/middleware"
	"github.com/prolearn/prolearn/shared/utils"
)

// parseIntParam parses an integer parameter from a string and returns a meaningful error
func parseIntParam(param string, paramName string) (int64, error) {
	val, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", paramName)
	}
	return val, nil
}

func pathID(w http.ResponseWriter, r *http.Request, name, label string) (int64, bool) {
	id, err := parseIntParam(chi.URLParam(r, name), label)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryInt returns def for a missing value and an error for a malformed or negative one.
func queryInt(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative integer", name)
	}
	return v, nil
}

func requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

// writeBackendError forwards backend failures. An unreachable backend is a 503.
func writeBackendError(w http.ResponseWriter, err error) {
	if errors.Is(err, apiclient.ErrBackendUnavailable) {
		logger.Log.Error("backend unavailable", "error", err)
		http.Error(w, "Backend is unavailable. Please try again later.", http.StatusServiceUnavailable)
		return
	}
	utils.WriteErrorAndStatusCode(w, err)
}
