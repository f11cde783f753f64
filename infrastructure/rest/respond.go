package rest

import (
	"chat-signal/errors"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type contextKey string

const userKey contextKey = "user"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		a.log.Error("Request failed", "path", r.URL.Path, "error", err)
	} else {
		a.log.Debug("Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errors.ErrValidation), errors.Is(err, errors.ErrUnsupportedFile):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errors.ErrAuthorization), errors.Is(err, errors.ErrBlocked):
		return http.StatusForbidden
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: malformed body: %v", errors.ErrValidation, err)
	}
	return nil
}

// authenticate stores the token's user in the request context. Without a
// configured secret every request passes anonymously.
func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.auth.Authenticate(r)
		if err != nil && a.authRequired {
			a.fail(w, r, err)
			return
		}
		if userID != "" {
			r = r.WithContext(context.WithValue(r.Context(), userKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}

// actor binds the user named by a request to the authenticated one, if any.
func actor(r *http.Request, claimed string) (string, error) {
	authenticated, _ := r.Context().Value(userKey).(string)
	switch {
	case authenticated == "" && claimed == "":
		return "", fmt.Errorf("%w: userId is required", errors.ErrValidation)
	case authenticated == "":
		return claimed, nil
	case claimed != "" && claimed != authenticated:
		return "", fmt.Errorf("%w: token is for %s", errors.ErrAuthorization, authenticated)
	default:
		return authenticated, nil
	}
}
