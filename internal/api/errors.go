package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusError is a non-2xx backend response.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

func newStatusError(method, path string, resp *http.Response) error {
	se := &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return se
	}
	// The backend answers errors either as {"message": ...} or plain text.
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if envelope.Message != "" {
			se.Message = envelope.Message
			return se
		}
		if envelope.Error != "" {
			se.Message = envelope.Error
			return se
		}
	}
	se.Message = strings.TrimSpace(string(body))
	return se
}

// IsAuthFailure reports whether err is a 401/403 backend response.
func IsAuthFailure(err error) bool {
	var se *StatusError
	return errors.As(err, &se) &&
		(se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden)
}

// IsNotFound reports whether err is a 404, used to detect optional
// subsystems that are absent on this backend deployment.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}
