package api

import (
	"fmt"
	"net/http"
)

// APIError is the decoded error envelope of a failed request.
type APIError struct {
	Status    int
	Code      string
	ErrorCode int
	Message   string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Code != "" && e.ErrorCode > 0 && e.Message != "":
		return fmt.Sprintf("%s (%d): %s", e.Code, e.ErrorCode, e.Message)
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Message != "":
		return e.Message
	case e.Status > 0:
		return fmt.Sprintf("api error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return "api error"
}

// NotFound reports whether the server answered 404 with its own envelope,
// as opposed to an unrelated service at the same address.
func (e *APIError) NotFound() bool {
	return e != nil && e.Status == http.StatusNotFound && e.Code != ""
}
