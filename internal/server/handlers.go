package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"quill/internal/api"
	"quill/internal/store"
)

type apiError struct {
	status  int
	code    string
	errCode int
	field   string
	err     error
}

func (e apiError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e apiError) Unwrap() error {
	return e.err
}

func makeAPIError(status int, code string, errCode int, err error) error {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}

	var existing apiError
	if errors.As(err, &existing) {
		if existing.status != 0 {
			return existing
		}
	}

	return apiError{status: status, code: code, errCode: errCode, err: err}
}

func badRequest(err error) error {
	return badRequestCode(err, ErrCodeInvalidArgument)
}

func badRequestCode(err error, code int) error {
	return makeAPIError(http.StatusBadRequest, "invalid_argument", code, err)
}

func notFoundCode(err error, code int) error {
	return makeAPIError(http.StatusNotFound, "not_found", code, err)
}

func internalError(err error) error {
	return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeInternal, err)
}

// classifyStoreError maps store errors onto HTTP errors.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}

	var verr *store.ValidationError
	if errors.As(err, &verr) {
		e := apiError{status: http.StatusBadRequest, code: "invalid_argument", errCode: ErrCodeInvalidArgument, field: verr.Field, err: err}
		if verr.Field == "sort" || verr.Field == "order" {
			e.errCode = ErrCodeInvalidSort
		}
		return e
	}

	var nf *store.NotFoundError
	if errors.As(err, &nf) {
		code := ErrCodeBlogNotFound
		if nf.Entity == "author" {
			code = ErrCodeAuthorNotFound
		}
		return notFoundCode(err, code)
	}

	return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeStoreFailure, err)
}

func httpStatusFromError(err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		return apiErr.status
	}
	return http.StatusInternalServerError
}

func errorCode(status int, err error) string {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.code != "" {
		return apiErr.code
	}
	switch status {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusInternalServerError:
		return "internal"
	default:
		return ""
	}
}

func errorNumericCode(status int, err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.errCode > 0 {
		return apiErr.errCode
	}
	return defaultErrorCodeByStatus(status)
}

func errorField(err error) string {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		return apiErr.field
	}
	return ""
}

// logError records a failed request. Server errors log at error level,
// client errors at debug.
func (s *Server) logError(r *http.Request, status int, err error) {
	fields := []any{"status", status, "code", errorCode(status, err), "error_code", errorNumericCode(status, err), "error", err}
	if r != nil {
		fields = append(fields, "method", r.Method, "path", r.URL.Path, "request_id", requestIDFrom(r.Context()))
	}
	if status >= 500 {
		s.log().Error("request error", fields...)
		return
	}
	s.log().Debug("request rejected", fields...)
}

// publicMessage hides internal error text unless debug mode is on.
func (s *Server) publicMessage(status int, err error) string {
	if status >= 500 && !s.debug {
		return "internal error"
	}
	return err.Error()
}

func (s *Server) writeErrorReq(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	status := httpStatusFromError(err)
	s.logError(r, status, err)
	s.writeJSON(w, status, api.ErrorResponse{
		Error:     s.publicMessage(status, err),
		Code:      errorCode(status, err),
		ErrorCode: errorNumericCode(status, err),
		Field:     errorField(err),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("write json response", "status", status, "error", err)
	}
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") || hasJSONBody(r)
}

// hasJSONBody reports whether the request body is declared as JSON.
func hasJSONBody(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func classifyDecodeJSONError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return badRequestCode(fmt.Errorf("request body too large"), ErrCodeRequestTooLarge)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return badRequestCode(fmt.Errorf("invalid JSON payload"), ErrCodeInvalidJSON)
	}
	return badRequestCode(err, ErrCodeInvalidJSON)
}

func requirePathID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		// Non-numeric ids cannot name a row, so they are reported as missing.
		return 0, notFoundCode(fmt.Errorf("invalid id %q", raw), ErrCodeInvalidID)
	}
	return id, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, badRequestCode(fmt.Errorf("invalid %s", key), ErrCodeInvalidQuery)
	}
	if parsed < 0 {
		return 0, badRequestCode(fmt.Errorf("%s must be >= 0", key), ErrCodeInvalidQuery)
	}
	return parsed, nil
}

func queryBool(r *http.Request, key string) (*bool, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, badRequestCode(fmt.Errorf("invalid %s", key), ErrCodeInvalidQuery)
	}
	return &parsed, nil
}
