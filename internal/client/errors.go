package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	// UnknownDetail and UnknownCode replace an error body that cannot be read
	UnknownDetail = "Unknown error"
	UnknownCode   = "UNKNOWN"
)

// APIError is a non-2xx response from the price API
type APIError struct {
	Status int
	Detail string
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("price API error: status %d: %s (%s)", e.Status, e.Detail, e.Code)
}

// errorBody mirrors {detail, error_code}. Detail is kept raw because
// validation failures send a list instead of a string.
type errorBody struct {
	Detail    json.RawMessage `json:"detail"`
	ErrorCode string          `json:"error_code"`
}

func parseError(status int, data []byte) *APIError {
	apiErr := &APIError{Status: status, Detail: UnknownDetail, Code: UnknownCode}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}

	if detail := decodeDetail(body.Detail); detail != "" {
		apiErr.Detail = detail
	}
	if body.ErrorCode != "" {
		apiErr.Code = body.ErrorCode
	}
	return apiErr
}

func decodeDetail(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return ""
	}
	return compact.String()
}

// AsAPIError unwraps err to an *APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is an API error with the given status
func IsStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == status
}

// IsConflict reports whether err is a 409, e.g. a duplicate keyword
func IsConflict(err error) bool {
	return IsStatus(err, http.StatusConflict)
}

// IsNotFound reports whether err is a 404
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}
