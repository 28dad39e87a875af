package yggdrasil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBodySize bounds how much of an error response is read.
const maxErrorBodySize = 64 << 10

// APIError is the error document Yggdrasil services answer with on
// non-2xx responses.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`
	// ErrorCode names the error class, for example
	// "ForbiddenOperationException".
	ErrorCode string `json:"error"`
	// Message is the human-readable explanation.
	Message string `json:"errorMessage"`
	// Cause optionally refines the error class.
	Cause string `json:"cause,omitempty"`
}

func (e *APIError) Error() string {
	if e.ErrorCode == "" && e.Message == "" {
		return fmt.Sprintf("yggdrasil: http %d", e.StatusCode)
	}

	return fmt.Sprintf("yggdrasil: %s: %s (http %d)", e.ErrorCode, e.Message, e.StatusCode)
}

// newAPIError builds an APIError from a response, tolerating bodies
// that are not the documented JSON shape.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err == nil && len(body) > 0 {
		_ = json.Unmarshal(body, apiErr)
	}

	return apiErr
}
