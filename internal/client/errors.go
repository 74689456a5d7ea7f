package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized means the API rejected the session token. The session
	// must be torn down.
	ErrUnauthorized = errors.New("session token rejected")

	// ErrNotJSON means an error response did not come from the API.
	ErrNotJSON = errors.New("error response is not JSON")
)

// APIError is a request the API received and refused for a domain reason.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Detail)
}

// NetworkError is a request that never completed, or whose response could
// not be read.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthenticationError is a rejected login.
type AuthenticationError struct {
	StatusCode int
	Detail     string
}

func (e *AuthenticationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("login rejected (%d)", e.StatusCode)
	}
	return fmt.Sprintf("login rejected (%d): %s", e.StatusCode, e.Detail)
}

// parseDetail extracts a user facing message from a JSON error body. The API
// sends {"detail": "..."}; validation failures carry a list instead of a
// string, which is returned as compact JSON.
func parseDetail(status int, body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil || len(er.Detail) == 0 || string(er.Detail) == "null" {
		return http.StatusText(status)
	}

	var s string
	if err := json.Unmarshal(er.Detail, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
		return http.StatusText(status)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, er.Detail); err != nil {
		return http.StatusText(status)
	}
	return buf.String()
}
