package lms

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned for 401 replies; the learner has to log in again.
var ErrUnauthorized = errors.New("lms: unauthorized")

// ErrResponseTooLarge is returned when a reply exceeds the body cap. The body
// is not decoded, so a cut-off list never reads as an empty one.
var ErrResponseTooLarge = errors.New("lms: response body too large")

type HTTPError struct {
	StatusCode int
	Detail     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error"
	}
	msg := strings.TrimSpace(e.Detail)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("lms http error: status=%d message=%s", e.StatusCode, msg)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e != nil && e.StatusCode == http.StatusUnauthorized
}

// StatusOf returns the upstream status code carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) && he != nil {
		return he.StatusCode
	}
	return 0
}

// parseHTTPError understands the {"detail": "..."} body the API returns for
// most failures and falls back to the raw body.
func parseHTTPError(status int, raw []byte) error {
	body := strings.TrimSpace(string(raw))
	var env struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	detail := ""
	if err := json.Unmarshal(raw, &env); err == nil {
		detail = strings.TrimSpace(env.Detail)
		if detail == "" {
			detail = strings.TrimSpace(env.Error)
		}
	}
	return &HTTPError{StatusCode: status, Detail: detail, Body: body}
}
