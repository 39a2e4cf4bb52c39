package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNetwork wraps transport failures: the request never produced an HTTP
// response (refused connection, timeout, cancelled context).
var ErrNetwork = errors.New("network error")

// APIError is a non-2xx response. Detail is the backend's free-text reason,
// or the status text when the body carried no usable envelope.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d: %s", e.Status, e.Detail)
}

// Detail extracts the backend detail string from err, if it carries one.
func Detail(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail, true
	}
	return "", false
}

func statusDetail(code int) string {
	if txt := http.StatusText(code); txt != "" {
		return txt
	}
	return fmt.Sprintf("HTTP %d", code)
}
