package datagateway

import (
	"errors"
	"fmt"
)

// ErrTransport matches every *TransportError via errors.Is
var ErrTransport = errors.New("datagateway transport error")

// TransportError reports a failed gateway call: the request could not be
// sent, the response could not be read, or the status was not 2xx.
type TransportError struct {
	Op         string // client method, e.g. "get-select"
	Method     string
	URL        string
	StatusCode int    // 0 when no response was received
	Body       string // response body, if any
	Err        error  // underlying cause, if any
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: %s %s: HTTP %d: %s", e.Op, e.Method, e.URL, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s: %s %s: HTTP %d", e.Op, e.Method, e.URL, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransport
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
