package api

import (
	"fmt"
	"strings"
)

// RequestError is the single failure kind of the client: transport failure,
// non-2xx status or an unreadable response body.
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Detail())
	return b.String()
}

// Detail is the human-readable part of the error without the operation name.
func (e *RequestError) Detail() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("HTTP error! status: %d, message: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "Unknown error"
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
