package lookup

import (
	"errors"
	"net/http"
)

// Kind categorizes why a lookup ended in the Error state.
type Kind string

const (
	KindEmptyInput      Kind = "empty_input"
	KindNotFound        Kind = "not_found"
	KindFetchFailed     Kind = "fetch_failed"
	KindTransportFailed Kind = "transport_failed"
	KindDecodeFailed    Kind = "decode_failed"
)

// User-facing messages.
const (
	MsgEmptyInput  = "Please enter an Order ID"
	MsgNotFound    = "Order not found"
	MsgFetchFailed = "Error fetching order"
)

// Error is a terminal failure of one lookup attempt. Message is exactly
// what the user sees.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status for NotFound and FetchFailed.
	Status int
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying transport or decode error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

func statusError(code int) *Error {
	if code == http.StatusNotFound {
		return &Error{Kind: KindNotFound, Message: MsgNotFound, Status: code}
	}
	return &Error{Kind: KindFetchFailed, Message: MsgFetchFailed, Status: code}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransportFailed, Message: err.Error(), Err: err}
}

func decodeError(err error) *Error {
	return &Error{Kind: KindDecodeFailed, Message: err.Error(), Err: err}
}

// KindOf returns the Kind of err, or "" if err is not a lookup error.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
