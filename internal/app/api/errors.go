package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed remote call.
type Kind int

const (
	// KindTransport: the request never produced an HTTP response.
	KindTransport Kind = iota + 1
	// KindRejected: the service answered 4xx (bad credentials, validation).
	KindRejected
	// KindFailure: the service answered 5xx or another non-2xx status.
	KindFailure
	// KindMalformed: a 2xx response whose body could not be decoded.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport failure"
	case KindRejected:
		return "rejected"
	case KindFailure:
		return "remote failure"
	case KindMalformed:
		return "malformed response"
	}
	return "unknown"
}

// RemoteError describes a failed call to the complaint service.
type RemoteError struct {
	Op     string
	Kind   Kind
	Status int

	// Message is the "message" field of the error payload, if the service sent one.
	Message string

	Err error
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("api: %s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// AsRemote returns the *RemoteError in err's chain, if any.
func AsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by a remote error, or 0.
func StatusOf(err error) int {
	if re, ok := AsRemote(err); ok {
		return re.Status
	}
	return 0
}
