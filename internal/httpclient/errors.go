package httpclient

import (
	"errors"
	"fmt"
)

// ErrTimeout marks a request phase that exceeded its timeout.
var ErrTimeout = errors.New("request timed out")

// ErrorKind classifies a failed call by the layer it originated from.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindTransport
	KindProtocol
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// TransportError reports a failure to reach the server or read its response:
// DNS, connection, cancellation and timeouts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a request phase timeout.
func (e *TransportError) Timeout() bool {
	return errors.Is(e.Err, ErrTimeout)
}

// ProtocolError reports a response with a missing or failing status code.
type ProtocolError struct {
	StatusCode int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("HTTP Error: %d", e.StatusCode)
}

// DecodeError reports a response body that is not valid JSON for the
// requested shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Kind returns the classification of err, looking through wrapping.
func Kind(err error) ErrorKind {
	var transport *TransportError
	var protocol *ProtocolError
	var decode *DecodeError
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &protocol):
		return KindProtocol
	case errors.As(err, &decode):
		return KindDecode
	case errors.As(err, &transport):
		return KindTransport
	default:
		return KindUnknown
	}
}

// StatusCode returns the HTTP status carried by a protocol error, or 0.
func StatusCode(err error) int {
	var protocol *ProtocolError
	if errors.As(err, &protocol) {
		return protocol.StatusCode
	}
	return 0
}
