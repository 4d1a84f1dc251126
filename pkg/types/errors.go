// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures.
type ErrorKind string

const (
	// KindConfiguration: missing credential, topic or input, detected before
	// any remote call.
	KindConfiguration ErrorKind = "configuration"
	// KindTransport: the remote call could not complete.
	KindTransport ErrorKind = "transport"
	// KindRemoteRejection: the remote service answered with a non-success status.
	KindRemoteRejection ErrorKind = "remote_rejection"
	// KindMalformedResponse: success status without the expected content.
	KindMalformedResponse ErrorKind = "malformed_response"
	// KindRasterize: the document could not be turned into page images.
	KindRasterize ErrorKind = "rasterize"
)

// Error is a classified pipeline failure. Message is the human-readable text
// surfaced to the presentation layer; Err is the optional underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Detail returns Message followed by the underlying cause, if any.
func (e *Error) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func ConfigurationError(message string) *Error {
	return NewError(KindConfiguration, message, nil)
}

func TransportError(message string, err error) *Error {
	return NewError(KindTransport, message, err)
}

func RemoteRejection(message string) *Error {
	return NewError(KindRemoteRejection, message, nil)
}

func MalformedResponse(message string, err error) *Error {
	return NewError(KindMalformedResponse, message, err)
}

func RasterizeError(message string, err error) *Error {
	return NewError(KindRasterize, message, err)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
