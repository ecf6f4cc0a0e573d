package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMessage     = errors.New("protocol: empty message")
	ErrUnknownCommand   = errors.New("protocol: unknown command")
	ErrCommandMismatch  = errors.New("protocol: command mismatch")
	ErrMalformedPayload = errors.New("protocol: malformed payload")
	ErrTruncated        = errors.New("protocol: truncated payload")
	ErrInvalidLength    = errors.New("protocol: invalid length prefix")
	ErrTrailingBytes    = errors.New("protocol: trailing bytes")
	ErrInvalidValue     = errors.New("protocol: invalid field value")
	ErrEncodingOverflow = errors.New("protocol: encoding overflow")
	ErrInvalidArgument  = errors.New("protocol: invalid argument")
)

// PayloadError reports a payload inconsistent with its command's shape.
// It matches ErrMalformedPayload and the specific cause under errors.Is.
type PayloadError struct {
	Command Command
	Field   string
	Offset  int
	Err     error
}

func (e *PayloadError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("protocol: command=%s offset=%d: %v", e.Command, e.Offset, e.Err)
	}
	return fmt.Sprintf("protocol: command=%s field=%s offset=%d: %v", e.Command, e.Field, e.Offset, e.Err)
}

func (e *PayloadError) Unwrap() []error {
	return []error{ErrMalformedPayload, e.Err}
}
