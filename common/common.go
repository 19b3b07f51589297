package common

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const maxDecodeErrorPayload = 512

// Public common errors
var (
	ErrCredentialsMissing = errors.New("authenticated request attempted without credentials")
	ErrTransport          = errors.New("transport failure")
	ErrProtocolViolation  = errors.New("protocol violation")
	ErrDateUnset          = errors.New("date unset")
	ErrStartAfterEnd      = errors.New("start date after end date")
	ErrStartEqualsEnd     = errors.New("start date equals end date")
)

// DecodeError is returned when a payload cannot be decoded into its expected
// shape. The raw payload is retained for inspection.
type DecodeError struct {
	Raw []byte
	Err error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	raw := e.Raw
	if len(raw) > maxDecodeErrorPayload {
		raw = raw[:maxDecodeErrorPayload]
	}
	return fmt.Sprintf("cannot decode payload %q: %v", raw, e.Err)
}

// Unwrap returns the underlying parse error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError returns a *DecodeError holding a copy of the raw payload
func NewDecodeError(raw []byte, err error) *DecodeError {
	return &DecodeError{Raw: append([]byte(nil), raw...), Err: err}
}

// EncodeURLValues concatenates url values onto a url string and returns a
// string. No separator is added when values is empty.
func EncodeURLValues(urlPath string, values url.Values) string {
	u := urlPath
	if len(values) > 0 {
		u += "?" + values.Encode()
	}
	return u
}

// StartEndTimeCheck provides some basic checks which occur frequently in the
// codebase
func StartEndTimeCheck(start, end time.Time) error {
	if start.IsZero() || start.Equal(time.Unix(0, 0)) {
		return fmt.Errorf("start %w", ErrDateUnset)
	}
	if end.IsZero() || end.Equal(time.Unix(0, 0)) {
		return fmt.Errorf("end %w", ErrDateUnset)
	}
	if start.After(end) {
		return ErrStartAfterEnd
	}
	if start.Equal(end) {
		return ErrStartEqualsEnd
	}
	return nil
}
