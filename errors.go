// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package jwkit

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrMalformedBase64 indicates a binary member that is not unpadded base64url.
	ErrMalformedBase64 = errors.New("malformed base64url value")

	// ErrTypeMismatch indicates a member with the wrong JSON shape, e.g. a number
	// where a string was expected.
	ErrTypeMismatch = errors.New("unexpected JSON type")

	// ErrMissingRequiredField indicates that a member mandated by the key type is absent.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrUnsupportedKeyType indicates a kty other than RSA or EC.
	ErrUnsupportedKeyType = errors.New("unsupported key type")

	// ErrUnsupportedCurve indicates a crv other than P-256.
	ErrUnsupportedCurve = errors.New("unsupported curve")

	// ErrInvalidFieldLength indicates a binary member whose length violates the
	// rules for its key type, e.g. an EC coordinate that is not exactly 32 bytes.
	ErrInvalidFieldLength = errors.New("invalid field length")

	// ErrInvalidFieldValue indicates a metadata member whose value is outside
	// of its registered set, e.g. an unknown use.
	ErrInvalidFieldValue = errors.New("invalid field value")

	// ErrInconsistentPrivateParams indicates RSA private parameters that do not
	// belong together, e.g. a partial CRT group.
	ErrInconsistentPrivateParams = errors.New("inconsistent private key parameters")

	// ErrConversionFailure indicates that the native crypto primitives rejected
	// the key parameters.
	ErrConversionFailure = errors.New("unable to convert key")

	// ErrGenerationFailure indicates that a new key could not be generated.
	ErrGenerationFailure = errors.New("unable to generate key")
)

// FieldError describes a failure tied to a specific JWK member. Kind is always
// one of this package's sentinel errors, so callers can branch using errors.Is.
type FieldError struct {
	// Field is the JWK member name, e.g. "x" or "key_ops". This can be empty
	// when the failure applies to the key as a whole.
	Field string

	// Kind is the sentinel describing the rule that was violated.
	Kind error

	// Reason is an optional human-readable detail.
	Reason string

	// Err is the optional underlying cause.
	Err error
}

func newFieldError(field string, kind error, reason string) *FieldError {
	return &FieldError{
		Field:  field,
		Kind:   kind,
		Reason: reason,
	}
}

func (fe *FieldError) Error() string {
	var o strings.Builder
	o.WriteString(fe.Kind.Error())
	if len(fe.Field) > 0 {
		o.WriteString(" [")
		o.WriteString(fe.Field)
		o.WriteString("]")
	}

	if len(fe.Reason) > 0 {
		o.WriteString(": ")
		o.WriteString(fe.Reason)
	}

	if fe.Err != nil {
		o.WriteString(": ")
		o.WriteString(fe.Err.Error())
	}

	return o.String()
}

// Unwrap exposes both the Kind sentinel and the underlying cause.
func (fe *FieldError) Unwrap() []error {
	if fe.Err != nil {
		return []error{fe.Kind, fe.Err}
	}

	return []error{fe.Kind}
}

// EntryError wraps the failure of a single entry in a key set.
type EntryError struct {
	// Index is the zero-based position of the entry within the keys array.
	Index int

	// Err is the failure for that entry.
	Err error
}

func (ee *EntryError) Error() string {
	return "key at index " + strconv.Itoa(ee.Index) + ": " + ee.Err.Error()
}

func (ee *EntryError) Unwrap() error {
	return ee.Err
}
