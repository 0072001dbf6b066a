// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package jwkit

import (
	"encoding/base64"
	"fmt"
)

// segmentEncoding is the unpadded, URL-safe alphabet. Strict mode rejects
// non-zero trailing bits, so every value has exactly one encoding.
var segmentEncoding = base64.RawURLEncoding.Strict()

// EncodeSegment encodes src using the unpadded, URL-safe base64 alphabet.
func EncodeSegment(src []byte) string {
	return segmentEncoding.EncodeToString(src)
}

// DecodeSegment decodes an unpadded, URL-safe base64 value. Padding, the
// standard alphabet's '+' and '/', and whitespace are all rejected with
// ErrMalformedBase64.
func DecodeSegment(s string) ([]byte, error) {
	// encoding/base64 silently skips CR and LF, so the alphabet is checked up front
	for i := 0; i < len(s); i++ {
		if !isSegmentChar(s[i]) {
			return nil, fmt.Errorf("%w: invalid character %q at offset %d", ErrMalformedBase64, s[i], i)
		}
	}

	if len(s)%4 == 1 {
		return nil, fmt.Errorf("%w: invalid length %d", ErrMalformedBase64, len(s))
	}

	b, err := segmentEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBase64, err)
	}

	return b, nil
}

func isSegmentChar(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z':
		return true

	case 'a' <= c && c <= 'z':
		return true

	case '0' <= c && c <= '9':
		return true

	default:
		return c == '-' || c == '_'
	}
}
