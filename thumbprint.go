// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package jwkit

import (
	"crypto"
	_ "crypto/sha256" // registers crypto.SHA256

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// Thumbprint computes the RFC 7638 thumbprint of k's public material using
// the given hash. Private and public halves of a key share a thumbprint.
func Thumbprint(k Key, h crypto.Hash) ([]byte, error) {
	raw, err := ToNative(k.Public())
	if err != nil {
		return nil, err
	}

	var imported jwk.Key
	imported, err = jwk.Import(raw)
	if err != nil {
		return nil, newConversionFailure("unable to import key", err)
	}

	var tp []byte
	tp, err = imported.Thumbprint(h)
	if err != nil {
		return nil, newConversionFailure("unable to compute thumbprint", err)
	}

	return tp, nil
}

// ThumbprintKID computes the SHA-256 thumbprint of k, encoded for use as a kid.
func ThumbprintKID(k Key) (string, error) {
	tp, err := Thumbprint(k, crypto.SHA256)
	if err != nil {
		return "", err
	}

	return EncodeSegment(tp), nil
}
