// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package jwkit

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"
	"io"
)

func newGenerationFailure(reason string, cause error) *FieldError {
	return &FieldError{
		Kind:   ErrGenerationFailure,
		Reason: reason,
		Err:    cause,
	}
}

// fromGenerated converts a freshly generated native key and validates it
// before it is handed to the caller.
func fromGenerated(raw any, options []KeyOption) (Key, error) {
	k, err := FromNative(raw, options...)
	if err != nil {
		return Key{}, newGenerationFailure("the generated key is invalid", err)
	}

	return k, nil
}

// GenerateRSA creates a new RSA private key with the given modulus size. The
// random source is required; this function never falls back to a default.
// Sizes below MinRSAModulusBits are rejected.
func GenerateRSA(random io.Reader, bits int, options ...KeyOption) (Key, error) {
	if random == nil {
		return Key{}, newGenerationFailure("a random source is required", nil)
	}

	if bits < MinRSAModulusBits {
		return Key{}, newGenerationFailure(fmt.Sprintf("%d bits is below the minimum of %d", bits, MinRSAModulusBits), nil)
	}

	raw, err := rsa.GenerateKey(random, bits)
	if err != nil {
		return Key{}, newGenerationFailure(fmt.Sprintf("unable to generate a %d bit RSA key", bits), err)
	}

	return fromGenerated(raw, options)
}

// GenerateEC creates a new P-256 private key. The random source is required;
// this function never falls back to a default.
func GenerateEC(random io.Reader, options ...KeyOption) (Key, error) {
	if random == nil {
		return Key{}, newGenerationFailure("a random source is required", nil)
	}

	raw, err := ecdsa.GenerateKey(elliptic.P256(), random)
	if err != nil {
		return Key{}, newGenerationFailure("unable to generate a P-256 key", err)
	}

	return fromGenerated(raw, options)
}
