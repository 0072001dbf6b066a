// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package jwkit

import (
	"fmt"
	"math/big"
)

// MinRSAModulusBits is the smallest RSA modulus, in bits, that Validate accepts.
const MinRSAModulusBits = 2048

// Validate applies the structural rules for a key's type. It returns nil if the
// key is well-formed, or a *FieldError describing the first violated rule.
//
// Validate does not perform any cryptographic verification, e.g. that an EC
// point is on the curve. ToNative does that.
func Validate(k Key) (err error) {
	switch m := k.Material.(type) {
	case RSAPublic:
		err = validateRSAPublic(m)

	case RSAPrivate:
		err = validateRSAPrivate(m)

	case ECPublic:
		err = validateECPublic(m)

	case ECPrivate:
		err = validateECPrivate(m)

	default:
		err = newFieldError(memberKty, ErrUnsupportedKeyType, "the key has no material")
	}

	if err == nil {
		err = validateMetadata(k)
	}

	return
}

// validateUnsigned checks that b is a non-empty, minimal big-endian integer.
func validateUnsigned(field string, b []byte) error {
	switch {
	case len(b) == 0:
		return newFieldError(field, ErrInvalidFieldLength, "the value is empty")

	case len(b) > 1 && b[0] == 0:
		return newFieldError(field, ErrInvalidFieldLength, "the value has a leading zero octet")

	default:
		return nil
	}
}

func validateRSAPublic(m RSAPublic) error {
	if err := validateUnsigned(memberN, m.N); err != nil {
		return err
	}

	if err := validateUnsigned(memberE, m.E); err != nil {
		return err
	}

	if bits := new(big.Int).SetBytes(m.N).BitLen(); bits < MinRSAModulusBits {
		return newFieldError(
			memberN,
			ErrInvalidFieldLength,
			fmt.Sprintf("the modulus has %d bits, the minimum is %d", bits, MinRSAModulusBits),
		)
	}

	return nil
}

func validateRSAPrivate(m RSAPrivate) error {
	if err := validateRSAPublic(m.RSAPublic); err != nil {
		return err
	}

	switch {
	case m.D == nil:
		return newFieldError(memberD, ErrInconsistentPrivateParams, "the private exponent is required")

	case len(m.D) == 0:
		return newFieldError(memberD, ErrInvalidFieldLength, "the value is empty")

	case len(m.D) > len(m.N):
		return newFieldError(memberD, ErrInconsistentPrivateParams, "the private exponent is longer than the modulus")
	}

	if !m.HasCRT() {
		return nil
	}

	crt := []struct {
		name  string
		value []byte
	}{
		{memberP, m.P},
		{memberQ, m.Q},
		{memberDP, m.DP},
		{memberDQ, m.DQ},
		{memberQI, m.QI},
	}

	for _, c := range crt {
		if c.value == nil {
			return newFieldError(c.name, ErrInconsistentPrivateParams, "the CRT parameters must be all present or all absent")
		}
	}

	for _, c := range crt {
		if len(c.value) == 0 {
			return newFieldError(c.name, ErrInvalidFieldLength, "the value is empty")
		}
	}

	// the product of p and q has either len(p)+len(q) or len(p)+len(q)-1 octets
	if sum := len(m.P) + len(m.Q); len(m.N) != sum && len(m.N) != sum-1 {
		return newFieldError(
			memberP,
			ErrInconsistentPrivateParams,
			fmt.Sprintf("the primes (%d and %d octets) cannot produce a %d octet modulus", len(m.P), len(m.Q), len(m.N)),
		)
	}

	return nil
}

func validateFixedWidth(field string, b []byte, size int) error {
	if len(b) != size {
		return newFieldError(field, ErrInvalidFieldLength, fmt.Sprintf("expected %d octets, got %d", size, len(b)))
	}

	return nil
}

func validateECPublic(m ECPublic) error {
	size := m.Curve.Size()
	if size == 0 {
		return newFieldError(memberCrv, ErrUnsupportedCurve, fmt.Sprintf("%q", string(m.Curve)))
	}

	if err := validateFixedWidth(memberX, m.X, size); err != nil {
		return err
	}

	return validateFixedWidth(memberY, m.Y, size)
}

func validateECPrivate(m ECPrivate) error {
	if err := validateECPublic(m.ECPublic); err != nil {
		return err
	}

	return validateFixedWidth(memberD, m.D, m.Curve.Size())
}

// validateMetadata checks the metadata members independently of each other.
// RFC 7517 permits use and key_ops to appear together.
func validateMetadata(k Key) error {
	switch k.Use {
	case UseNone, UseSignature, UseEncryption:
		// valid

	default:
		return newFieldError(memberUse, ErrInvalidFieldValue, fmt.Sprintf("%q", string(k.Use)))
	}

	seen := make(map[KeyOp]bool, len(k.KeyOps))
	for _, op := range k.KeyOps {
		switch {
		case len(op) == 0:
			return newFieldError(memberKeyOps, ErrInvalidFieldValue, "empty key operation")

		case seen[op]:
			return newFieldError(memberKeyOps, ErrInvalidFieldValue, fmt.Sprintf("duplicate key operation %q", string(op)))
		}

		seen[op] = true
	}

	return nil
}
