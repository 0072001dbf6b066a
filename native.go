// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package jwkit

import (
	"bytes"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"
	"math"
	"math/big"
)

// ToNative reconstructs the crypto/rsa or crypto/ecdsa key for k. The returned
// value is one of *rsa.PublicKey, *rsa.PrivateKey, *ecdsa.PublicKey, or
// *ecdsa.PrivateKey.
//
// The key is validated first. Any rejection by the native primitives, e.g. a
// point that is not on the curve, is reported as ErrConversionFailure.
func ToNative(k Key) (raw any, err error) {
	if err = Validate(k); err != nil {
		return
	}

	switch m := k.Material.(type) {
	case RSAPublic:
		raw, err = rsaPublicToNative(m)

	case RSAPrivate:
		raw, err = rsaPrivateToNative(m)

	case ECPublic:
		raw, _, err = ecPublicToNative(m)

	case ECPrivate:
		raw, err = ecPrivateToNative(m)
	}

	if err != nil {
		raw = nil
	}

	return
}

// FromNative extracts the key material from a native key. Supported types are
// *rsa.PublicKey, *rsa.PrivateKey, *ecdsa.PublicKey, *ecdsa.PrivateKey,
// *ecdh.PublicKey, and *ecdh.PrivateKey. EC values are always written at the
// full width of the curve, and RSA values are minimal big-endian integers.
//
// The options are applied to the returned key, which is then validated.
func FromNative(raw any, options ...KeyOption) (k Key, err error) {
	switch native := raw.(type) {
	case *rsa.PublicKey:
		k.Material, err = rsaPublicFromNative(native)

	case *rsa.PrivateKey:
		k.Material, err = rsaPrivateFromNative(native)

	case *ecdsa.PublicKey:
		k.Material, err = ecdsaPublicFromNative(native)

	case *ecdsa.PrivateKey:
		k.Material, err = ecdsaPrivateFromNative(native)

	case *ecdh.PublicKey:
		k.Material, err = ecdhPublicFromNative(native)

	case *ecdh.PrivateKey:
		k.Material, err = ecdhPrivateFromNative(native)

	default:
		err = newConversionFailure(fmt.Sprintf("unsupported native key type %T", raw), nil)
	}

	if err == nil {
		for _, o := range options {
			o(&k)
		}

		err = Validate(k)
	}

	if err != nil {
		k = Key{}
	}

	return
}

func newConversionFailure(reason string, cause error) *FieldError {
	return &FieldError{
		Kind:   ErrConversionFailure,
		Reason: reason,
		Err:    cause,
	}
}

func rsaPublicToNative(m RSAPublic) (*rsa.PublicKey, error) {
	e := new(big.Int).SetBytes(m.E)
	if !e.IsInt64() || e.Int64() > math.MaxInt32 {
		return nil, newConversionFailure("the public exponent does not fit in 31 bits", nil)
	}

	pub := &rsa.PublicKey{
		N: new(big.Int).SetBytes(m.N),
		E: int(e.Int64()),
	}

	if pub.E < 3 || pub.E%2 == 0 {
		return nil, newConversionFailure(fmt.Sprintf("invalid public exponent %d", pub.E), nil)
	}

	if pub.N.Bit(0) == 0 {
		return nil, newConversionFailure("the modulus is even", nil)
	}

	return pub, nil
}

func rsaPrivateToNative(m RSAPrivate) (*rsa.PrivateKey, error) {
	pub, err := rsaPublicToNative(m.RSAPublic)
	if err != nil {
		return nil, err
	}

	priv := &rsa.PrivateKey{
		PublicKey: *pub,
		D:         new(big.Int).SetBytes(m.D),
	}

	if !m.HasCRT() {
		// without the primes, crypto/rsa cannot validate the key, so check
		// that d inverts e for a known message instead
		msg := big.NewInt(2)
		c := new(big.Int).Exp(msg, big.NewInt(int64(pub.E)), pub.N)
		if new(big.Int).Exp(c, priv.D, pub.N).Cmp(msg) != 0 {
			return nil, newConversionFailure("the private exponent does not match the public key", nil)
		}

		return priv, nil
	}

	priv.Primes = []*big.Int{
		new(big.Int).SetBytes(m.P),
		new(big.Int).SetBytes(m.Q),
	}

	if err = priv.Validate(); err != nil {
		return nil, newConversionFailure("the RSA parameters are inconsistent", err)
	}

	priv.Precompute()
	for _, c := range []struct {
		name     string
		supplied []byte
		computed *big.Int
	}{
		{memberDP, m.DP, priv.Precomputed.Dp},
		{memberDQ, m.DQ, priv.Precomputed.Dq},
		{memberQI, m.QI, priv.Precomputed.Qinv},
	} {
		if c.computed == nil || new(big.Int).SetBytes(c.supplied).Cmp(c.computed) != 0 {
			fe := newConversionFailure("the CRT parameter does not match the primes", nil)
			fe.Field = c.name
			return nil, fe
		}
	}

	return priv, nil
}

// uncompressedPoint builds the SEC 1 uncompressed encoding of (x, y).
func uncompressedPoint(x, y []byte) []byte {
	point := make([]byte, 0, 1+len(x)+len(y))
	point = append(point, 4)
	point = append(point, x...)
	return append(point, y...)
}

// ecPublicToNative also returns the crypto/ecdh form of the key, which
// ecPrivateToNative uses to check d against the public point.
func ecPublicToNative(m ECPublic) (*ecdsa.PublicKey, *ecdh.PublicKey, error) {
	if m.Curve != P256 {
		return nil, nil, newFieldError(memberCrv, ErrUnsupportedCurve, fmt.Sprintf("%q", string(m.Curve)))
	}

	// crypto/ecdh rejects points that are not on the curve
	checked, err := ecdh.P256().NewPublicKey(uncompressedPoint(m.X, m.Y))
	if err != nil {
		return nil, nil, newConversionFailure("invalid curve point", err)
	}

	pub := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(m.X),
		Y:     new(big.Int).SetBytes(m.Y),
	}

	return pub, checked, nil
}

func ecPrivateToNative(m ECPrivate) (*ecdsa.PrivateKey, error) {
	pub, checked, err := ecPublicToNative(m.ECPublic)
	if err != nil {
		return nil, err
	}

	scalar, err := ecdh.P256().NewPrivateKey(m.D)
	if err != nil {
		return nil, newConversionFailure("invalid private scalar", err)
	}

	if !scalar.PublicKey().Equal(checked) {
		return nil, newConversionFailure("the private scalar does not match the public point", nil)
	}

	return &ecdsa.PrivateKey{
		PublicKey: *pub,
		D:         new(big.Int).SetBytes(m.D),
	}, nil
}

func rsaPublicFromNative(native *rsa.PublicKey) (RSAPublic, error) {
	if native == nil || native.N == nil || native.E <= 0 {
		return RSAPublic{}, newConversionFailure("incomplete RSA public key", nil)
	}

	return RSAPublic{
		N: native.N.Bytes(),
		E: big.NewInt(int64(native.E)).Bytes(),
	}, nil
}

func rsaPrivateFromNative(native *rsa.PrivateKey) (m RSAPrivate, err error) {
	if native == nil || native.D == nil {
		return RSAPrivate{}, newConversionFailure("incomplete RSA private key", nil)
	}

	if m.RSAPublic, err = rsaPublicFromNative(&native.PublicKey); err != nil {
		return
	}

	m.D = native.D.Bytes()
	switch len(native.Primes) {
	case 0:
		// no CRT parameters

	case 2:
		precomputed := native.Precomputed
		if precomputed.Dp == nil || precomputed.Dq == nil || precomputed.Qinv == nil {
			// work on a copy so the caller's key is left untouched
			c := *native
			c.Precompute()
			precomputed = c.Precomputed
		}

		if precomputed.Dp == nil || precomputed.Dq == nil || precomputed.Qinv == nil {
			err = newConversionFailure("unable to compute the CRT parameters", nil)
			return
		}

		m.P = native.Primes[0].Bytes()
		m.Q = native.Primes[1].Bytes()
		m.DP = precomputed.Dp.Bytes()
		m.DQ = precomputed.Dq.Bytes()
		m.QI = precomputed.Qinv.Bytes()

	default:
		err = newConversionFailure(fmt.Sprintf("multi-prime keys are not supported (%d primes)", len(native.Primes)), nil)
	}

	return
}

// fixedWidth writes v as a big-endian value that is exactly size octets,
// zero-padding on the left.
func fixedWidth(field string, v *big.Int, size int) ([]byte, error) {
	if v == nil || v.Sign() < 0 || (v.BitLen()+7)/8 > size {
		fe := newConversionFailure(fmt.Sprintf("the value does not fit in %d octets", size), nil)
		fe.Field = field
		return nil, fe
	}

	return v.FillBytes(make([]byte, size)), nil
}

func checkNativeCurve(c elliptic.Curve) error {
	if c == nil || c.Params().Name != string(P256) {
		name := "<nil>"
		if c != nil {
			name = c.Params().Name
		}

		return newFieldError(memberCrv, ErrUnsupportedCurve, fmt.Sprintf("%q", name))
	}

	return nil
}

func ecdsaPublicFromNative(native *ecdsa.PublicKey) (m ECPublic, err error) {
	if native == nil {
		return ECPublic{}, newConversionFailure("nil EC public key", nil)
	}

	if native.X == nil || native.Y == nil {
		return ECPublic{}, newConversionFailure("incomplete EC public key", nil)
	}

	if err = checkNativeCurve(native.Curve); err != nil {
		return
	}

	// ECDH rejects points that are not on the curve
	if _, err = native.ECDH(); err != nil {
		return ECPublic{}, newConversionFailure("invalid curve point", err)
	}

	m.Curve = P256
	size := P256.Size()
	if m.X, err = fixedWidth(memberX, native.X, size); err == nil {
		m.Y, err = fixedWidth(memberY, native.Y, size)
	}

	return
}

func ecdsaPrivateFromNative(native *ecdsa.PrivateKey) (m ECPrivate, err error) {
	if native == nil {
		return ECPrivate{}, newConversionFailure("nil EC private key", nil)
	}

	if m.ECPublic, err = ecdsaPublicFromNative(&native.PublicKey); err != nil {
		return
	}

	if m.D, err = fixedWidth(memberD, native.D, P256.Size()); err != nil {
		return
	}

	// the public point must be the one derived from d
	scalar, scalarErr := ecdh.P256().NewPrivateKey(m.D)
	if scalarErr != nil {
		return ECPrivate{}, newConversionFailure("invalid private scalar", scalarErr)
	}

	if !bytes.Equal(scalar.PublicKey().Bytes(), uncompressedPoint(m.X, m.Y)) {
		return ECPrivate{}, newConversionFailure("the private scalar does not match the public point", nil)
	}

	return
}

func ecdhPublicFromNative(native *ecdh.PublicKey) (ECPublic, error) {
	if native == nil || native.Curve() != ecdh.P256() {
		return ECPublic{}, newFieldError(memberCrv, ErrUnsupportedCurve, "only P-256 ECDH keys are supported")
	}

	// the uncompressed encoding is 0x04 || x || y, each coordinate at full width
	point := native.Bytes()
	size := P256.Size()
	return ECPublic{
		Curve: P256,
		X:     bytes.Clone(point[1 : 1+size]),
		Y:     bytes.Clone(point[1+size:]),
	}, nil
}

func ecdhPrivateFromNative(native *ecdh.PrivateKey) (ECPrivate, error) {
	if native == nil {
		return ECPrivate{}, newFieldError(memberCrv, ErrUnsupportedCurve, "only P-256 ECDH keys are supported")
	}

	pub, err := ecdhPublicFromNative(native.PublicKey())
	if err != nil {
		return ECPrivate{}, err
	}

	return ECPrivate{
		ECPublic: pub,
		D:        native.Bytes(),
	}, nil
}
