// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package jwkit

import (
	"bytes"
	"slices"
)

// KeyType is the JWK kty discriminator. It is always derived from a key's
// material, never stored alongside it.
type KeyType int

const (
	// InvalidKeyType is the zero value, reported for a Key with no material.
	InvalidKeyType KeyType = iota
	RSA
	EC
)

func (kt KeyType) String() string {
	switch kt {
	case RSA:
		return "RSA"

	case EC:
		return "EC"

	default:
		return "invalid"
	}
}

// Curve identifies an elliptic curve by its JWK crv name.
type Curve string

const (
	// NoCurve is reported for keys that have no curve, i.e. RSA keys.
	NoCurve Curve = ""

	// P256 is the NIST P-256 curve, the only curve this package supports.
	P256 Curve = "P-256"
)

// Size returns the byte width of a field element on this curve, or zero
// for an unsupported curve.
func (c Curve) Size() int {
	if c == P256 {
		return 32
	}

	return 0
}

// Use is the JWK public key use.
type Use string

const (
	UseNone       Use = ""
	UseSignature  Use = "sig"
	UseEncryption Use = "enc"
)

// KeyOp is a single JWK key operation.
type KeyOp string

const (
	KeyOpSign       KeyOp = "sign"
	KeyOpVerify     KeyOp = "verify"
	KeyOpEncrypt    KeyOp = "encrypt"
	KeyOpDecrypt    KeyOp = "decrypt"
	KeyOpWrapKey    KeyOp = "wrapKey"
	KeyOpUnwrapKey  KeyOp = "unwrapKey"
	KeyOpDeriveKey  KeyOp = "deriveKey"
	KeyOpDeriveBits KeyOp = "deriveBits"
)

// Material is the closed set of key material variants: RSAPublic, RSAPrivate,
// ECPublic, and ECPrivate. No other implementations can exist outside this package.
type Material interface {
	// Type returns the kty for this material.
	Type() KeyType

	// IsPrivate tests if this material carries private parameters.
	IsPrivate() bool

	material()
}

// RSAPublic is the public material of an RSA key. Both values are unsigned,
// minimal big-endian integers.
type RSAPublic struct {
	N []byte
	E []byte
}

func (RSAPublic) Type() KeyType   { return RSA }
func (RSAPublic) IsPrivate() bool { return false }
func (RSAPublic) material()       {}

// RSAPrivate is the private material of an RSA key. The CRT parameters P, Q,
// DP, DQ, and QI are either all present or all nil.
type RSAPrivate struct {
	RSAPublic

	D  []byte
	P  []byte
	Q  []byte
	DP []byte
	DQ []byte
	QI []byte
}

func (RSAPrivate) IsPrivate() bool { return true }

// HasCRT tests if any of the CRT parameters are present.
func (rp RSAPrivate) HasCRT() bool {
	return rp.P != nil || rp.Q != nil || rp.DP != nil || rp.DQ != nil || rp.QI != nil
}

// ECPublic is the public material of an EC key. X and Y are fixed-width,
// big-endian coordinates.
type ECPublic struct {
	Curve Curve
	X     []byte
	Y     []byte
}

func (ECPublic) Type() KeyType   { return EC }
func (ECPublic) IsPrivate() bool { return false }
func (ECPublic) material()       {}

// ECPrivate is the private material of an EC key. D is a fixed-width,
// big-endian scalar.
type ECPrivate struct {
	ECPublic

	D []byte
}

func (ECPrivate) IsPrivate() bool { return true }

// Key is a single JSON Web Key: one Material variant plus the optional,
// common metadata.
type Key struct {
	// Material is the actual key material. A Key with nil Material is invalid.
	Material Material

	Use    Use
	KeyOps []KeyOp
	Alg    string
	KID    string
}

// Type returns the kty derived from this key's material.
func (k Key) Type() KeyType {
	if k.Material == nil {
		return InvalidKeyType
	}

	return k.Material.Type()
}

// IsPrivate tests if this key carries private material.
func (k Key) IsPrivate() bool {
	return k.Material != nil && k.Material.IsPrivate()
}

// Curve returns the curve for EC keys and NoCurve for everything else.
func (k Key) Curve() Curve {
	switch m := k.Material.(type) {
	case ECPublic:
		return m.Curve

	case ECPrivate:
		return m.Curve

	default:
		return NoCurve
	}
}

// Public returns a copy of this key with any private parameters removed.
// Public keys are simply cloned.
func (k Key) Public() Key {
	pk := k.Clone()
	switch m := pk.Material.(type) {
	case RSAPrivate:
		pk.Material = m.RSAPublic

	case ECPrivate:
		pk.Material = m.ECPublic
	}

	return pk
}

// Clone produces a deep copy of this key. The clone shares no memory
// with the original.
func (k Key) Clone() Key {
	c := Key{
		Use:    k.Use,
		KeyOps: slices.Clone(k.KeyOps),
		Alg:    k.Alg,
		KID:    k.KID,
	}

	switch m := k.Material.(type) {
	case RSAPublic:
		c.Material = cloneRSAPublic(m)

	case RSAPrivate:
		c.Material = RSAPrivate{
			RSAPublic: cloneRSAPublic(m.RSAPublic),
			D:         bytes.Clone(m.D),
			P:         bytes.Clone(m.P),
			Q:         bytes.Clone(m.Q),
			DP:        bytes.Clone(m.DP),
			DQ:        bytes.Clone(m.DQ),
			QI:        bytes.Clone(m.QI),
		}

	case ECPublic:
		c.Material = cloneECPublic(m)

	case ECPrivate:
		c.Material = ECPrivate{
			ECPublic: cloneECPublic(m.ECPublic),
			D:        bytes.Clone(m.D),
		}
	}

	return c
}

func cloneRSAPublic(m RSAPublic) RSAPublic {
	return RSAPublic{
		N: bytes.Clone(m.N),
		E: bytes.Clone(m.E),
	}
}

func cloneECPublic(m ECPublic) ECPublic {
	return ECPublic{
		Curve: m.Curve,
		X:     bytes.Clone(m.X),
		Y:     bytes.Clone(m.Y),
	}
}

// Equal tests structural equality. Absent (nil) and empty binary members
// compare as equal.
func (k Key) Equal(other Key) bool {
	if k.Use != other.Use || k.Alg != other.Alg || k.KID != other.KID || !slices.Equal(k.KeyOps, other.KeyOps) {
		return false
	}

	switch m := k.Material.(type) {
	case RSAPublic:
		o, ok := other.Material.(RSAPublic)
		return ok && equalRSAPublic(m, o)

	case RSAPrivate:
		o, ok := other.Material.(RSAPrivate)
		return ok && equalRSAPublic(m.RSAPublic, o.RSAPublic) &&
			bytes.Equal(m.D, o.D) &&
			bytes.Equal(m.P, o.P) &&
			bytes.Equal(m.Q, o.Q) &&
			bytes.Equal(m.DP, o.DP) &&
			bytes.Equal(m.DQ, o.DQ) &&
			bytes.Equal(m.QI, o.QI)

	case ECPublic:
		o, ok := other.Material.(ECPublic)
		return ok && equalECPublic(m, o)

	case ECPrivate:
		o, ok := other.Material.(ECPrivate)
		return ok && equalECPublic(m.ECPublic, o.ECPublic) && bytes.Equal(m.D, o.D)

	default:
		return other.Material == nil
	}
}

func equalRSAPublic(a, b RSAPublic) bool {
	return bytes.Equal(a.N, b.N) && bytes.Equal(a.E, b.E)
}

func equalECPublic(a, b ECPublic) bool {
	return a.Curve == b.Curve && bytes.Equal(a.X, b.X) && bytes.Equal(a.Y, b.Y)
}

// KeyOption supplies optional metadata to keys produced by this package.
type KeyOption func(*Key)

// WithKID sets the key identifier.
func WithKID(kid string) KeyOption {
	return func(k *Key) {
		k.KID = kid
	}
}

// WithUse sets the public key use.
func WithUse(u Use) KeyOption {
	return func(k *Key) {
		k.Use = u
	}
}

// WithAlg sets the algorithm label.
func WithAlg(alg string) KeyOption {
	return func(k *Key) {
		k.Alg = alg
	}
}

// WithKeyOps sets the key operations. The given slice is copied.
func WithKeyOps(ops ...KeyOp) KeyOption {
	return func(k *Key) {
		k.KeyOps = slices.Clone(ops)
	}
}

// With returns a copy of this key with the given options applied.
func (k Key) With(options ...KeyOption) Key {
	c := k.Clone()
	for _, o := range options {
		o(&c)
	}

	return c
}
