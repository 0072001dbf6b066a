// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package jwkit

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// wireKey is the JWK JSON object. The field order here is the canonical
// member order of every encoded key.
type wireKey struct {
	Kty    string  `json:"kty"`
	Use    Use     `json:"use,omitempty"`
	KeyOps []KeyOp `json:"key_ops,omitempty"`
	Alg    string  `json:"alg,omitempty"`
	KID    string  `json:"kid,omitempty"`

	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`

	N  string `json:"n,omitempty"`
	E  string `json:"e,omitempty"`
	D  string `json:"d,omitempty"`
	P  string `json:"p,omitempty"`
	Q  string `json:"q,omitempty"`
	DP string `json:"dp,omitempty"`
	DQ string `json:"dq,omitempty"`
	QI string `json:"qi,omitempty"`
}

// encodeOptional encodes a binary member, leaving absent members empty so
// that they are omitted.
func encodeOptional(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	return EncodeSegment(b)
}

func newWireKey(k Key) (wk wireKey, err error) {
	wk = wireKey{
		Kty:    k.Type().String(),
		Use:    k.Use,
		KeyOps: k.KeyOps,
		Alg:    k.Alg,
		KID:    k.KID,
	}

	switch m := k.Material.(type) {
	case RSAPublic:
		wk.N = encodeOptional(m.N)
		wk.E = encodeOptional(m.E)

	case RSAPrivate:
		wk.N = encodeOptional(m.N)
		wk.E = encodeOptional(m.E)
		wk.D = encodeOptional(m.D)
		wk.P = encodeOptional(m.P)
		wk.Q = encodeOptional(m.Q)
		wk.DP = encodeOptional(m.DP)
		wk.DQ = encodeOptional(m.DQ)
		wk.QI = encodeOptional(m.QI)

	case ECPublic:
		wk.Crv = string(m.Curve)
		wk.X = encodeOptional(m.X)
		wk.Y = encodeOptional(m.Y)

	case ECPrivate:
		wk.Crv = string(m.Curve)
		wk.X = encodeOptional(m.X)
		wk.Y = encodeOptional(m.Y)
		wk.D = encodeOptional(m.D)

	default:
		err = newFieldError(memberKty, ErrUnsupportedKeyType, "the key has no material")
	}

	return
}

// MarshalJSON writes this key as a JWK object, using the canonical member order.
// Absent metadata and binary members are omitted. This method does not validate
// the key.
func (k Key) MarshalJSON() ([]byte, error) {
	wk, err := newWireKey(k)
	if err != nil {
		return nil, err
	}

	return json.Marshal(wk)
}

// UnmarshalJSON parses and validates a JWK object. This key is only
// modified if the parse succeeds.
func (k *Key) UnmarshalJSON(data []byte) error {
	parsed, err := ParseKey(data)
	if err == nil {
		*k = parsed
	}

	return err
}

// ParseKey decodes a JWK object and then validates it. This is the entry
// point for untrusted input.
func ParseKey(data []byte) (k Key, err error) {
	k, err = DecodeKey(data)
	if err == nil {
		err = Validate(k)
	}

	if err != nil {
		k = Key{}
	}

	return
}

// DecodeKey decodes a JWK object without applying Validate. Every member
// that is present is checked for its JSON type and, for binary members,
// for strict base64url. Unknown members are ignored.
func DecodeKey(data []byte) (Key, error) {
	m, err := newMembers(data)
	if err != nil {
		return Key{}, err
	}

	return m.decodeKey()
}

const (
	memberKty    = "kty"
	memberUse    = "use"
	memberKeyOps = "key_ops"
	memberAlg    = "alg"
	memberKID    = "kid"
	memberCrv    = "crv"
	memberX      = "x"
	memberY      = "y"
	memberN      = "n"
	memberE      = "e"
	memberD      = "d"
	memberP      = "p"
	memberQ      = "q"
	memberDP     = "dp"
	memberDQ     = "dq"
	memberQI     = "qi"
	memberOth    = "oth"
	memberKeys   = "keys"
)

// members is a JSON object whose member values have not been decoded yet.
type members map[string]json.RawMessage

func newMembers(data []byte) (m members, err error) {
	if !hasJSONType(data, '{') {
		return nil, newFieldError("", ErrTypeMismatch, "expected a JSON object")
	}

	if err = json.Unmarshal(data, &m); err != nil {
		m = nil
		err = &FieldError{
			Kind:   ErrTypeMismatch,
			Reason: "invalid JSON object",
			Err:    err,
		}
	}

	return
}

// hasJSONType tests if the raw JSON value starts with the given delimiter.
// A literal null never matches.
func hasJSONType(raw []byte, delim byte) bool {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	return len(raw) > 0 && raw[0] == delim
}

func (m members) has(name string) bool {
	_, ok := m[name]
	return ok
}

// str returns the named string member. The boolean is false if the member is absent.
func (m members) str(name string) (s string, present bool, err error) {
	var raw json.RawMessage
	raw, present = m[name]
	if !present {
		return
	}

	if !hasJSONType(raw, '"') {
		err = newFieldError(name, ErrTypeMismatch, "expected a string")
	} else if jsonErr := json.Unmarshal(raw, &s); jsonErr != nil {
		err = &FieldError{Field: name, Kind: ErrTypeMismatch, Err: jsonErr}
	}

	return
}

// requiredString is like str, but an absent member is ErrMissingRequiredField.
func (m members) requiredString(name string) (s string, err error) {
	var present bool
	s, present, err = m.str(name)
	if err == nil && !present {
		err = newFieldError(name, ErrMissingRequiredField, "")
	}

	return
}

// segment decodes the named binary member. An absent member yields a nil slice.
func (m members) segment(name string) (b []byte, err error) {
	var (
		s       string
		present bool
	)

	s, present, err = m.str(name)
	if err == nil && present {
		b, err = DecodeSegment(s)
		if err != nil {
			err = &FieldError{Field: name, Kind: ErrMalformedBase64, Err: err}
		}
	}

	return
}

// requiredSegment is like segment, but an absent member is ErrMissingRequiredField.
func (m members) requiredSegment(name string) (b []byte, err error) {
	if !m.has(name) {
		return nil, newFieldError(name, ErrMissingRequiredField, "")
	}

	return m.segment(name)
}

func (m members) stringArray(name string) (values []string, err error) {
	raw, present := m[name]
	if !present {
		return
	}

	var elements []json.RawMessage
	if !hasJSONType(raw, '[') {
		return nil, newFieldError(name, ErrTypeMismatch, "expected an array of strings")
	} else if jsonErr := json.Unmarshal(raw, &elements); jsonErr != nil {
		return nil, &FieldError{Field: name, Kind: ErrTypeMismatch, Err: jsonErr}
	}

	values = make([]string, len(elements))
	for i, element := range elements {
		if !hasJSONType(element, '"') {
			return nil, newFieldError(name, ErrTypeMismatch, fmt.Sprintf("element %d is not a string", i))
		} else if jsonErr := json.Unmarshal(element, &values[i]); jsonErr != nil {
			return nil, &FieldError{Field: name, Kind: ErrTypeMismatch, Err: jsonErr}
		}
	}

	return
}

func (m members) decodeKey() (k Key, err error) {
	var kty string
	if kty, err = m.requiredString(memberKty); err != nil {
		return
	}

	switch kty {
	case "RSA":
		k.Material, err = m.decodeRSA()

	case "EC":
		k.Material, err = m.decodeEC()

	default:
		err = newFieldError(memberKty, ErrUnsupportedKeyType, fmt.Sprintf("%q", kty))
	}

	if err == nil {
		err = m.decodeMetadata(&k)
	}

	if err != nil {
		k = Key{}
	}

	return
}

func (m members) decodeMetadata(k *Key) (err error) {
	var use string
	use, _, err = m.str(memberUse)
	if err == nil {
		k.Use = Use(use)
		k.Alg, _, err = m.str(memberAlg)
	}

	if err == nil {
		k.KID, _, err = m.str(memberKID)
	}

	var ops []string
	if err == nil {
		ops, err = m.stringArray(memberKeyOps)
	}

	if err == nil && len(ops) > 0 {
		k.KeyOps = make([]KeyOp, len(ops))
		for i, op := range ops {
			k.KeyOps[i] = KeyOp(op)
		}
	}

	return
}

func (m members) decodeRSA() (Material, error) {
	var (
		pub RSAPublic
		err error
	)

	if pub.N, err = m.requiredSegment(memberN); err != nil {
		return nil, err
	}

	if pub.E, err = m.requiredSegment(memberE); err != nil {
		return nil, err
	}

	if m.has(memberOth) {
		return nil, newFieldError(memberOth, ErrInconsistentPrivateParams, "multi-prime keys are not supported")
	}

	if !m.has(memberD) && !m.hasAnyOf(memberP, memberQ, memberDP, memberDQ, memberQI) {
		return pub, nil
	}

	// any private member makes this a private key, and Validate decides
	// whether the private members are consistent
	priv := RSAPrivate{RSAPublic: pub}
	for _, f := range []struct {
		name string
		dst  *[]byte
	}{
		{memberD, &priv.D},
		{memberP, &priv.P},
		{memberQ, &priv.Q},
		{memberDP, &priv.DP},
		{memberDQ, &priv.DQ},
		{memberQI, &priv.QI},
	} {
		if *f.dst, err = m.segment(f.name); err != nil {
			return nil, err
		}
	}

	return priv, nil
}

func (m members) hasAnyOf(names ...string) bool {
	for _, n := range names {
		if m.has(n) {
			return true
		}
	}

	return false
}

func (m members) decodeEC() (Material, error) {
	crv, err := m.requiredString(memberCrv)
	if err != nil {
		return nil, err
	}

	if Curve(crv) != P256 {
		return nil, newFieldError(memberCrv, ErrUnsupportedCurve, fmt.Sprintf("%q", crv))
	}

	pub := ECPublic{Curve: P256}
	if pub.X, err = m.requiredSegment(memberX); err != nil {
		return nil, err
	}

	if pub.Y, err = m.requiredSegment(memberY); err != nil {
		return nil, err
	}

	if !m.has(memberD) {
		return pub, nil
	}

	priv := ECPrivate{ECPublic: pub}
	if priv.D, err = m.segment(memberD); err != nil {
		return nil, err
	}

	return priv, nil
}
