// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package jwkit

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPEMRoundTrip(t *testing.T) {
	rsaKey, err := FromNative(testRSAKey(t))
	require.NoError(t, err)

	ecKey, err := FromNative(testECKey(t))
	require.NoError(t, err)

	testCases := []struct {
		description string
		key         Key
		blockType   string
	}{
		{description: "RSA private", key: rsaKey, blockType: "PRIVATE KEY"},
		{description: "RSA public", key: rsaKey.Public(), blockType: "PUBLIC KEY"},
		{description: "EC private", key: ecKey, blockType: "PRIVATE KEY"},
		{description: "EC public", key: ecKey.Public(), blockType: "PUBLIC KEY"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			data, err := MarshalPEM(testCase.key.With(WithKID("dropped")))
			require.NoError(t, err)
			assert.True(t, IsPEM(data))

			block, rest := pem.Decode(data)
			require.NotNil(t, block)
			assert.Empty(t, rest)
			assert.Equal(t, testCase.blockType, block.Type)

			parsed, err := ParsePEM(data, WithKID("restored"))
			require.NoError(t, err)
			assert.Equal(t, "restored", parsed.KID)
			assert.True(t, testCase.key.Equal(parsed.With(WithKID(""))))
		})
	}
}

func TestParsePEMLegacyBlocks(t *testing.T) {
	rsaRaw := testRSAKey(t)
	ecRaw := testECKey(t)

	ecDER, err := x509.MarshalECPrivateKey(ecRaw)
	require.NoError(t, err)

	testCases := []struct {
		description string
		block       *pem.Block
		expected    any
	}{
		{
			description: "PKCS #1 private",
			block:       &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(rsaRaw)},
			expected:    rsaRaw,
		},
		{
			description: "PKCS #1 public",
			block:       &pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&rsaRaw.PublicKey)},
			expected:    &rsaRaw.PublicKey,
		},
		{
			description: "SEC 1",
			block:       &pem.Block{Type: "EC PRIVATE KEY", Bytes: ecDER},
			expected:    ecRaw,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			k, err := ParsePEM(pem.EncodeToMemory(testCase.block))
			require.NoError(t, err)

			expected, err := FromNative(testCase.expected)
			require.NoError(t, err)
			assert.True(t, expected.Equal(k))
		})
	}
}

func TestMarshalPEMErrors(t *testing.T) {
	rsaKey, err := FromNative(testRSAKey(t))
	require.NoError(t, err)

	withoutCRT := rsaKey.Clone()
	m := withoutCRT.Material.(RSAPrivate)
	m.P, m.Q, m.DP, m.DQ, m.QI = nil, nil, nil, nil, nil
	withoutCRT.Material = m

	data, err := MarshalPEM(withoutCRT)
	assert.ErrorIs(t, err, ErrConversionFailure)
	assert.Nil(t, data)

	data, err = MarshalPEM(Key{})
	assert.ErrorIs(t, err, ErrUnsupportedKeyType)
	assert.Nil(t, data)
}

func TestParsePEMErrors(t *testing.T) {
	x25519, err := ecdh.X25519().GenerateKey(rand.Reader)
	require.NoError(t, err)

	x25519DER, err := x509.MarshalPKCS8PrivateKey(x25519)
	require.NoError(t, err)

	testCases := []struct {
		description string
		data        []byte
		expected    error
	}{
		{
			description: "no block",
			data:        []byte("not PEM"),
			expected:    ErrConversionFailure,
		},
		{
			description: "certificate",
			data:        pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1, 2, 3}}),
			expected:    ErrConversionFailure,
		},
		{
			description: "garbage",
			data:        pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{1, 2, 3}}),
			expected:    ErrConversionFailure,
		},
		{
			description: "X25519",
			data:        pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: x25519DER}),
			expected:    ErrUnsupportedCurve,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			k, err := ParsePEM(testCase.data)
			assert.ErrorIs(t, err, testCase.expected)
			assert.Nil(t, k.Material)
		})
	}

	assert.False(t, IsPEM([]byte(`{"kty":"EC"}`)))
}
