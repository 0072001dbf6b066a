// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package jwkit

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	testRSAOnce sync.Once
	testRSARaw  *rsa.PrivateKey
	testRSAErr  error
)

// testRSAKey returns a shared 2048-bit RSA key. Generating RSA keys is slow,
// so tests that only need some valid RSA key share this one.
func testRSAKey(t *testing.T) *rsa.PrivateKey {
	testRSAOnce.Do(func() {
		testRSARaw, testRSAErr = rsa.GenerateKey(rand.Reader, 2048)
	})

	require.NoError(t, testRSAErr)
	return testRSARaw
}

func testECKey(t *testing.T) *ecdsa.PrivateKey {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return raw
}

// sequence returns n bytes counting up from start.
func sequence(start byte, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = start + byte(i)
	}

	return b
}

// jsonObject marshals the given members into a JSON object.
func jsonObject(t *testing.T, members map[string]any) []byte {
	data, err := json.Marshal(members)
	require.NoError(t, err)
	return data
}

// rsaMembers returns the JWK members for the shared RSA key.
func rsaMembers(t *testing.T, names ...string) map[string]any {
	raw := testRSAKey(t)
	raw.Precompute()

	all := map[string]any{
		"kty": "RSA",
		"n":   EncodeSegment(raw.N.Bytes()),
		"e":   "AQAB",
		"d":   EncodeSegment(raw.D.Bytes()),
		"p":   EncodeSegment(raw.Primes[0].Bytes()),
		"q":   EncodeSegment(raw.Primes[1].Bytes()),
		"dp":  EncodeSegment(raw.Precomputed.Dp.Bytes()),
		"dq":  EncodeSegment(raw.Precomputed.Dq.Bytes()),
		"qi":  EncodeSegment(raw.Precomputed.Qinv.Bytes()),
	}

	members := map[string]any{"kty": "RSA"}
	for _, n := range names {
		members[n] = all[n]
	}

	return members
}
