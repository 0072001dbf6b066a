// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/jwkit"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestKeyField(t *testing.T) {
	k, err := jwkit.GenerateEC(rand.Reader, jwkit.WithKID("test"), jwkit.WithAlg("ES256"), jwkit.WithUse(jwkit.UseSignature))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	zap.New(core).Info("key", KeyField("key", k))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(
		t,
		map[string]any{
			"key": map[string]any{
				"kid":     "test",
				"kty":     "EC",
				"crv":     "P-256",
				"alg":     "ES256",
				"use":     "sig",
				"private": true,
			},
		},
		entries[0].ContextMap(),
	)
}
