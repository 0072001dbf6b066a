// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/jwkit"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"
)

type rotatorFixture struct {
	rotator     *Rotator
	keyAccessor *KeyAccessor
	keyStore    *InMemoryKeyStore
	metrics     *Metrics
	lifecycle   *fxtest.Lifecycle
}

func newRotatorFixture(t *testing.T, random io.Reader, retain int) rotatorFixture {
	kg, err := NewKeyGenerator(random, NewIDGenerator(testEnvironment("")), KeyFlags{Type: "EC", Use: "sig"})
	require.NoError(t, err)

	f := rotatorFixture{
		keyAccessor: new(KeyAccessor),
		keyStore:    NewInMemoryKeyStore(),
		lifecycle:   fxtest.NewLifecycle(t),
	}

	f.metrics, _ = testMetrics(t)
	f.rotator = NewRotator(RotatorIn{
		Logger:       zaptest.NewLogger(t),
		KeyGenerator: kg,
		KeyAccessor:  f.keyAccessor,
		KeyStore:     f.keyStore,
		Metrics:      f.metrics,
		Command:      ServeCmd{KeyRotate: time.Hour, Retain: retain},
		Lifecycle:    f.lifecycle,
	})

	return f
}

func TestRotator(t *testing.T) {
	f := newRotatorFixture(t, rand.Reader, 2)
	f.lifecycle.RequireStart()

	initial, err := f.keyAccessor.Load()
	require.NoError(t, err)
	assert.True(t, initial.IsPrivate())
	assert.NotEmpty(t, initial.KID)

	stored, err := f.keyStore.Load(initial.KID)
	require.NoError(t, err)
	assert.False(t, stored.IsPrivate())
	assert.True(t, initial.Public().Equal(stored))

	assert.ErrorIs(t, f.rotator.Start(), ErrRotatorStarted)

	var rotated []jwkit.Key
	for i := 0; i < 3; i++ {
		k, err := f.rotator.Rotate()
		require.NoError(t, err)
		rotated = append(rotated, k)
	}

	current, err := f.keyAccessor.Load()
	require.NoError(t, err)
	assert.True(t, rotated[2].Equal(current))

	// only the newest keys are retained
	all, err := f.keyStore.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, rotated[1].KID, all[0].KID)
	assert.Equal(t, rotated[2].KID, all[1].KID)

	_, err = f.keyStore.Load(initial.KID)
	assert.ErrorIs(t, err, ErrNoSuchKey)

	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.Rotations.WithLabelValues(resultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.RetainedKeys))

	f.lifecycle.RequireStop()
	assert.ErrorIs(t, f.rotator.Stop(), ErrRotatorStopped)
}

func TestRotatorRetainsAtLeastOne(t *testing.T) {
	f := newRotatorFixture(t, rand.Reader, 0)
	f.lifecycle.RequireStart()
	defer f.lifecycle.RequireStop()

	_, err := f.rotator.Rotate()
	require.NoError(t, err)

	all, err := f.keyStore.LoadAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRotatorFailure(t *testing.T) {
	f := newRotatorFixture(t, failingReader{}, 2)
	assert.ErrorIs(t, f.rotator.Start(), jwkit.ErrGenerationFailure)

	_, err := f.keyAccessor.Load()
	assert.ErrorIs(t, err, ErrNoCurrentKey)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Rotations.WithLabelValues(resultFailure)))
}
