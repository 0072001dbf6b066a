// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// testEnvironment uses the given stdin content and crypto/rand.
func testEnvironment(stdin string) *Environment {
	return &Environment{
		Stdin:  bytes.NewBufferString(stdin),
		Random: rand.Reader,
	}
}

func testMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	m, err := NewMetrics(registry)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m, registry
}

// runCommand executes the command line, returning what was written to stdout.
func runCommand(t *testing.T, env *Environment, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	err := run(
		args,
		kong.Writers(&stdout, &stderr),
		kong.Bind(env),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)

	t.Log(stderr.String())
	return stdout.String(), err
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
