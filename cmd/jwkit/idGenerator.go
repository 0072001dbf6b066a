// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"

	"github.com/xmidt-org/jwkit"
	"go.uber.org/fx"
)

// DefaultIDSize is the number of random bytes in a generated key identifier.
const DefaultIDSize = 16

// IDGenerator handles generating unique, URL-safe identifiers.
type IDGenerator struct {
	random io.Reader
}

// Generate generates an identifier with the given number of random bytes.
// The returned string is base64url encoded without padding.
func (idg *IDGenerator) Generate(size int) (id string, err error) {
	raw := make([]byte, size)
	if _, err = io.ReadFull(idg.random, raw); err == nil {
		id = jwkit.EncodeSegment(raw)
	}

	return
}

func NewIDGenerator(env *Environment) *IDGenerator {
	return &IDGenerator{
		random: env.Random,
	}
}

func ProvideIDGenerator() fx.Option {
	return fx.Provide(
		NewIDGenerator,
	)
}
