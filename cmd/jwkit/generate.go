// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/alecthomas/kong"
	"github.com/xmidt-org/jwkit"
)

// GenerateCmd writes a single new key.
type GenerateCmd struct {
	KeyFlags `embed:""`

	KID    string `short:"k" optional:"" xor:"kid" help:"the key identifier (kid)"`
	Format string `short:"f" enum:"jwk,jwks,pem" default:"jwk" help:"the output format"`
	Public bool   `short:"p" help:"write only the public half of the new key"`
}

func (g *GenerateCmd) Run(kctx *kong.Context, env *Environment) error {
	kg, err := NewKeyGenerator(env.Random, nil, g.KeyFlags)
	if err != nil {
		return err
	}

	var options []jwkit.KeyOption
	if len(g.KID) > 0 {
		options = append(options, jwkit.WithKID(g.KID))
	}

	k, err := kg.Generate(options...)
	if err != nil {
		return err
	}

	return writeDocument(kctx.Stdout, g.Format, g.Public, k)
}
