// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/alecthomas/kong"
	"github.com/xmidt-org/jwkit"
)

// ConvertCmd rewrites a key document in another format.
type ConvertCmd struct {
	Input string `arg:"" optional:"" default:"-" help:"the document to convert, or - for stdin"`

	Format string `short:"f" enum:"jwk,jwks,pem" default:"jwk" help:"the output format"`
	Public bool   `short:"p" help:"write only the public half of each key"`
	KID    string `short:"k" optional:"" help:"the kid assigned to keys read from PEM"`
	Use    string `optional:"" help:"the use (sig or enc) assigned to keys read from PEM"`
	Alg    string `optional:"" help:"the alg assigned to keys read from PEM"`
}

func (c *ConvertCmd) Run(kctx *kong.Context, env *Environment) error {
	data, err := readInput(env, c.Input)
	if err != nil {
		return err
	}

	keys, err := parseDocument(
		data,
		jwkit.WithKID(c.KID),
		jwkit.WithUse(jwkit.Use(c.Use)),
		jwkit.WithAlg(c.Alg),
	)

	if err != nil {
		return err
	}

	return writeDocument(kctx.Stdout, c.Format, c.Public, keys...)
}
