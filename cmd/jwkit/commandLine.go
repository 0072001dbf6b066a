// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"crypto/rand"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// Environment holds the process resources that commands read from. Tests
// bind their own Environment to replace these.
type Environment struct {
	// Stdin is read by commands when no input file is given.
	Stdin io.Reader

	// Random is the source of randomness for keys and identifiers.
	Random io.Reader
}

// DefaultEnvironment uses the process's stdin and crypto/rand.
func DefaultEnvironment() *Environment {
	return &Environment{
		Stdin:  os.Stdin,
		Random: rand.Reader,
	}
}

type CLI struct {
	Config kong.ConfigFlag `short:"c" optional:"" help:"a YAML file that supplies values for any flags"`

	Generate GenerateCmd `cmd:"" help:"generate a new key"`
	Convert  ConvertCmd  `cmd:"" help:"convert a JWK, JWK set, or PEM document"`
	Inspect  InspectCmd  `cmd:"" help:"describe each key in a JWK, JWK set, or PEM document"`
	Serve    ServeCmd    `cmd:"" help:"serve rotating public keys over HTTP"`
}

func NewCLI(args []string, options ...kong.Option) (cli CLI, kctx *kong.Context, err error) {
	options = append(
		[]kong.Option{
			kong.Name("jwkit"),
			kong.Description("JSON Web Key toolkit for RSA and P-256 keys"),
			kong.UsageOnError(),
			kong.Configuration(YAMLConfig),
			kong.Bind(DefaultEnvironment()),
		},
		options...,
	)

	var k *kong.Kong
	k, err = kong.New(&cli, options...)
	if err == nil {
		kctx, err = k.Parse(args)
	}

	return
}
