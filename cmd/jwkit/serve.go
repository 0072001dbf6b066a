// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServeCmd runs the key server.
type ServeCmd struct {
	Network string `default:"tcp" enum:"tcp,tcp4,tcp6" help:"the network for the server to bind on"`
	Address string `default:":8080" help:"the bind address for the server"`

	KeyRotate time.Duration `default:"24h" help:"how often the current signing key is rotated."`
	Retain    int           `default:"3" help:"the number of public keys, including the current key, that are served"`

	Key KeyFlags `embed:""`
}

type errorHandler struct{}

func (errorHandler) HandleError(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
}

// serveOptions assembles the key server, minus logging.
func serveOptions(cmd ServeCmd, env *Environment) fx.Option {
	return fx.Options(
		fx.Supply(cmd, env),
		ProvideMetrics(),
		fx.Module(
			"keys",
			fx.Decorate(
				func(l *zap.Logger) *zap.Logger {
					return l.Named("keys")
				},
			),
			ProvideKeyAccessor(),
			ProvideKeyStore(),
			ProvideIDGenerator(),
			ProvideKeyGenerator(),
			ProvideRotator(),
		),
		fx.Module(
			"http",
			fx.Decorate(
				func(l *zap.Logger) *zap.Logger {
					return l.Named("http")
				},
			),
			ProvideServer(),
		),
	)
}

func (s *ServeCmd) Run(env *Environment) error {
	app := fx.New(
		ProvideLogging(),
		serveOptions(*s, env),
		fx.ErrorHook(errorHandler{}),
	)

	if err := app.Err(); err != nil {
		return err
	}

	app.Run()
	return nil
}
