// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/xmidt-org/jwkit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// keyMarshaler renders the identifying metadata of a key. Key material,
// public or private, is never logged.
type keyMarshaler jwkit.Key

func (km keyMarshaler) MarshalLogObject(oe zapcore.ObjectEncoder) error {
	k := jwkit.Key(km)
	oe.AddString("kid", k.KID)
	oe.AddString("kty", k.Type().String())
	if crv := k.Curve(); crv != jwkit.NoCurve {
		oe.AddString("crv", string(crv))
	}

	if len(k.Alg) > 0 {
		oe.AddString("alg", k.Alg)
	}

	if len(k.Use) > 0 {
		oe.AddString("use", string(k.Use))
	}

	oe.AddBool("private", k.IsPrivate())
	return nil
}

// KeyField produces a zap field that describes a key.
func KeyField(name string, k jwkit.Key) zap.Field {
	return zap.Object(name, keyMarshaler(k))
}

// ProvideLogging sets up the main zap.Logger and configures fx to use it.
func ProvideLogging() fx.Option {
	return fx.Options(
		fx.Provide(
			zap.NewDevelopment,
		),
		fx.NopLogger,
	)
}
