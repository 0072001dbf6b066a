// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/xmidt-org/jwkit"
	"go.uber.org/fx"
)

var (
	// ErrUnsupportedAlg indicates that an alg was not recognized for the key's use.
	ErrUnsupportedAlg = errors.New("unsupported alg")
)

// KeyFlags are the command line options that describe newly generated keys.
type KeyFlags struct {
	Type          string `short:"t" enum:"EC,RSA" default:"EC" help:"the key type (kty) to generate"`
	Bits          int    `default:"2048" help:"the modulus size in bits. used only for RSA keys."`
	Use           string `enum:"sig,enc" default:"sig" help:"the intended use of generated keys"`
	Alg           string `optional:"" help:"the alg for generated keys.  defaults to ES256 for EC and RS256 for RSA signature keys."`
	KIDThumbprint bool   `name:"kid-thumbprint" xor:"kid" help:"use the RFC 7638 thumbprint as the kid"`
}

// resolveAlg checks an explicit alg against the known jwa algorithms for the
// given use, or supplies the default signature algorithm for the key type.
func resolveAlg(kty jwkit.KeyType, use jwkit.Use, alg string) (string, error) {
	switch {
	case len(alg) == 0 && use == jwkit.UseEncryption:
		return "", nil

	case len(alg) == 0 && kty == jwkit.EC:
		return jwa.ES256().String(), nil

	case len(alg) == 0:
		return jwa.RS256().String(), nil

	case use == jwkit.UseEncryption:
		if _, ok := jwa.LookupKeyEncryptionAlgorithm(alg); !ok {
			return "", fmt.Errorf("%w: %q is not a key encryption algorithm", ErrUnsupportedAlg, alg)
		}

	default:
		if _, ok := jwa.LookupSignatureAlgorithm(alg); !ok {
			return "", fmt.Errorf("%w: %q is not a signature algorithm", ErrUnsupportedAlg, alg)
		}
	}

	return alg, nil
}

// KeyGenerator creates new private keys with a fixed set of metadata.
type KeyGenerator struct {
	random      io.Reader
	idGenerator *IDGenerator
	kty         jwkit.KeyType
	bits        int
	thumbprint  bool
	options     []jwkit.KeyOption
}

// NewKeyGenerator creates a KeyGenerator from command line flags. The idGenerator
// is optional. When set, it supplies a kid for keys that would otherwise have none.
func NewKeyGenerator(random io.Reader, idGenerator *IDGenerator, flags KeyFlags) (kg *KeyGenerator, err error) {
	kg = &KeyGenerator{
		random:      random,
		idGenerator: idGenerator,
		bits:        flags.Bits,
		thumbprint:  flags.KIDThumbprint,
	}

	switch flags.Type {
	case jwkit.EC.String():
		kg.kty = jwkit.EC

	case jwkit.RSA.String():
		kg.kty = jwkit.RSA

	default:
		err = fmt.Errorf("%w: %q", jwkit.ErrUnsupportedKeyType, flags.Type)
	}

	use := jwkit.Use(flags.Use)
	var alg string
	if err == nil {
		alg, err = resolveAlg(kg.kty, use, flags.Alg)
	}

	if err == nil {
		kg.options = append(kg.options, jwkit.WithUse(use), jwkit.WithAlg(alg))
		if use == jwkit.UseSignature {
			kg.options = append(kg.options, jwkit.WithKeyOps(jwkit.KeyOpSign, jwkit.KeyOpVerify))
		}
	} else {
		kg = nil
	}

	return
}

// Generate creates a new private key. The options are applied after this
// generator's metadata, so they can override it.
func (kg *KeyGenerator) Generate(options ...jwkit.KeyOption) (k jwkit.Key, err error) {
	options = append(append([]jwkit.KeyOption{}, kg.options...), options...)
	switch kg.kty {
	case jwkit.RSA:
		k, err = jwkit.GenerateRSA(kg.random, kg.bits, options...)

	default:
		k, err = jwkit.GenerateEC(kg.random, options...)
	}

	var kid string
	switch {
	case err != nil:
		// nothing more to do

	case kg.thumbprint:
		kid, err = jwkit.ThumbprintKID(k)

	case len(k.KID) == 0 && kg.idGenerator != nil:
		kid, err = kg.idGenerator.Generate(DefaultIDSize)
	}

	if err == nil && len(kid) > 0 {
		k = k.With(jwkit.WithKID(kid))
	}

	if err != nil {
		k = jwkit.Key{}
	}

	return
}

func ProvideKeyGenerator() fx.Option {
	return fx.Provide(
		func(env *Environment, idGenerator *IDGenerator, cmd ServeCmd) (*KeyGenerator, error) {
			return NewKeyGenerator(env.Random, idGenerator, cmd.Key)
		},
	)
}
