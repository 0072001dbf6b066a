// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package jwkit

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

const (
	pemPrivateKey    = "PRIVATE KEY"
	pemPublicKey     = "PUBLIC KEY"
	pemRSAPrivateKey = "RSA PRIVATE KEY"
	pemRSAPublicKey  = "RSA PUBLIC KEY"
	pemECPrivateKey  = "EC PRIVATE KEY"
)

// IsPEM tests if data appears to hold PEM content.
func IsPEM(data []byte) bool {
	return bytes.Contains(data, []byte("-----BEGIN"))
}

// MarshalPEM writes k as a PEM block. Private keys are written as PKCS #8
// "PRIVATE KEY" blocks, and public keys as PKIX "PUBLIC KEY" blocks. JWK
// metadata is not carried over.
func MarshalPEM(k Key) ([]byte, error) {
	if m, ok := k.Material.(RSAPrivate); ok && !m.HasCRT() {
		return nil, newConversionFailure("PKCS #8 requires the RSA CRT parameters", nil)
	}

	raw, err := ToNative(k)
	if err != nil {
		return nil, err
	}

	var block pem.Block
	if k.IsPrivate() {
		block.Type = pemPrivateKey
		block.Bytes, err = x509.MarshalPKCS8PrivateKey(raw)
	} else {
		block.Type = pemPublicKey
		block.Bytes, err = x509.MarshalPKIXPublicKey(raw)
	}

	if err != nil {
		return nil, newConversionFailure("unable to marshal "+block.Type, err)
	}

	return pem.EncodeToMemory(&block), nil
}

// ParsePEM reads the first key block from data. PKCS #8, PKCS #1, SEC 1, and
// PKIX blocks are supported. The returned key is validated, and the options
// supply its metadata.
func ParsePEM(data []byte, options ...KeyOption) (Key, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return Key{}, newConversionFailure("no PEM block found", nil)
	}

	var (
		raw any
		err error
	)

	switch block.Type {
	case pemPrivateKey:
		raw, err = x509.ParsePKCS8PrivateKey(block.Bytes)

	case pemRSAPrivateKey:
		raw, err = x509.ParsePKCS1PrivateKey(block.Bytes)

	case pemECPrivateKey:
		raw, err = x509.ParseECPrivateKey(block.Bytes)

	case pemPublicKey:
		raw, err = x509.ParsePKIXPublicKey(block.Bytes)

	case pemRSAPublicKey:
		raw, err = x509.ParsePKCS1PublicKey(block.Bytes)

	default:
		return Key{}, newConversionFailure(fmt.Sprintf("unsupported PEM block type %q", block.Type), nil)
	}

	if err != nil {
		return Key{}, newConversionFailure("unable to parse "+block.Type, err)
	}

	return FromNative(raw, options...)
}
