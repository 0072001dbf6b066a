// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xmidt-org/jwkit"
)

const (
	formatJWK  = "jwk"
	formatJWKS = "jwks"
	formatPEM  = "pem"

	// stdinPath is the input path that selects the Environment's Stdin.
	stdinPath = "-"
)

var (
	// ErrSingleKeyRequired indicates that a document with several keys was
	// written in a format that holds exactly one.
	ErrSingleKeyRequired = errors.New("the jwk format requires exactly one key")

	// ErrNoKeys indicates an input document that held no keys.
	ErrNoKeys = errors.New("no keys were found")
)

// readInput reads the named file, or the Environment's Stdin for "-".
func readInput(env *Environment, path string) ([]byte, error) {
	if len(path) == 0 || path == stdinPath {
		return io.ReadAll(env.Stdin)
	}

	return os.ReadFile(path)
}

// isKeySet tests if a JSON document is a JWKS object rather than a single JWK.
func isKeySet(data []byte) bool {
	var probe struct {
		Keys json.RawMessage `json:"keys"`
	}

	return json.Unmarshal(data, &probe) == nil && probe.Keys != nil
}

// parseDocument reads every key from a PEM, JWK, or JWKS document. Keys
// read from PEM blocks receive the given options.
func parseDocument(data []byte, options ...jwkit.KeyOption) (keys []jwkit.Key, err error) {
	switch {
	case jwkit.IsPEM(data):
		keys, err = parsePEMDocument(data, options...)

	case isKeySet(data):
		var set *jwkit.Set
		if set, err = jwkit.ParseSet(data); err == nil {
			keys = set.Keys()
		}

	default:
		var k jwkit.Key
		if k, err = jwkit.ParseKey(data); err == nil {
			keys = []jwkit.Key{k}
		}
	}

	if err == nil && len(keys) == 0 {
		err = ErrNoKeys
	}

	return
}

// parsePEMDocument reads each PEM block in turn.
func parsePEMDocument(data []byte, options ...jwkit.KeyOption) (keys []jwkit.Key, err error) {
	for rest := bytes.TrimSpace(data); err == nil && len(rest) > 0; {
		start := bytes.Index(rest, []byte("-----BEGIN"))
		if start < 0 {
			break
		}

		rest = rest[start:]
		end := bytes.Index(rest[1:], []byte("-----BEGIN"))
		block := rest
		if end < 0 {
			rest = nil
		} else {
			block, rest = rest[:end+1], rest[end+1:]
		}

		var k jwkit.Key
		if k, err = jwkit.ParsePEM(block, options...); err == nil {
			keys = append(keys, k)
		} else {
			err = fmt.Errorf("PEM block %d: %w", len(keys), err)
		}
	}

	return
}

// writeDocument renders keys in the given format. When public is set, only
// the public half of each key is written.
func writeDocument(w io.Writer, format string, public bool, keys ...jwkit.Key) (err error) {
	if public {
		for i := range keys {
			keys[i] = keys[i].Public()
		}
	}

	var data []byte
	switch format {
	case formatJWKS:
		var set *jwkit.Set
		if set, err = jwkit.NewSet(keys...); err == nil {
			data, err = json.MarshalIndent(set, "", "  ")
		}

	case formatPEM:
		var buf bytes.Buffer
		for _, k := range keys {
			var block []byte
			if block, err = jwkit.MarshalPEM(k); err != nil {
				break
			}

			buf.Write(block)
		}

		data = buf.Bytes()

	default:
		if len(keys) != 1 {
			err = fmt.Errorf("%w: found %d", ErrSingleKeyRequired, len(keys))
		} else {
			data, err = json.MarshalIndent(keys[0], "", "  ")
		}
	}

	if err == nil {
		if format != formatPEM {
			data = append(data, '\n')
		}

		_, err = w.Write(data)
	}

	return
}
