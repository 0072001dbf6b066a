// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"sync/atomic"

	"github.com/xmidt-org/jwkit"
	"go.uber.org/fx"
)

var (
	// ErrNoCurrentKey is returned by KeyAccessor.Load to indicate that no current
	// key has been set.
	ErrNoCurrentKey = errors.New("the current key has not been initialized")
)

// KeyAccessor is a simple, atomic access point for the current signing key.
// The stored key is private and is never rendered directly.
type KeyAccessor struct {
	current atomic.Pointer[jwkit.Key]
}

// Load returns a copy of the current signing key. If no signing key has been
// set yet, this method returns ErrNoCurrentKey.
func (ka *KeyAccessor) Load() (k jwkit.Key, err error) {
	if p := ka.current.Load(); p != nil {
		k = p.Clone()
	} else {
		err = ErrNoCurrentKey
	}

	return
}

// Store updates the current key.
func (ka *KeyAccessor) Store(k jwkit.Key) {
	c := k.Clone()
	ka.current.Store(&c)
}

func ProvideKeyAccessor() fx.Option {
	return fx.Supply(new(KeyAccessor))
}
