// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xmidt-org/jwkit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	// ErrRotatorStarted is returned by Rotator.Start to indicate that Start has already been called.
	ErrRotatorStarted = errors.New("the key rotator has already been started")

	// ErrRotatorStopped is returned by Rotator.Stop to indicate that Stop has already been called.
	ErrRotatorStopped = errors.New("the key rotator has already been stopped")
)

// RotatorIn defines the dependencies necessary to create a Rotator.
type RotatorIn struct {
	fx.In

	Logger       *zap.Logger
	KeyGenerator *KeyGenerator
	KeyAccessor  *KeyAccessor
	KeyStore     KeyStore
	Metrics      *Metrics
	Command      ServeCmd
	Lifecycle    fx.Lifecycle
}

// Rotator manages a set of background processes for key rotation.
//
// The current key is replaced on the configured rotation interval. The public
// half of each new key is added to the KeyStore, and only the newest public
// keys, up to the configured retention, are kept. Older keys are deleted so
// that clients stop trusting them.
type Rotator struct {
	logger       *zap.Logger
	keyGenerator *KeyGenerator
	keyAccessor  *KeyAccessor
	keyStore     KeyStore
	metrics      *Metrics
	rotate       time.Duration
	retain       int

	lock   sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRotator(in RotatorIn) (r *Rotator) {
	r = &Rotator{
		logger:       in.Logger,
		keyGenerator: in.KeyGenerator,
		keyAccessor:  in.KeyAccessor,
		keyStore:     in.KeyStore,
		metrics:      in.Metrics,
		rotate:       in.Command.KeyRotate,
		retain:       max(in.Command.Retain, 1),
	}

	r.logger.Info("rotator",
		zap.Duration("rotate", r.rotate),
		zap.Int("retain", r.retain),
	)

	in.Lifecycle.Append(
		fx.StartStopHook(
			r.Start,
			r.Stop,
		),
	)

	return
}

// unsafePrune deletes the oldest keys beyond the retention limit. This method
// must be executed under the lock.
func (r *Rotator) unsafePrune() (err error) {
	var keys []jwkit.Key
	keys, err = r.keyStore.LoadAll()
	for i := 0; err == nil && len(keys)-i > r.retain; i++ {
		err = r.keyStore.Delete(keys[i].KID)
		if err == nil {
			r.logger.Info("expired key", KeyField("key", keys[i]))
		}
	}

	if err == nil {
		keys, err = r.keyStore.LoadAll()
	}

	if err == nil {
		r.metrics.RetainedKeys.Set(float64(len(keys)))
	}

	return
}

// unsafeStoreKey handles storing a key in the KeyStore and then, if
// no error occurred, updating the KeyAccessor. This method is not atomic,
// and must be executed under the lock.
func (r *Rotator) unsafeStoreKey(k jwkit.Key) (err error) {
	// only the public portion of the key is stored
	err = r.keyStore.Store(k.Public())
	if err == nil {
		// stash the private key in our access point
		r.keyAccessor.Store(k)
		err = r.unsafePrune()
	}

	return
}

// unsafeRotate generates and stores a new key, recording the outcome. This
// method must be executed under the lock.
func (r *Rotator) unsafeRotate() (k jwkit.Key, err error) {
	k, err = r.keyGenerator.Generate()
	if err == nil {
		err = r.unsafeStoreKey(k)
	}

	if err == nil {
		r.metrics.Rotations.WithLabelValues(resultSuccess).Inc()
	} else {
		r.metrics.Rotations.WithLabelValues(resultFailure).Inc()
		k = jwkit.Key{}
	}

	return
}

// Rotate generates a new key, updates the KeyStore, and then updates the KeyAccessor.
// This method returns the new current key. If this method returns any error, the key
// was not rotated.
func (r *Rotator) Rotate() (jwkit.Key, error) {
	defer r.lock.Unlock()
	r.lock.Lock()
	return r.unsafeRotate()
}

// rotateTask represents the background goroutine that rotates keys.
type rotateTask struct {
	ctx    context.Context
	logger *zap.Logger
	rotate func() (jwkit.Key, error)
	ch     <-chan time.Time
	stop   func()
}

// run is a goroutine that rotates keys in the background.
func (rt rotateTask) run() {
	defer rt.stop()

	for {
		select {
		case <-rt.ctx.Done():
			return

		case <-rt.ch:
			if newKey, err := rt.rotate(); err == nil {
				rt.logger.Info("rotated key", KeyField("key", newKey))
			} else {
				rt.logger.Error("unable to rotate key", zap.Error(err))
			}
		}
	}
}

// Start immediately rotates the current key and then starts a background goroutine to
// rotate the key on the configured interval.
func (r *Rotator) Start() (err error) {
	defer r.lock.Unlock()
	r.lock.Lock()

	if r.cancel != nil {
		// already started
		err = ErrRotatorStarted
	}

	var initialKey jwkit.Key
	if err == nil {
		// immediately rotate the key
		initialKey, err = r.unsafeRotate()
	}

	if err == nil {
		r.logger.Info("initial key", KeyField("key", initialKey))
		r.logger.Info("starting key rotation task", zap.Duration("interval", r.rotate))
		r.ctx, r.cancel = context.WithCancel(context.Background())
		ticker := time.NewTicker(r.rotate)
		go rotateTask{
			ctx:    r.ctx,
			logger: r.logger,
			rotate: r.Rotate,
			ch:     ticker.C,
			stop:   ticker.Stop,
		}.run()
	}

	return
}

// Stop stops all background processes started by this Rotator.
func (r *Rotator) Stop() (err error) {
	defer r.lock.Unlock()
	r.lock.Lock()

	if r.cancel != nil {
		r.cancel()
		r.ctx, r.cancel = nil, nil
	} else {
		err = ErrRotatorStopped
	}

	return
}

func ProvideRotator() fx.Option {
	return fx.Options(
		fx.Provide(
			NewRotator,
		),
		fx.Invoke(
			// ensure the Rotator starts
			func(*Rotator) {},
		),
	)
}
