// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"sync"

	"github.com/xmidt-org/jwkit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	jwkContentType    = "application/jwk+json"
	jwkSetContentType = "application/jwk-set+json"
)

var (
	ErrNoSuchKey = errors.New("no key exists with that KID")
	ErrNoKID     = errors.New("keys must have a KID to be stored")
)

// KeyStore represents storage, possibly external, for keys.
type KeyStore interface {
	// Store inserts the given key into this storage. Care must be taken
	// not to store private keys in unsafe, external locations. Storing a
	// key with an existing kid replaces that key.
	Store(jwkit.Key) error

	// Load retrieves the Key with the given kid. If no such key exists,
	// this method returns ErrNoSuchKey.
	Load(kid string) (jwkit.Key, error)

	// LoadAll loads all keys known to this storage, oldest first.
	LoadAll() ([]jwkit.Key, error)

	// Delete removes a key from this storage. If no such key exists,
	// this method returns ErrNoSuchKey.
	Delete(kid string) error
}

// InMemoryKeyStore is a KeyStore that uses a simple map guarded
// by a read/write mutex. Instances must be created with NewInMemoryKeyStore.
type InMemoryKeyStore struct {
	lock  sync.RWMutex
	keys  map[string]jwkit.Key
	order []string
}

func NewInMemoryKeyStore() *InMemoryKeyStore {
	return &InMemoryKeyStore{
		keys: make(map[string]jwkit.Key),
	}
}

func (s *InMemoryKeyStore) Store(k jwkit.Key) error {
	if len(k.KID) == 0 {
		return ErrNoKID
	}

	s.lock.Lock()
	if _, exists := s.keys[k.KID]; !exists {
		s.order = append(s.order, k.KID)
	}

	s.keys[k.KID] = k.Clone()
	s.lock.Unlock()
	return nil
}

func (s *InMemoryKeyStore) Load(kid string) (k jwkit.Key, err error) {
	var exists bool
	s.lock.RLock()
	k, exists = s.keys[kid]
	s.lock.RUnlock()

	if exists {
		k = k.Clone()
	} else {
		err = ErrNoSuchKey
	}

	return
}

func (s *InMemoryKeyStore) LoadAll() (ks []jwkit.Key, err error) {
	s.lock.RLock()

	ks = make([]jwkit.Key, 0, len(s.order))
	for _, kid := range s.order {
		ks = append(ks, s.keys[kid].Clone())
	}

	s.lock.RUnlock()
	return
}

func (s *InMemoryKeyStore) Delete(kid string) (err error) {
	s.lock.Lock()

	if _, exists := s.keys[kid]; exists {
		delete(s.keys, kid)
		s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == kid })
	} else {
		err = ErrNoSuchKey
	}

	s.lock.Unlock()
	return
}

// writeJSON renders v, counting the request against the given handler.
func writeJSON(response http.ResponseWriter, metrics *Metrics, handler, contentType string, v any) {
	data, err := json.Marshal(v)
	code := http.StatusOK
	if err == nil {
		response.Header().Set("Content-Type", contentType)
		response.WriteHeader(code)
		response.Write(data)
	} else {
		code = http.StatusInternalServerError
		response.WriteHeader(code)
	}

	metrics.KeyRequests.WithLabelValues(handler, strconv.Itoa(code)).Inc()
}

// writeStatus writes an empty response, counting the request against the given handler.
func writeStatus(response http.ResponseWriter, metrics *Metrics, handler string, code int) {
	response.WriteHeader(code)
	metrics.KeyRequests.WithLabelValues(handler, strconv.Itoa(code)).Inc()
}

// KeyHandler renders PUBLIC keys over HTTP.
type KeyHandler struct {
	logger      *zap.Logger
	keyAccessor *KeyAccessor
	keyStore    KeyStore
	metrics     *Metrics
}

func NewKeyHandler(logger *zap.Logger, keyAccessor *KeyAccessor, keyStore KeyStore, metrics *Metrics) *KeyHandler {
	return &KeyHandler{
		logger:      logger,
		keyAccessor: keyAccessor,
		keyStore:    keyStore,
		metrics:     metrics,
	}
}

// ServeHTTP serves up the JWK format of generated keys. If this handler receives a path variable
// named "kid", that is used to lookup the key to render. Otherwise, this handler returns the current
// verification key.
func (kh *KeyHandler) ServeHTTP(response http.ResponseWriter, request *http.Request) {
	if kid := request.PathValue("kid"); len(kid) > 0 {
		if key, err := kh.keyStore.Load(kid); err == nil {
			writeJSON(response, kh.metrics, "key", jwkContentType, key.Public())
		} else {
			kh.logger.Debug("no such key", zap.String("kid", kid))
			writeStatus(response, kh.metrics, "key", http.StatusNotFound)
		}
	} else if key, err := kh.keyAccessor.Load(); err == nil {
		writeJSON(response, kh.metrics, "key", jwkContentType, key.Public())
	} else {
		writeStatus(response, kh.metrics, "key", http.StatusServiceUnavailable)
	}
}

// KeysHandler serves up the set of all public keys in the KeyStore.
type KeysHandler struct {
	logger   *zap.Logger
	keyStore KeyStore
	metrics  *Metrics
}

func NewKeysHandler(l *zap.Logger, keyStore KeyStore, metrics *Metrics) *KeysHandler {
	return &KeysHandler{
		logger:   l,
		keyStore: keyStore,
		metrics:  metrics,
	}
}

func (kh *KeysHandler) fetchKeySet() (set *jwkit.Set, err error) {
	var keys []jwkit.Key
	keys, err = kh.keyStore.LoadAll()
	if err == nil {
		set, err = jwkit.NewSet(keys...)
	}

	if err == nil {
		set = set.Public()
	}

	return
}

// ServeHTTP serves up the JWK key set in jwk-set format.
func (kh *KeysHandler) ServeHTTP(response http.ResponseWriter, request *http.Request) {
	if set, err := kh.fetchKeySet(); err == nil {
		writeJSON(response, kh.metrics, "keys", jwkSetContentType, set)
	} else {
		kh.logger.Error("unable to build key set", zap.Error(err))
		writeStatus(response, kh.metrics, "keys", http.StatusInternalServerError)
	}
}

func ProvideKeyStore() fx.Option {
	return fx.Provide(
		fx.Annotate(
			NewInMemoryKeyStore,
			fx.As(new(KeyStore)),
		),
		NewKeyHandler,
		NewKeysHandler,
	)
}
