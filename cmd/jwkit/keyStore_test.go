// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/jwkit"
	"go.uber.org/zap/zaptest"
)

func generateTestKey(t *testing.T, kid string) jwkit.Key {
	k, err := jwkit.GenerateEC(rand.Reader, jwkit.WithKID(kid))
	require.NoError(t, err)
	return k
}

func TestInMemoryKeyStore(t *testing.T) {
	s := NewInMemoryKeyStore()

	all, err := s.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	first := generateTestKey(t, "first")
	second := generateTestKey(t, "second")
	require.NoError(t, s.Store(first))
	require.NoError(t, s.Store(second))
	assert.ErrorIs(t, s.Store(generateTestKey(t, "")), ErrNoKID)

	loaded, err := s.Load("first")
	require.NoError(t, err)
	assert.True(t, first.Equal(loaded))

	_, err = s.Load("missing")
	assert.ErrorIs(t, err, ErrNoSuchKey)

	// replacing a key keeps its position
	replacement := generateTestKey(t, "first")
	require.NoError(t, s.Store(replacement))
	all, err = s.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, replacement.Equal(all[0]))
	assert.True(t, second.Equal(all[1]))

	require.NoError(t, s.Delete("first"))
	assert.ErrorIs(t, s.Delete("first"), ErrNoSuchKey)

	all, err = s.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "second", all[0].KID)
}

type KeyHandlerSuite struct {
	suite.Suite

	metrics     *Metrics
	keyAccessor *KeyAccessor
	keyStore    *InMemoryKeyStore
	keyHandler  *KeyHandler
	keysHandler *KeysHandler
	mux         http.Handler
}

func (suite *KeyHandlerSuite) SetupTest() {
	logger := zaptest.NewLogger(suite.T())
	suite.metrics, _ = testMetrics(suite.T())
	suite.keyAccessor = new(KeyAccessor)
	suite.keyStore = NewInMemoryKeyStore()
	suite.keyHandler = NewKeyHandler(logger, suite.keyAccessor, suite.keyStore, suite.metrics)
	suite.keysHandler = NewKeysHandler(logger, suite.keyStore, suite.metrics)
	suite.mux = NewServeMux(suite.keyHandler, suite.keysHandler, http.NotFoundHandler())
}

func (suite *KeyHandlerSuite) serve(target string) *httptest.ResponseRecorder {
	response := httptest.NewRecorder()
	suite.mux.ServeHTTP(response, httptest.NewRequest(http.MethodGet, target, nil))
	return response
}

func (suite *KeyHandlerSuite) requests(handler, code string) float64 {
	return testutil.ToFloat64(suite.metrics.KeyRequests.WithLabelValues(handler, code))
}

func (suite *KeyHandlerSuite) TestNoCurrentKey() {
	response := suite.serve("/key")
	suite.Equal(http.StatusServiceUnavailable, response.Code)
	suite.Equal(1.0, suite.requests("key", "503"))
}

func (suite *KeyHandlerSuite) TestCurrentKey() {
	current := generateTestKey(suite.T(), "current")
	suite.keyAccessor.Store(current)

	response := suite.serve("/key")
	suite.Equal(http.StatusOK, response.Code)
	suite.Equal(jwkContentType, response.Header().Get("Content-Type"))

	served, err := jwkit.ParseKey(response.Body.Bytes())
	suite.Require().NoError(err)
	suite.False(served.IsPrivate())
	suite.True(current.Public().Equal(served))
	suite.Equal(1.0, suite.requests("key", "200"))
}

func (suite *KeyHandlerSuite) TestKeyByKID() {
	k := generateTestKey(suite.T(), "stored")
	suite.Require().NoError(suite.keyStore.Store(k))

	response := suite.serve("/key/stored")
	suite.Equal(http.StatusOK, response.Code)

	served, err := jwkit.ParseKey(response.Body.Bytes())
	suite.Require().NoError(err)
	suite.False(served.IsPrivate())
	suite.True(k.Public().Equal(served))

	response = suite.serve("/key/missing")
	suite.Equal(http.StatusNotFound, response.Code)
	suite.Equal(1.0, suite.requests("key", "404"))
}

func (suite *KeyHandlerSuite) TestKeys() {
	response := suite.serve("/keys")
	suite.Equal(http.StatusOK, response.Code)
	suite.JSONEq(`{"keys":[]}`, response.Body.String())

	first := generateTestKey(suite.T(), "first")
	second := generateTestKey(suite.T(), "second")
	suite.Require().NoError(suite.keyStore.Store(first))
	suite.Require().NoError(suite.keyStore.Store(second))

	response = suite.serve("/keys")
	suite.Equal(http.StatusOK, response.Code)
	suite.Equal(jwkSetContentType, response.Header().Get("Content-Type"))

	set, err := jwkit.ParseSet(response.Body.Bytes())
	suite.Require().NoError(err)

	keys := set.Keys()
	suite.Require().Len(keys, 2)
	suite.True(first.Public().Equal(keys[0]))
	suite.True(second.Public().Equal(keys[1]))
	suite.Equal(2.0, suite.requests("keys", "200"))
}

func TestKeyHandlers(t *testing.T) {
	suite.Run(t, new(KeyHandlerSuite))
}

func TestKeyAccessor(t *testing.T) {
	var ka KeyAccessor
	_, err := ka.Load()
	assert.ErrorIs(t, err, ErrNoCurrentKey)

	k := generateTestKey(t, "current")
	ka.Store(k)

	loaded, err := ka.Load()
	require.NoError(t, err)
	assert.True(t, k.Equal(loaded))

	// the accessor hands out copies
	loaded.Material.(jwkit.ECPrivate).D[0] ^= 0xff
	again, err := ka.Load()
	require.NoError(t, err)
	assert.True(t, k.Equal(again))
}
