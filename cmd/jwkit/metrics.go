// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

const (
	resultLabel  = "result"
	handlerLabel = "handler"
	codeLabel    = "code"

	resultSuccess = "success"
	resultFailure = "failure"
)

// Metrics holds the prometheus collectors for the key server.
type Metrics struct {
	// Rotations counts key rotations, labeled by result.
	Rotations *prometheus.CounterVec

	// RetainedKeys is the number of public keys currently served.
	RetainedKeys prometheus.Gauge

	// KeyRequests counts requests for keys, labeled by handler and status code.
	KeyRequests *prometheus.CounterVec
}

// register adds a collector, tolerating one that is already registered.
func register(reg prometheus.Registerer, c prometheus.Collector) error {
	err := reg.Register(c)
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		err = nil
	}

	return err
}

// NewMetrics creates the key server metrics and registers them, along with
// the standard go and process collectors, with the given registerer.
func NewMetrics(reg prometheus.Registerer) (m *Metrics, err error) {
	m = &Metrics{
		Rotations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jwkit_key_rotations_total",
				Help: "the number of key rotations attempted",
			},
			[]string{resultLabel},
		),
		RetainedKeys: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "jwkit_retained_keys",
				Help: "the number of public keys currently available",
			},
		),
		KeyRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jwkit_key_requests_total",
				Help: "the number of HTTP requests for keys",
			},
			[]string{handlerLabel, codeLabel},
		),
	}

	for _, c := range []prometheus.Collector{
		m.Rotations,
		m.RetainedKeys,
		m.KeyRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err == nil {
			err = register(reg, c)
		}
	}

	if err != nil {
		m = nil
	}

	return
}

// NewMetricsHandler serves the prometheus exposition format for the given gatherer.
func NewMetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func ProvideMetrics() fx.Option {
	return fx.Provide(
		fx.Annotate(
			prometheus.NewRegistry,
			fx.As(new(prometheus.Registerer)),
			fx.As(new(prometheus.Gatherer)),
		),
		NewMetrics,
		fx.Annotate(
			NewMetricsHandler,
			fx.ResultTags(`name:"metricsHandler"`),
		),
	)
}
