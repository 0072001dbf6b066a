// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServerIn struct {
	fx.In

	Logger         *zap.Logger
	Command        ServeCmd
	ListenConfig   *net.ListenConfig
	KeyHandler     *KeyHandler
	KeysHandler    *KeysHandler
	MetricsHandler http.Handler `name:"metricsHandler"`

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
}

// NewServeMux routes the key server's endpoints.
func NewServeMux(keyHandler *KeyHandler, keysHandler *KeysHandler, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /key", keyHandler)
	mux.Handle("GET /key/{kid}", keyHandler)
	mux.Handle("GET /keys", keysHandler)
	mux.Handle("GET /metrics", metricsHandler)
	return mux
}

func NewServer(in ServerIn) (s *http.Server, err error) {
	s = &http.Server{
		Addr:              in.Command.Address,
		Handler:           NewServeMux(in.KeyHandler, in.KeysHandler, in.MetricsHandler),
		ReadHeaderTimeout: 2 * time.Second,
	}

	in.Lifecycle.Append(
		fx.StartStopHook(
			func(ctx context.Context) (err error) {
				var l net.Listener
				l, err = in.ListenConfig.Listen(ctx, in.Command.Network, in.Command.Address)
				if err == nil {
					s.Addr = l.Addr().String()
					go func() {
						defer in.Shutdowner.Shutdown()

						in.Logger.Info(
							"starting server",
							zap.String("keys", fmt.Sprintf("http://%s/keys", s.Addr)),
							zap.String("key", fmt.Sprintf("http://%s/key", s.Addr)),
							zap.String("metrics", fmt.Sprintf("http://%s/metrics", s.Addr)),
						)

						serveErr := s.Serve(l)
						if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
							in.Logger.Error("server exited", zap.Error(serveErr))
						}
					}()
				}

				if err != nil {
					in.Logger.Error("unable to start server", zap.Error(err))
				}

				return
			},
			s.Shutdown,
		),
	)

	return
}

func ProvideServer() fx.Option {
	return fx.Options(
		fx.Provide(
			func() *net.ListenConfig {
				return new(net.ListenConfig)
			},
			NewServer,
		),
		fx.Invoke(
			// force the server to start
			func(*http.Server) {},
		),
	)
}
