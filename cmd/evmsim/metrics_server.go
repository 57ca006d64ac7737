// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/evmsim/metrics"
)

// serve runs handler on addr until the returned stop func is called.
// The returned url is the base url of the listener.
func serve(addr string, handler http.Handler) (url string, stop func(), err error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen [%v]", addr)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var wg sync.WaitGroup
	wg.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String(), func() {
		srv.Close()
		wg.Wait()
	}, nil
}

// metricsRouter exposes the registry under /metrics, gzip encoded when the
// client accepts it.
func metricsRouter() http.Handler {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	return handlers.CompressHandler(router)
}

// withMetrics enables metrics and serves them while action runs when
// --enable-metrics is set.
func withMetrics(action func(*cli.Context) error) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		if !ctx.GlobalBool(enableMetricsFlag.Name) {
			return action(ctx)
		}
		metrics.InitializePrometheusMetrics()
		url, stop, err := serve(ctx.GlobalString(metricsAddrFlag.Name), metricsRouter())
		if err != nil {
			return errors.Wrap(err, "metrics server")
		}
		defer stop()
		logger.Info("metrics server started", "url", url+"/metrics")
		return action(ctx)
	}
}
