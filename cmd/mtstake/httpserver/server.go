// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/api/admin"
	"github.com/vechain/mtstake/api/admin/health"
	"github.com/vechain/mtstake/metrics"
)

const shutdownTimeout = 5 * time.Second

// startServer serves handler on addr until the returned close func is called.
// The returned url points at path on the bound address, which matters when addr uses port 0.
func startServer(name, addr string, handler http.Handler, path string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen %s addr [%v]", name, addr)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
	}
	var goes sync.WaitGroup
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("server stopped", "name", name, "err", err)
		}
	})

	return "http://" + listener.Addr().String() + path, func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Debug("forcing server close", "name", name, "err", err)
			srv.Close()
		}
		goes.Wait()
	}, nil
}

// StartMetricsServer exposes the prometheus registry at /metrics.
func StartMetricsServer(addr string) (string, func(), error) {
	router := mux.NewRouter()
	router.Path("/metrics").Methods(http.MethodGet).Handler(metrics.HTTPHandler())
	return startServer("metrics", addr, handlers.CompressHandler(router), "/metrics")
}

// StartAdminServer exposes the log level, API log switch and health endpoints.
func StartAdminServer(addr string, logLevel *slog.LevelVar, h *health.Health, apiLogs *atomic.Bool) (string, func(), error) {
	return startServer("admin", addr, admin.New(logLevel, h, apiLogs), "/admin")
}
