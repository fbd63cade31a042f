// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/mtstake/api/accounts"
	"github.com/vechain/mtstake/api/calls"
	"github.com/vechain/mtstake/api/debug"
	"github.com/vechain/mtstake/api/events"
	"github.com/vechain/mtstake/api/middleware"
	"github.com/vechain/mtstake/api/staking"
	"github.com/vechain/mtstake/api/subscriptions"
	"github.com/vechain/mtstake/api/tokens"
	"github.com/vechain/mtstake/log"
	"github.com/vechain/mtstake/logdb"
	"github.com/vechain/mtstake/runtime"
)

var logger = log.WithContext("pkg", "api")

const (
	GenesisHeader = "X-Genesis-Name"
	maxBodySize   = 200 * 1024
)

type APIOptions struct {
	AllowedOrigins  string
	LogsLimit       uint64
	Timeout         time.Duration
	SlowQueries     time.Duration
	EnableMetrics   bool
	SkipLogs        bool
	SoloMode        bool
	SubsCacheSize   int
	GenesisName     string
	EnableReqLogger *atomic.Bool
}

// NewAPIHandler routes the REST API. The returned func closes live subscriptions.
func NewAPIHandler(rt *runtime.Runtime, logDB *logdb.LogDB, opts APIOptions) (http.Handler, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	staking.New(rt).
		Mount(router, "/staking")
	tokens.New(rt).
		Mount(router, "/tokens")
	accounts.New(rt).
		Mount(router, "/accounts")
	calls.New(rt).
		Mount(router, "/calls")
	if !opts.SkipLogs && logDB != nil {
		events.New(logDB, opts.LogsLimit).
			Mount(router, "/logs/event")
	}
	if opts.SoloMode {
		debug.New(rt).
			Mount(router, "/debug")
	}
	subs := subscriptions.New(rt, origins, opts.SubsCacheSize)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Use(middleware.MetricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.ExposedHeaders([]string{GenesisHeader, middleware.RequestIDHeader}),
	)(handler)

	if opts.Timeout > 0 {
		handler = handleAPITimeout(handler, opts.Timeout)
	}
	handler = handleXGenesisName(handler, opts.GenesisName)
	if opts.EnableReqLogger != nil {
		handler = middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueries)(handler)
	}
	handler = requestBodyLimit(handler)
	return handler, subs.Close
}

func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func handleXGenesisName(h http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(GenesisHeader, name)
		h.ServeHTTP(w, r)
	})
}

func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		h.ServeHTTP(w, r)
	})
}

// StartAPIServer serves handler on addr in background.
func StartAPIServer(addr string, handler http.Handler) (string, func(), error) {
	return startServer("API", addr, handler, "/")
}
