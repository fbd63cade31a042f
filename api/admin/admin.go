// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/mtstake/api/admin/health"
	"github.com/vechain/mtstake/api/restutil"
)

func New(logLevel *slog.LevelVar, h *health.Health, apiLogs *atomic.Bool) http.Handler {
	router := mux.NewRouter()

	router.Path("/admin/loglevel").
		Methods(http.MethodGet).
		Name("admin_get_log_level").
		HandlerFunc(restutil.WrapHandlerFunc(getLogLevelHandler(logLevel)))
	router.Path("/admin/loglevel").
		Methods(http.MethodPost).
		Name("admin_post_log_level").
		HandlerFunc(restutil.WrapHandlerFunc(postLogLevelHandler(logLevel)))
	router.Path("/admin/apilogs").
		Methods(http.MethodGet).
		Name("admin_get_api_logs").
		HandlerFunc(restutil.WrapHandlerFunc(getAPILogsHandler(apiLogs)))
	router.Path("/admin/apilogs").
		Methods(http.MethodPost).
		Name("admin_post_api_logs").
		HandlerFunc(restutil.WrapHandlerFunc(postAPILogsHandler(apiLogs)))
	router.Path("/admin/health").
		Methods(http.MethodGet).
		Name("admin_health").
		HandlerFunc(restutil.WrapHandlerFunc(healthHandler(h)))

	return handlers.CompressHandler(router)
}
