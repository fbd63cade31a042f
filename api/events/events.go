// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/api"
	"github.com/vechain/mtstake/api/restutil"
	"github.com/vechain/mtstake/logdb"
)

// Events serves filtered staking and token events out of the log db.
type Events struct {
	db    *logdb.LogDB
	limit uint64
}

// New caps every response at limit events.
func New(db *logdb.LogDB, limit uint64) *Events {
	return &Events{db: db, limit: limit}
}

// checkFilter fills in the default page and reports what the client got wrong.
func (e *Events) checkFilter(ef *api.EventFilter) error {
	for i, c := range ef.CriteriaSet {
		if c == nil {
			return restutil.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}
	if ef.Options == nil {
		// one extra row tells a full page apart from an overflow
		ef.Options = &api.Options{Limit: e.limit + 1}
		return nil
	}
	switch {
	case ef.Options.Limit > e.limit:
		return restutil.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	case ef.Options.Offset > math.MaxInt64:
		return restutil.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", math.MaxInt64))
	}
	return nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var ef api.EventFilter
	if err := restutil.ParseJSON(req.Body, &ef); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := e.checkFilter(&ef); err != nil {
		return err
	}
	filter, err := api.ConvertEventFilter(&ef)
	if err != nil {
		return restutil.BadRequest(err)
	}

	found, err := e.db.FilterEvents(req.Context(), filter)
	if err != nil {
		return err
	}
	if uint64(len(found)) > e.limit {
		return restutil.Forbidden(fmt.Errorf("the number of filtered logs exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}

	out := make([]*api.FilteredEvent, 0, len(found))
	for _, ev := range found {
		out = append(out, api.ConvertFilteredEvent(ev))
	}
	return restutil.WriteJSON(w, out)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	root.PathPrefix(pathPrefix).Subrouter().
		Path("").
		Methods(http.MethodPost).
		Name("logs_filter_event").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
