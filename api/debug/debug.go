// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package debug

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/api/restutil"
	"github.com/vechain/mtstake/runtime"
)

// maxAdvance bounds a single clock move to ten years.
const maxAdvance = 10 * 365 * 24 * 60 * 60

type ClockState struct {
	Now    uint64 `json:"now"`
	Offset uint64 `json:"offset"`
}

type AdvanceRequest struct {
	Seconds uint64 `json:"seconds"`
}

type Debug struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Debug {
	return &Debug{rt}
}

func (d *Debug) soloClock() (*runtime.SoloClock, error) {
	clock, ok := d.rt.Clock().(*runtime.SoloClock)
	if !ok {
		return nil, restutil.Forbidden(errors.New("clock is not adjustable"))
	}
	return clock, nil
}

func (d *Debug) handleGetTime(w http.ResponseWriter, _ *http.Request) error {
	state := ClockState{Now: d.rt.Clock().Now()}
	if clock, ok := d.rt.Clock().(*runtime.SoloClock); ok {
		state.Offset = clock.Offset()
	}
	return restutil.WriteJSON(w, &state)
}

func (d *Debug) handleAdvanceTime(w http.ResponseWriter, req *http.Request) error {
	clock, err := d.soloClock()
	if err != nil {
		return err
	}
	var body AdvanceRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Seconds == 0 || body.Seconds > maxAdvance {
		return restutil.BadRequest(errors.Errorf("seconds: must be in [1, %d]", maxAdvance))
	}
	now := clock.Advance(body.Seconds)
	return restutil.WriteJSON(w, &ClockState{Now: now, Offset: clock.Offset()})
}

func (d *Debug) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/time").
		Methods(http.MethodGet).
		Name("debug_get_time").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleGetTime))
	sub.Path("/time").
		Methods(http.MethodPost).
		Name("debug_advance_time").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleAdvanceTime))
}
