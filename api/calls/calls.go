// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package calls

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/api"
	"github.com/vechain/mtstake/api/restutil"
	"github.com/vechain/mtstake/runtime"
	"github.com/vechain/mtstake/tx"
	"github.com/vechain/mtstake/xenv"
)

// RawCall is a signed call in RLP, hex encoded.
type RawCall struct {
	Raw string `json:"raw"`
}

type Calls struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Calls {
	return &Calls{rt}
}

func (c *Calls) handleSendCall(w http.ResponseWriter, req *http.Request) error {
	var raw RawCall
	if err := restutil.ParseJSON(req.Body, &raw); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	data, err := hexutil.Decode(raw.Raw)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "raw"))
	}
	var call tx.Call
	if err := rlp.DecodeBytes(data, &call); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "raw"))
	}

	receipt, err := c.rt.Execute(&call)
	if err != nil {
		switch {
		case errors.Is(err, tx.ErrInvalidSignature),
			errors.Is(err, runtime.ErrUnknownMethod),
			errors.Is(err, runtime.ErrBadNonce),
			errors.Is(err, xenv.ErrBadArgs):
			return restutil.BadRequest(err)
		}
		return err
	}
	return restutil.WriteJSON(w, api.ConvertReceipt(receipt))
}

func (c *Calls) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("calls_send_call").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleSendCall))
}
