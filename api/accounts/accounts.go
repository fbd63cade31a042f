// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/api"
	"github.com/vechain/mtstake/api/restutil"
	"github.com/vechain/mtstake/builtin"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/runtime"
	"github.com/vechain/mtstake/state"
)

// Account is the call nonce and token balances of an address.
type Account struct {
	Address  mts.Address            `json:"address"`
	Nonce    uint64                 `json:"nonce"`
	Balances map[string]*api.Amount `json:"balances"`
	Stakes   int                    `json:"stakes"`
}

type Accounts struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Accounts {
	return &Accounts{rt}
}

func parseAddress(req *http.Request) (mts.Address, error) {
	addr, err := mts.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return mts.Address{}, restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	return *addr, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	nonce, err := a.rt.Nonce(addr)
	if err != nil {
		return err
	}
	acc := &Account{
		Address:  addr,
		Nonce:    nonce,
		Balances: make(map[string]*api.Amount, mts.AssetCount),
	}
	err = a.rt.View(func(st *state.State) error {
		for _, asset := range mts.Assets {
			bal, err := builtin.Tokens[asset].Native(st, nil, nil).BalanceOf(addr)
			if err != nil {
				return err
			}
			acc.Balances[asset.String()] = api.NewAmount(bal)
		}
		stakes, err := builtin.Staking.Native(st, nil, nil).GetUserStakes(addr)
		if err != nil {
			return err
		}
		acc.Stakes = len(stakes)
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, acc)
}

func (a *Accounts) handleGetNonce(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	nonce, err := a.rt.Nonce(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"nonce": nonce})
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("accounts_get_account").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/nonce").
		Methods(http.MethodGet).
		Name("accounts_get_nonce").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetNonce))
}
