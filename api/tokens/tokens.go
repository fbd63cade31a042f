// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/api"
	"github.com/vechain/mtstake/api/restutil"
	"github.com/vechain/mtstake/builtin"
	"github.com/vechain/mtstake/builtin/token"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/runtime"
	"github.com/vechain/mtstake/state"
)

// Token is the metadata and supply of a token.
type Token struct {
	Asset       string      `json:"asset"`
	Address     mts.Address `json:"address"`
	Name        string      `json:"name"`
	Symbol      string      `json:"symbol"`
	Decimals    uint8       `json:"decimals"`
	TotalSupply *api.Amount `json:"totalSupply"`
}

// Balance is an amount held or allowed, raw and scaled by the token decimals.
type Balance struct {
	Amount    *api.Amount `json:"amount"`
	Formatted string      `json:"formatted"`
}

type Tokens struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Tokens {
	return &Tokens{rt}
}

func parseAsset(req *http.Request) (mts.Asset, error) {
	asset, err := mts.ParseAsset(mux.Vars(req)["asset"])
	if err != nil {
		return 0, restutil.BadRequest(errors.WithMessage(err, "asset"))
	}
	return asset, nil
}

func parseAddress(req *http.Request, name string) (mts.Address, error) {
	addr, err := mts.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return mts.Address{}, restutil.BadRequest(errors.WithMessage(err, name))
	}
	return *addr, nil
}

func decimalsOf(tk *token.Token) (uint8, error) {
	meta, err := tk.Metadata()
	if err != nil || meta == nil {
		return 0, err
	}
	return meta.Decimals, nil
}

func (t *Tokens) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	asset, err := parseAsset(req)
	if err != nil {
		return err
	}
	out := &Token{Asset: asset.String(), Address: builtin.Tokens[asset].Address}
	err = t.rt.View(func(st *state.State) error {
		tk := builtin.Tokens[asset].Native(st, nil, nil)
		meta, err := tk.Metadata()
		if err != nil {
			return err
		}
		if meta == nil {
			return restutil.NotFound(errors.New("token not deployed"))
		}
		supply, err := tk.TotalSupply()
		if err != nil {
			return err
		}
		out.Name, out.Symbol, out.Decimals = meta.Name, meta.Symbol, meta.Decimals
		out.TotalSupply = api.NewAmount(supply)
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, out)
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	asset, err := parseAsset(req)
	if err != nil {
		return err
	}
	owner, err := parseAddress(req, "address")
	if err != nil {
		return err
	}
	var out *Balance
	err = t.rt.View(func(st *state.State) error {
		tk := builtin.Tokens[asset].Native(st, nil, nil)
		bal, err := tk.BalanceOf(owner)
		if err != nil {
			return err
		}
		decimals, err := decimalsOf(tk)
		if err != nil {
			return err
		}
		out = &Balance{api.NewAmount(bal), api.FormatUnits(bal, decimals)}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, out)
}

func (t *Tokens) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	asset, err := parseAsset(req)
	if err != nil {
		return err
	}
	owner, err := parseAddress(req, "owner")
	if err != nil {
		return err
	}
	spender, err := parseAddress(req, "spender")
	if err != nil {
		return err
	}
	var out *Balance
	err = t.rt.View(func(st *state.State) error {
		tk := builtin.Tokens[asset].Native(st, nil, nil)
		allowance, err := tk.Allowance(owner, spender)
		if err != nil {
			return err
		}
		decimals, err := decimalsOf(tk)
		if err != nil {
			return err
		}
		out = &Balance{api.NewAmount(allowance), api.FormatUnits(allowance, decimals)}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, out)
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{asset}").
		Methods(http.MethodGet).
		Name("tokens_get_token").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetToken))
	sub.Path("/{asset}/balances/{address}").
		Methods(http.MethodGet).
		Name("tokens_get_balance").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/{asset}/allowances/{owner}/{spender}").
		Methods(http.MethodGet).
		Name("tokens_get_allowance").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetAllowance))
}
