// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/api"
	"github.com/vechain/mtstake/api/restutil"
	"github.com/vechain/mtstake/builtin"
	"github.com/vechain/mtstake/builtin/reverts"
	"github.com/vechain/mtstake/builtin/staking/ledger"
	"github.com/vechain/mtstake/builtin/staking/tier"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/runtime"
	"github.com/vechain/mtstake/state"
)

type Staking struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Staking {
	return &Staking{rt}
}

// view runs fn on the committed state. Contract reverts are client errors.
func (s *Staking) view(fn func(st *state.State) error) error {
	err := s.rt.View(fn)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledger.ErrNotFound):
		return restutil.NotFound(err)
	case reverts.IsRevertErr(err):
		return restutil.BadRequest(err)
	}
	return err
}

func (s *Staking) handleGetContract(w http.ResponseWriter, _ *http.Request) error {
	var contract *Contract
	err := s.view(func(st *state.State) error {
		native := builtin.Staking.Native(st, nil, nil)
		admin, err := native.Admin()
		if err != nil {
			return err
		}
		paused, err := native.IsPaused()
		if err != nil {
			return err
		}
		schema, err := native.Schema()
		if err != nil {
			return err
		}
		addrs, err := native.Assets()
		if err != nil {
			return err
		}
		contract = &Contract{
			Address:       builtin.Staking.Address,
			Admin:         admin,
			Paused:        paused,
			SchemaVersion: schema,
		}
		for _, asset := range mts.Assets {
			total, err := native.TotalStaked(asset)
			if err != nil {
				return err
			}
			item := &Asset{
				Asset:       asset.String(),
				Address:     addrs[asset],
				TotalStaked: api.NewAmount(total),
			}
			if tk, ok := builtin.TokenAt(addrs[asset]); ok {
				meta, err := tk.Native(st, nil, nil).Metadata()
				if err != nil {
					return err
				}
				if meta != nil {
					item.Name, item.Symbol, item.Decimals = meta.Name, meta.Symbol, meta.Decimals
				}
			}
			contract.Assets = append(contract.Assets, item)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, contract)
}

func (s *Staking) handleGetTiers(w http.ResponseWriter, _ *http.Request) error {
	var tiers []*Tier
	err := s.view(func(st *state.State) error {
		all, err := builtin.Staking.Native(st, nil, nil).Tiers()
		if err != nil {
			return err
		}
		for i, t := range all {
			tiers = append(tiers, convertTier(uint8(i), t))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, tiers)
}

func (s *Staking) handleGetTier(w http.ResponseWriter, req *http.Request) error {
	index, err := strconv.ParseUint(mux.Vars(req)["index"], 10, 8)
	if err != nil || index >= tier.Count {
		return restutil.BadRequest(errors.New("index: invalid tier"))
	}
	var t *Tier
	err = s.view(func(st *state.State) error {
		got, err := builtin.Staking.Native(st, nil, nil).Tier(uint8(index))
		if err != nil {
			return err
		}
		t = convertTier(uint8(index), got)
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, t)
}

func (s *Staking) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	var pool []*PoolBalance
	err := s.view(func(st *state.State) error {
		native := builtin.Staking.Native(st, nil, nil)
		balances, err := native.RewardPool()
		if err != nil {
			return err
		}
		for _, asset := range mts.Assets {
			decimals, err := assetDecimals(st, asset)
			if err != nil {
				return err
			}
			pool = append(pool, &PoolBalance{
				Asset:     asset.String(),
				Balance:   api.NewAmount(balances[asset]),
				Formatted: api.FormatUnits(balances[asset], decimals),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, pool)
}

func (s *Staking) handleGetStakes(w http.ResponseWriter, req *http.Request) error {
	user, err := mts.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	now := s.rt.Clock().Now()

	stakes := make([]*Stake, 0)
	err = s.view(func(st *state.State) error {
		native := builtin.Staking.Native(st, nil, nil)
		positions, err := native.GetUserStakes(*user)
		if err != nil {
			return err
		}
		for i, pos := range positions {
			t, err := native.Tier(pos.Tier)
			if err != nil {
				return err
			}
			stake := convertStake(uint64(i), pos, t)
			reward, err := native.CalculateReward(*user, uint64(i), now)
			if err != nil {
				return err
			}
			stake.PendingReward = api.NewAmount(reward)
			stakes = append(stakes, stake)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, stakes)
}

func (s *Staking) handleGetReward(w http.ResponseWriter, req *http.Request) error {
	user, err := mts.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	index, err := strconv.ParseUint(mux.Vars(req)["index"], 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "index"))
	}
	at := s.rt.Clock().Now()
	if v := req.URL.Query().Get("at"); v != "" {
		if at, err = strconv.ParseUint(v, 10, 64); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "at"))
		}
	}

	var reward *Reward
	err = s.view(func(st *state.State) error {
		native := builtin.Staking.Native(st, nil, nil)
		amount, err := native.CalculateReward(*user, index, at)
		if err != nil {
			return err
		}
		stakes, err := native.GetUserStakes(*user)
		if err != nil {
			return err
		}
		reward = &Reward{
			Asset:  stakes[index].Asset.String(),
			Amount: api.NewAmount(amount),
			At:     at,
		}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, reward)
}

func assetDecimals(st *state.State, asset mts.Asset) (uint8, error) {
	meta, err := builtin.Tokens[asset].Native(st, nil, nil).Metadata()
	if err != nil || meta == nil {
		return 0, err
	}
	return meta.Decimals, nil
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("staking_get_contract").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetContract))
	sub.Path("/tiers").
		Methods(http.MethodGet).
		Name("staking_get_tiers").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetTiers))
	sub.Path("/tiers/{index}").
		Methods(http.MethodGet).
		Name("staking_get_tier").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetTier))
	sub.Path("/pool").
		Methods(http.MethodGet).
		Name("staking_get_pool").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetPool))
	sub.Path("/stakes/{address}").
		Methods(http.MethodGet).
		Name("staking_get_stakes").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStakes))
	sub.Path("/stakes/{address}/{index}/reward").
		Methods(http.MethodGet).
		Name("staking_get_reward").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetReward))
}
