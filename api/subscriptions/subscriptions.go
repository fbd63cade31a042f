// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/vechain/mtstake/api"
	"github.com/vechain/mtstake/api/restutil"
	"github.com/vechain/mtstake/log"
	"github.com/vechain/mtstake/runtime"
	"github.com/vechain/mtstake/tx"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// time allowed to read the next pong message from the peer
	defaultPongWait = 60 * time.Second
	writeWait       = 10 * time.Second
	// queued receipts per subscriber
	receiptBacklog = 256
)

type Subscriptions struct {
	rt         *runtime.Runtime
	upgrader   *websocket.Upgrader
	cache      *messageCache
	pongWait   time.Duration
	pingPeriod time.Duration
	done       chan struct{}
	wg         sync.WaitGroup
}

func New(rt *runtime.Runtime, allowedOrigins []string, cacheSize int) *Subscriptions {
	s := &Subscriptions{
		rt: rt,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return slices.ContainsFunc(allowedOrigins, func(allowed string) bool {
					return allowed == "*" || strings.EqualFold(allowed, origin)
				})
			},
		},
		cache: newMessageCache(cacheSize),
		done:  make(chan struct{}),
	}
	s.setPongWait(defaultPongWait)
	return s
}

func (s *Subscriptions) setPongWait(d time.Duration) {
	s.pongWait = d
	s.pingPeriod = d * 7 / 10
}

// Close disconnects all subscribers and waits for them to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) handleSubjectEvent(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseEventFilter(req.URL.Query())
	if err != nil {
		return restutil.BadRequest(err)
	}
	return s.serve(w, req, func(receipt *tx.Receipt) ([][]byte, error) {
		msgs, _, err := s.cache.GetOrAdd(receipt)
		if err != nil {
			return nil, err
		}
		var matched [][]byte
		for i, ev := range receipt.Events {
			if filter.Match(receipt, ev) {
				matched = append(matched, msgs[i])
			}
		}
		return matched, nil
	})
}

func (s *Subscriptions) handleSubjectCall(w http.ResponseWriter, req *http.Request) error {
	origin, err := parseAddress(req.URL.Query(), "origin")
	if err != nil {
		return restutil.BadRequest(err)
	}
	return s.serve(w, req, func(receipt *tx.Receipt) ([][]byte, error) {
		if origin != nil && *origin != receipt.Origin {
			return nil, nil
		}
		data, err := json.Marshal(&CallMessage{api.ConvertReceipt(receipt)})
		if err != nil {
			return nil, err
		}
		return [][]byte{data}, nil
	})
}

// serve upgrades the connection and pushes the messages built from each
// committed call until the peer goes away or the server closes.
func (s *Subscriptions) serve(w http.ResponseWriter, req *http.Request, build func(*tx.Receipt) ([][]byte, error)) error {
	// subscribe first so that no call committed after the handshake is missed
	receipts := make(chan *tx.Receipt, receiptBacklog)
	sub := s.rt.SubscribeReceipts(receipts)
	defer sub.Unsubscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader already replied
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(s.pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(s.pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case receipt := <-receipts:
			msgs, err := build(receipt)
			if err != nil {
				logger.Warn("failed to build message", "err", err)
				continue
			}
			for _, msg := range msgs {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					logger.Debug("write failed", "err", err)
					return nil
				}
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case err := <-sub.Err():
			if err != nil {
				logger.Debug("subscription failed", "err", err)
			}
			return nil
		case <-closed:
			return nil
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return nil
		}
	}
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("subscriptions_event").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubjectEvent))
	sub.Path("/call").
		Methods(http.MethodGet).
		Name("subscriptions_call").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubjectCall))
}
