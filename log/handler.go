// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"sync"
	"time"

	"github.com/holiman/uint256"
)

// Format selects how records are written.
type Format int

const (
	FormatTerminal Format = iota
	FormatJSON
	FormatLogfmt
)

// NewHandler writes records at or above lvl to wr. Colour only applies to FormatTerminal.
func NewHandler(wr io.Writer, lvl *slog.LevelVar, format Format, useColor bool) slog.Handler {
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(wr, &slog.HandlerOptions{Level: lvl, ReplaceAttr: replaceJSON})
	case FormatLogfmt:
		return slog.NewTextHandler(wr, &slog.HandlerOptions{Level: lvl, ReplaceAttr: replaceLogfmt})
	default:
		return &TerminalHandler{
			mu:           &sync.Mutex{},
			wr:           wr,
			lvl:          lvl,
			useColor:     useColor,
			fieldPadding: make(map[string]int),
		}
	}
}

// DiscardHandler drops every record.
func DiscardHandler() slog.Handler {
	return slog.DiscardHandler
}

// TerminalHandler prints one aligned line per record for people watching a console:
//
//	INFO [05-16|20:58:45.123] staked  pkg=staking user=0x7567…ffed amount=100,000,000,000,000,000,000
type TerminalHandler struct {
	mu       *sync.Mutex
	wr       io.Writer
	lvl      *slog.LevelVar
	useColor bool
	attrs    []slog.Attr
	// widest value seen per key, so repeated keys line up
	fieldPadding map[string]int

	buf []byte
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf := h.format(h.buf, r, h.useColor)
	_, err := h.wr.Write(buf)
	h.buf = buf[:0]
	return err
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

func (h *TerminalHandler) WithGroup(_ string) slog.Handler {
	panic("not implemented")
}

// WithAttrs shares the writer lock with the parent so derived loggers never interleave lines.
func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		mu:           h.mu,
		wr:           h.wr,
		lvl:          h.lvl,
		useColor:     h.useColor,
		attrs:        append(append([]slog.Attr{}, h.attrs...), attrs...),
		fieldPadding: make(map[string]int),
	}
}

func replaceLogfmt(_ []string, attr slog.Attr) slog.Attr {
	return replaceAttr(attr, true)
}

func replaceJSON(_ []string, attr slog.Attr) slog.Attr {
	return replaceAttr(attr, false)
}

// replaceAttr shortens the time and level keys and renders amounts as exact decimals.
func replaceAttr(attr slog.Attr, logfmt bool) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() == slog.KindTime {
			if logfmt {
				return slog.String("t", attr.Value.Time().Format(timeFormat))
			}
			return slog.Attr{Key: "t", Value: attr.Value}
		}
	case slog.LevelKey:
		if l, ok := attr.Value.Any().(slog.Level); ok {
			return slog.String("lvl", LevelString(l))
		}
	}

	switch v := attr.Value.Any().(type) {
	case time.Time:
		if logfmt {
			return slog.String(attr.Key, v.Format(timeFormat))
		}
	case *big.Int:
		return slog.String(attr.Key, nilOr(v == nil, v.String))
	case *uint256.Int:
		return slog.String(attr.Key, nilOr(v == nil, v.Dec))
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return slog.String(attr.Key, "<nil>")
		}
		return slog.String(attr.Key, v.String())
	}
	return attr
}

func nilOr(isNil bool, str func() string) string {
	if isNil {
		return "<nil>"
	}
	return str()
}
