// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/mtstake/log"
	"github.com/vechain/mtstake/mts"
	"github.com/vechain/mtstake/tx"
)

var logger = log.WithContext("pkg", "logdb")

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmts         *statements
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&cache=shared")
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()

	// in-memory databases are per connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	stmts, err := prepareStatements(db)
	if err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmts:         stmts,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	if err := db.stmts.Close(); err != nil {
		logger.Warn("failed to close statements", "err", err)
	}
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite library version.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// NewestCallNumber returns the call number of the newest written event, false if empty.
func (db *LogDB) NewestCallNumber() (uint32, bool, error) {
	var seq sql.NullInt64
	if err := db.stmts.newest.QueryRow().Scan(&seq); err != nil {
		return 0, false, err
	}
	if !seq.Valid {
		return 0, false, nil
	}
	return sequence(seq.Int64).CallNumber(), true, nil
}

// FilterEvents returns the events matching filter, ordered by call number and index.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	const query = "SELECT seq, callID, callTime, origin, address, topic0, topic1, topic2, topic3, topic4, data FROM event"

	if filter == nil {
		return db.queryEvents(ctx, query+" ORDER BY seq")
	}
	metricsHandleEventsFilter(filter)

	var (
		conds string
		args  []any
	)
	if filter.Range != nil {
		switch filter.Range.Unit {
		case Time:
			conds += " AND callTime >= ?"
			args = append(args, filter.Range.From)
			if filter.Range.To >= filter.Range.From {
				conds += " AND callTime <= ?"
				args = append(args, filter.Range.To)
			}
		default:
			from, to := filter.Range.From, filter.Range.To
			if from > math.MaxUint32 {
				return nil, nil
			}
			conds += " AND seq >= ?"
			args = append(args, newSequence(uint32(from), 0))
			if to >= from {
				if to > math.MaxUint32 {
					to = math.MaxUint32
				}
				conds += " AND seq <= ?"
				args = append(args, newSequence(uint32(to), math.MaxInt32))
			}
		}
	}

	for i, c := range filter.CriteriaSet {
		if i == 0 {
			conds += " AND (( 1"
		} else {
			conds += " OR ( 1"
		}
		if c.Address != nil {
			conds += " AND address = ?"
			args = append(args, c.Address.Bytes())
		}
		if c.Origin != nil {
			conds += " AND origin = ?"
			args = append(args, c.Origin.Bytes())
		}
		for j, topic := range c.Topics {
			if topic != nil {
				conds += fmt.Sprintf(" AND topic%d = ?", j)
				args = append(args, topic.Bytes())
			}
		}
		conds += ")"
		if i == len(filter.CriteriaSet)-1 {
			conds += ")"
		}
	}

	stmt := query + " WHERE 1" + conds
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq      int64
			callID   []byte
			callTime uint64
			origin   []byte
			address  []byte
			topics   [5][]byte
			data     []byte
		)
		if err := rows.Scan(
			&seq,
			&callID,
			&callTime,
			&origin,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&topics[4],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			CallNumber: sequence(seq).CallNumber(),
			Index:      sequence(seq).Index(),
			CallID:     mts.BytesToBytes32(callID),
			CallTime:   callTime,
			Origin:     mts.BytesToAddress(origin),
			Address:    mts.BytesToAddress(address),
			Data:       data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := mts.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Write indexes the events of a committed call.
func (db *LogDB) Write(callNum uint32, receipt *tx.Receipt) error {
	if len(receipt.Events) == 0 {
		return nil
	}
	conn, err := db.db.Begin()
	if err != nil {
		return err
	}
	stmt := conn.Stmt(db.stmts.insert)
	for i, ev := range receipt.Events {
		var topics [5][]byte
		for j := 0; j < len(ev.Topics) && j < len(topics); j++ {
			topics[j] = ev.Topics[j].Bytes()
		}
		if _, err := stmt.Exec(
			newSequence(callNum, uint32(i)),
			receipt.CallID.Bytes(),
			receipt.Timestamp,
			receipt.Origin.Bytes(),
			ev.Address.Bytes(),
			topics[0],
			topics[1],
			topics[2],
			topics[3],
			topics[4],
			ev.Data,
		); err != nil {
			_ = conn.Rollback()
			return errors.Wrap(err, "insert event")
		}
	}
	if err := conn.Commit(); err != nil {
		return err
	}
	metricWrittenEvents().Add(int64(len(receipt.Events)))
	return nil
}
