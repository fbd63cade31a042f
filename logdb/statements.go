// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"database/sql"

	"github.com/pkg/errors"
)

const (
	newestStmt = "SELECT MAX(seq) FROM event"
	insertStmt = "INSERT OR IGNORE INTO event(seq, callID, callTime, origin, address, topic0, topic1, topic2, topic3, topic4, data) VALUES(?,?,?,?,?,?,?,?,?,?,?)"
)

// statements holds the fixed statements prepared once per database.
// Filter queries are built per request and are not kept here.
type statements struct {
	newest *sql.Stmt
	insert *sql.Stmt
}

func prepareStatements(db *sql.DB) (*statements, error) {
	newest, err := db.Prepare(newestStmt)
	if err != nil {
		return nil, errors.Wrap(err, "prepare newest")
	}
	insert, err := db.Prepare(insertStmt)
	if err != nil {
		newest.Close()
		return nil, errors.Wrap(err, "prepare insert")
	}
	return &statements{newest: newest, insert: insert}, nil
}

func (s *statements) Close() error {
	err := s.newest.Close()
	if insertErr := s.insert.Close(); err == nil {
		err = insertErr
	}
	return err
}
