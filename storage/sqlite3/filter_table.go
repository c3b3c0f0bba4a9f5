// Copyright 2025 The statecache Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sqlite3

import (
	"context"
	"database/sql"

	"github.com/mx-go/statecache/internal/sqlutil"
	"github.com/mx-go/statecache/storage/tables"
)

const filterIDSchema = `
-- Stores the server-assigned filter id for each user.
CREATE TABLE IF NOT EXISTS statecache_filter_ids (
    user_id TEXT NOT NULL PRIMARY KEY,
    filter_id TEXT NOT NULL
);
`

const upsertFilterIDSQL = "" +
	"INSERT INTO statecache_filter_ids (user_id, filter_id)" +
	" VALUES ($1, $2)" +
	" ON CONFLICT (user_id)" +
	" DO UPDATE SET filter_id = $2"

const selectFilterIDSQL = "" +
	"SELECT filter_id FROM statecache_filter_ids WHERE user_id = $1"

type filterIDStatements struct {
	db                 *sql.DB
	writer             sqlutil.Writer
	upsertFilterIDStmt *sql.Stmt
	selectFilterIDStmt *sql.Stmt
}

func NewSqliteFilterIDTable(db *sql.DB, writer sqlutil.Writer) (tables.FilterID, error) {
	s := &filterIDStatements{
		db:     db,
		writer: writer,
	}
	_, err := db.Exec(filterIDSchema)
	if err != nil {
		return nil, err
	}
	if s.upsertFilterIDStmt, err = db.Prepare(upsertFilterIDSQL); err != nil {
		return nil, err
	}
	if s.selectFilterIDStmt, err = db.Prepare(selectFilterIDSQL); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *filterIDStatements) UpsertFilterID(
	ctx context.Context, txn *sql.Tx, userID, filterID string,
) error {
	return s.writer.Do(s.db, txn, func(txn *sql.Tx) error {
		stmt := sqlutil.TxStmt(txn, s.upsertFilterIDStmt)
		_, err := stmt.ExecContext(ctx, userID, filterID)
		return err
	})
}

func (s *filterIDStatements) SelectFilterID(
	ctx context.Context, txn *sql.Tx, userID string,
) (string, error) {
	var filterID string
	stmt := sqlutil.TxStmt(txn, s.selectFilterIDStmt)
	err := stmt.QueryRowContext(ctx, userID).Scan(&filterID)
	if err == sql.ErrNoRows {
		return "", tables.ErrNotFound
	}
	return filterID, err
}
