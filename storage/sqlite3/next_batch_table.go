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

const nextBatchSchema = `
-- Stores the position of each user in the server's event stream.
CREATE TABLE IF NOT EXISTS statecache_next_batch (
    user_id TEXT NOT NULL PRIMARY KEY,
    next_batch TEXT NOT NULL
);
`

const upsertNextBatchSQL = "" +
	"INSERT INTO statecache_next_batch (user_id, next_batch)" +
	" VALUES ($1, $2)" +
	" ON CONFLICT (user_id)" +
	" DO UPDATE SET next_batch = $2"

const selectNextBatchSQL = "" +
	"SELECT next_batch FROM statecache_next_batch WHERE user_id = $1"

type nextBatchStatements struct {
	db                  *sql.DB
	writer              sqlutil.Writer
	upsertNextBatchStmt *sql.Stmt
	selectNextBatchStmt *sql.Stmt
}

func NewSqliteNextBatchTable(db *sql.DB, writer sqlutil.Writer) (tables.NextBatch, error) {
	s := &nextBatchStatements{
		db:     db,
		writer: writer,
	}
	_, err := db.Exec(nextBatchSchema)
	if err != nil {
		return nil, err
	}
	if s.upsertNextBatchStmt, err = db.Prepare(upsertNextBatchSQL); err != nil {
		return nil, err
	}
	if s.selectNextBatchStmt, err = db.Prepare(selectNextBatchSQL); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *nextBatchStatements) UpsertNextBatch(
	ctx context.Context, txn *sql.Tx, userID, nextBatchToken string,
) error {
	return s.writer.Do(s.db, txn, func(txn *sql.Tx) error {
		stmt := sqlutil.TxStmt(txn, s.upsertNextBatchStmt)
		_, err := stmt.ExecContext(ctx, userID, nextBatchToken)
		return err
	})
}

func (s *nextBatchStatements) SelectNextBatch(
	ctx context.Context, txn *sql.Tx, userID string,
) (string, error) {
	var token string
	stmt := sqlutil.TxStmt(txn, s.selectNextBatchStmt)
	err := stmt.QueryRowContext(ctx, userID).Scan(&token)
	if err == sql.ErrNoRows {
		return "", tables.ErrNotFound
	}
	return token, err
}
