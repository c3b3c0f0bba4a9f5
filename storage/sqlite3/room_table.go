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

	"github.com/mx-go/statecache/internal"
	"github.com/mx-go/statecache/internal/sqlutil"
	"github.com/mx-go/statecache/storage/tables"
)

const roomSnapshotSchema = `
-- Stores the serialised state projection for every room.
CREATE TABLE IF NOT EXISTS statecache_rooms (
    room_id TEXT NOT NULL PRIMARY KEY,
    room_json TEXT NOT NULL
);
`

const upsertRoomSQL = "" +
	"INSERT INTO statecache_rooms (room_id, room_json)" +
	" VALUES ($1, $2)" +
	" ON CONFLICT (room_id)" +
	" DO UPDATE SET room_json = $2"

const selectRoomSQL = "" +
	"SELECT room_json FROM statecache_rooms WHERE room_id = $1"

const selectKnownRoomIDsSQL = "" +
	"SELECT room_id FROM statecache_rooms"

type roomSnapshotStatements struct {
	db                     *sql.DB
	writer                 sqlutil.Writer
	upsertRoomStmt         *sql.Stmt
	selectRoomStmt         *sql.Stmt
	selectKnownRoomIDsStmt *sql.Stmt
}

func NewSqliteRoomSnapshotTable(db *sql.DB, writer sqlutil.Writer) (tables.RoomSnapshot, error) {
	s := &roomSnapshotStatements{
		db:     db,
		writer: writer,
	}
	_, err := db.Exec(roomSnapshotSchema)
	if err != nil {
		return nil, err
	}
	if s.upsertRoomStmt, err = db.Prepare(upsertRoomSQL); err != nil {
		return nil, err
	}
	if s.selectRoomStmt, err = db.Prepare(selectRoomSQL); err != nil {
		return nil, err
	}
	if s.selectKnownRoomIDsStmt, err = db.Prepare(selectKnownRoomIDsSQL); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *roomSnapshotStatements) UpsertRoom(
	ctx context.Context, txn *sql.Tx, roomID string, roomJSON []byte,
) error {
	return s.writer.Do(s.db, txn, func(txn *sql.Tx) error {
		stmt := sqlutil.TxStmt(txn, s.upsertRoomStmt)
		_, err := stmt.ExecContext(ctx, roomID, roomJSON)
		return err
	})
}

func (s *roomSnapshotStatements) SelectRoom(
	ctx context.Context, txn *sql.Tx, roomID string,
) ([]byte, error) {
	var roomJSON []byte
	stmt := sqlutil.TxStmt(txn, s.selectRoomStmt)
	err := stmt.QueryRowContext(ctx, roomID).Scan(&roomJSON)
	if err == sql.ErrNoRows {
		return nil, tables.ErrNotFound
	}
	return roomJSON, err
}

func (s *roomSnapshotStatements) SelectKnownRoomIDs(
	ctx context.Context, txn *sql.Tx,
) ([]string, error) {
	stmt := sqlutil.TxStmt(txn, s.selectKnownRoomIDsStmt)
	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer internal.CloseAndLogIfError(ctx, rows, "selectKnownRoomIDs: rows.close() failed")
	var roomIDs []string
	for rows.Next() {
		var roomID string
		if err := rows.Scan(&roomID); err != nil {
			return nil, err
		}
		roomIDs = append(roomIDs, roomID)
	}
	return roomIDs, rows.Err()
}
