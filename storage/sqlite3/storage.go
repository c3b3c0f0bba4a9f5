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

// Package sqlite3 is the durable Storer backend. All writes go through
// a single ExclusiveWriter because SQLite does not tolerate concurrent
// writers.
package sqlite3

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mx-go/statecache/internal/sqlutil"
	"github.com/mx-go/statecache/room"
	"github.com/mx-go/statecache/setup/config"
	"github.com/mx-go/statecache/storage/tables"
)

// ErrNotFound aliases the shared sentinel for convenience.
var ErrNotFound = tables.ErrNotFound

// Storer is a SQLite-backed persistence store.
type Storer struct {
	writer    sqlutil.Writer
	filters   tables.FilterID
	nextBatch tables.NextBatch
	rooms     tables.RoomSnapshot
}

// NewStorer opens (creating if necessary) the SQLite database named by
// the connection string and prepares all three tables.
func NewStorer(dbProperties *config.DatabaseOptions) (*Storer, error) {
	db, err := sqlutil.Open(dbProperties)
	if err != nil {
		return nil, errors.Wrap(err, "sqlutil.Open")
	}
	writer := sqlutil.NewExclusiveWriter()
	filters, err := NewSqliteFilterIDTable(db, writer)
	if err != nil {
		return nil, errors.Wrap(err, "NewSqliteFilterIDTable")
	}
	nextBatch, err := NewSqliteNextBatchTable(db, writer)
	if err != nil {
		return nil, errors.Wrap(err, "NewSqliteNextBatchTable")
	}
	rooms, err := NewSqliteRoomSnapshotTable(db, writer)
	if err != nil {
		return nil, errors.Wrap(err, "NewSqliteRoomSnapshotTable")
	}
	return &Storer{
		writer:    writer,
		filters:   filters,
		nextBatch: nextBatch,
		rooms:     rooms,
	}, nil
}

func (s *Storer) SaveFilterID(ctx context.Context, userID, filterID string) error {
	return s.filters.UpsertFilterID(ctx, nil, userID, filterID)
}

func (s *Storer) LoadFilterID(ctx context.Context, userID string) (string, error) {
	return s.filters.SelectFilterID(ctx, nil, userID)
}

func (s *Storer) SaveNextBatch(ctx context.Context, userID, nextBatchToken string) error {
	return s.nextBatch.UpsertNextBatch(ctx, nil, userID, nextBatchToken)
}

func (s *Storer) LoadNextBatch(ctx context.Context, userID string) (string, error) {
	return s.nextBatch.SelectNextBatch(ctx, nil, userID)
}

func (s *Storer) SaveRoom(ctx context.Context, r *room.Room) error {
	roomJSON, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.rooms.UpsertRoom(ctx, nil, r.ID, roomJSON)
}

func (s *Storer) KnownRooms(ctx context.Context) ([]string, error) {
	return s.rooms.SelectKnownRoomIDs(ctx, nil)
}

func (s *Storer) LoadRoom(ctx context.Context, roomID string) (*room.Room, error) {
	roomJSON, err := s.rooms.SelectRoom(ctx, nil, roomID)
	if err != nil {
		return nil, err
	}
	var r room.Room
	if err := json.Unmarshal(roomJSON, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
