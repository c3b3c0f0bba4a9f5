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

// Package storage defines the persistence boundary of the state cache:
// the per-user filter id, the per-user sync cursor, and per-room
// snapshots. Backends are substitutable; the in-memory implementation
// is the reference.
package storage

import (
	"context"
	"fmt"

	"github.com/mx-go/statecache/room"
	"github.com/mx-go/statecache/setup/config"
	"github.com/mx-go/statecache/storage/memory"
	"github.com/mx-go/statecache/storage/sqlite3"
	"github.com/mx-go/statecache/storage/tables"
)

// ErrNotFound is returned by the Load methods when no value has been
// saved under the requested key. Callers must be able to distinguish
// "no prior session" from an internal fault, so backends are required
// to return or wrap this sentinel.
var ErrNotFound = tables.ErrNotFound

// A Storer persists the cache's cross-session records. Loads never
// consume the store: it remains usable for further saves and loads by
// any caller. Non-memory backends may block, hence the contexts.
type Storer interface {
	SaveFilterID(ctx context.Context, userID, filterID string) error
	LoadFilterID(ctx context.Context, userID string) (string, error)
	SaveNextBatch(ctx context.Context, userID, nextBatchToken string) error
	LoadNextBatch(ctx context.Context, userID string) (string, error)
	SaveRoom(ctx context.Context, r *room.Room) error
	LoadRoom(ctx context.Context, roomID string) (*room.Room, error)
	KnownRooms(ctx context.Context) ([]string, error)
}

// NewStorer opens the backend selected by the database options: the
// in-memory store for an empty connection string, SQLite for file:
// URIs.
func NewStorer(dbProperties *config.DatabaseOptions) (Storer, error) {
	switch {
	case dbProperties.ConnectionString.IsMemory():
		return memory.NewStorer(), nil
	case dbProperties.ConnectionString.IsSQLite():
		return sqlite3.NewStorer(dbProperties)
	default:
		return nil, fmt.Errorf("unexpected database type %q", dbProperties.ConnectionString)
	}
}
