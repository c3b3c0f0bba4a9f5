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

// Package tables holds the per-table interfaces implemented by the SQL
// backends, and the shared not-found sentinel.
package tables

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is the shared sentinel for a load with no saved value.
// The storage package re-exports it as storage.ErrNotFound.
var ErrNotFound = errors.New("statecache: not found")

// FilterID persists the server-assigned filter id per user.
type FilterID interface {
	UpsertFilterID(ctx context.Context, txn *sql.Tx, userID, filterID string) error
	SelectFilterID(ctx context.Context, txn *sql.Tx, userID string) (string, error)
}

// NextBatch persists the sync cursor per user.
type NextBatch interface {
	UpsertNextBatch(ctx context.Context, txn *sql.Tx, userID, nextBatchToken string) error
	SelectNextBatch(ctx context.Context, txn *sql.Tx, userID string) (string, error)
}

// RoomSnapshot persists serialised room projections per room id.
type RoomSnapshot interface {
	UpsertRoom(ctx context.Context, txn *sql.Tx, roomID string, roomJSON []byte) error
	SelectRoom(ctx context.Context, txn *sql.Tx, roomID string) ([]byte, error)
	SelectKnownRoomIDs(ctx context.Context, txn *sql.Tx) ([]string, error)
}
