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

// Package memory is the reference Storer implementation: mutex-guarded
// maps, no durability. It is the default backend and the one the tests
// exercise the contracts against.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mx-go/statecache/room"
	"github.com/mx-go/statecache/storage/tables"
)

// ErrNotFound aliases the shared sentinel for convenience.
var ErrNotFound = tables.ErrNotFound

// Storer keeps filter ids, sync cursors and room snapshots in maps.
// Rooms are deep-copied on both save and load so callers can never
// mutate a resident snapshot through a retained pointer.
type Storer struct {
	mu        sync.RWMutex
	filters   map[string]string
	nextBatch map[string]string
	rooms     map[string][]byte
}

// NewStorer creates an empty in-memory store.
func NewStorer() *Storer {
	return &Storer{
		filters:   make(map[string]string),
		nextBatch: make(map[string]string),
		rooms:     make(map[string][]byte),
	}
}

// SaveFilterID remembers the filter id registered for the user.
func (s *Storer) SaveFilterID(_ context.Context, userID, filterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[userID] = filterID
	return nil
}

// LoadFilterID returns the saved filter id, or ErrNotFound.
func (s *Storer) LoadFilterID(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filterID, ok := s.filters[userID]
	if !ok {
		return "", ErrNotFound
	}
	return filterID, nil
}

// SaveNextBatch remembers the sync cursor for the user.
func (s *Storer) SaveNextBatch(_ context.Context, userID, nextBatchToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBatch[userID] = nextBatchToken
	return nil
}

// LoadNextBatch returns the saved sync cursor, or ErrNotFound.
func (s *Storer) LoadNextBatch(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.nextBatch[userID]
	if !ok {
		return "", ErrNotFound
	}
	return token, nil
}

// SaveRoom snapshots the room projection under its room id.
func (s *Storer) SaveRoom(_ context.Context, r *room.Room) error {
	snapshot, err := json.Marshal(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = snapshot
	return nil
}

// KnownRooms lists the room ids with a saved snapshot, in no
// particular order.
func (s *Storer) KnownRooms(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roomIDs := make([]string, 0, len(s.rooms))
	for roomID := range s.rooms {
		roomIDs = append(roomIDs, roomID)
	}
	return roomIDs, nil
}

// LoadRoom returns a copy of the saved room projection, or ErrNotFound.
func (s *Storer) LoadRoom(_ context.Context, roomID string) (*room.Room, error) {
	s.mu.RLock()
	snapshot, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var r room.Room
	if err := json.Unmarshal(snapshot, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
