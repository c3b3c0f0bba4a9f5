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

// Package statecache is the client-side state cache for a Matrix-style
// sync stream. A single sync driver applies state events; any number of
// readers query room state and summaries concurrently. Snapshots, the
// sync cursor and the filter id are persisted through an injected
// Storer so a restart resumes without replaying full history.
package statecache

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/mx-go/statecache/event"
	"github.com/mx-go/statecache/internal"
	"github.com/mx-go/statecache/room"
	"github.com/mx-go/statecache/setup/config"
	"github.com/mx-go/statecache/storage"
)

var (
	appliedStateEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statecache",
			Name:      "applied_state_events_total",
			Help:      "Total number of state events applied to room projections.",
		},
		[]string{"type"},
	)
	flushedSnapshots = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "statecache",
			Name:      "flushed_room_snapshots_total",
			Help:      "Total number of room snapshots persisted through the Storer.",
		},
	)
)

var registerMetricsOnce sync.Once

// Cache owns exactly one Room projection per room id and serialises
// access to each through a per-room reader/writer mutex. The zero value
// is not usable; construct with New.
type Cache struct {
	db      storage.Storer
	mutexes *internal.RWMutexByRoom

	roomsMu sync.RWMutex
	rooms   map[string]*room.Room
}

// New creates a Cache persisting through the given Storer. The logging
// hooks from the configuration are installed process-wide.
func New(cfg *config.Config, db storage.Storer) *Cache {
	if cfg != nil {
		internal.SetupHookLogging(cfg.Logging, "statecache")
		if cfg.Metrics.Enabled {
			registerMetricsOnce.Do(func() {
				prometheus.MustRegister(appliedStateEvents, flushedSnapshots)
			})
		}
	}
	return &Cache{
		db:      db,
		mutexes: internal.NewRWMutexByRoom(),
		rooms:   make(map[string]*room.Room),
	}
}

// roomForID returns the projection for the room, creating an empty one
// when the room is first observed.
func (c *Cache) roomForID(roomID string) *room.Room {
	c.roomsMu.RLock()
	r := c.rooms[roomID]
	c.roomsMu.RUnlock()
	if r != nil {
		return r
	}
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	if r = c.rooms[roomID]; r == nil {
		r = room.NewRoom(roomID)
		c.rooms[roomID] = r
	}
	return r
}

// ApplyStateEvent merges one state event into its room's projection.
// Redaction events, which arrive on the timeline, are routed to the
// redaction path. Anything else without a state key is rejected so the
// sync driver notices its filtering is broken.
func (c *Cache) ApplyStateEvent(ev *event.Event) error {
	if ev == nil {
		return &room.InvalidStateEventError{}
	}
	if err := ev.Validate(); err != nil {
		return err
	}
	r := c.roomForID(ev.RoomID)
	c.mutexes.Lock(ev.RoomID)
	defer c.mutexes.Unlock(ev.RoomID)
	if ev.Type == "m.room.redaction" && !ev.IsStateEvent() {
		return r.ApplyRedaction(ev)
	}
	if err := r.ApplyStateEvent(ev); err != nil {
		return err
	}
	appliedStateEvents.WithLabelValues(ev.Type).Inc()
	return nil
}

// ApplyEvents applies a batch in order. Malformed events are logged and
// skipped so one bad event cannot take down the rest of the batch; the
// first contract violation (timeline event in the state stream) is
// still returned.
func (c *Cache) ApplyEvents(evs ...*event.Event) error {
	for _, ev := range evs {
		err := c.ApplyStateEvent(ev)
		switch err.(type) {
		case nil:
		case *event.MalformedEventError:
			logrus.WithError(err).Warn("Skipping malformed event")
		default:
			return err
		}
	}
	return nil
}

// StateEvent returns the current event for (type, state_key) in the
// given room, or absent if the room or the slot has never been seen.
func (c *Cache) StateEvent(roomID, etype, stateKey string) (*event.Event, bool) {
	c.roomsMu.RLock()
	r := c.rooms[roomID]
	c.roomsMu.RUnlock()
	if r == nil {
		return nil, false
	}
	c.mutexes.RLock(roomID)
	defer c.mutexes.RUnlock(roomID)
	return r.StateEvent(etype, stateKey)
}

// MembershipState returns the membership of the user in the room,
// defaulting to "leave" for unknown rooms and users.
func (c *Cache) MembershipState(roomID, userID string) (string, error) {
	c.roomsMu.RLock()
	r := c.rooms[roomID]
	c.roomsMu.RUnlock()
	if r == nil {
		return room.MembershipLeave, nil
	}
	c.mutexes.RLock(roomID)
	defer c.mutexes.RUnlock(roomID)
	return r.MembershipState(userID)
}

// PublicSummary computes the public directory view of the room.
func (c *Cache) PublicSummary(roomID string) (room.PublicRoom, bool) {
	c.roomsMu.RLock()
	r := c.rooms[roomID]
	c.roomsMu.RUnlock()
	if r == nil {
		return room.PublicRoom{}, false
	}
	c.mutexes.RLock(roomID)
	defer c.mutexes.RUnlock(roomID)
	return r.PublicSummary(), true
}

// FlushRoom persists the room's snapshot. The room's read lock is held
// while the snapshot is taken so a concurrent apply cannot tear it.
// Readers are not blocked, only the writer; call this off the sync
// driver's apply path when the backend is slow.
func (c *Cache) FlushRoom(ctx context.Context, roomID string) error {
	c.roomsMu.RLock()
	r := c.rooms[roomID]
	c.roomsMu.RUnlock()
	if r == nil {
		return nil
	}
	c.mutexes.RLock(roomID)
	defer c.mutexes.RUnlock(roomID)
	if err := c.db.SaveRoom(ctx, r); err != nil {
		return err
	}
	flushedSnapshots.Inc()
	return nil
}

// Flush persists every room the cache has seen.
func (c *Cache) Flush(ctx context.Context) error {
	c.roomsMu.RLock()
	roomIDs := make([]string, 0, len(c.rooms))
	for roomID := range c.rooms {
		roomIDs = append(roomIDs, roomID)
	}
	c.roomsMu.RUnlock()
	for _, roomID := range roomIDs {
		if err := c.FlushRoom(ctx, roomID); err != nil {
			return err
		}
	}
	return nil
}

// RestoreRoom loads a persisted snapshot into the cache, replacing any
// projection already resident for that room.
func (c *Cache) RestoreRoom(ctx context.Context, roomID string) error {
	r, err := c.db.LoadRoom(ctx, roomID)
	if err != nil {
		return err
	}
	c.mutexes.Lock(roomID)
	defer c.mutexes.Unlock(roomID)
	c.roomsMu.Lock()
	c.rooms[roomID] = r
	c.roomsMu.Unlock()
	return nil
}

// Restore loads every persisted room snapshot into the cache. Call
// once at startup, before the sync driver begins applying events.
func (c *Cache) Restore(ctx context.Context) error {
	roomIDs, err := c.db.KnownRooms(ctx)
	if err != nil {
		return err
	}
	for _, roomID := range roomIDs {
		if err := c.RestoreRoom(ctx, roomID); err != nil {
			return err
		}
	}
	logrus.WithField("rooms", len(roomIDs)).Debug("Restored room snapshots")
	return nil
}

// SaveNextBatch persists the sync cursor once a cycle's events have all
// been applied.
func (c *Cache) SaveNextBatch(ctx context.Context, userID, token string) error {
	return c.db.SaveNextBatch(ctx, userID, token)
}

// NextBatch loads the persisted sync cursor. A storage.ErrNotFound
// means no prior session: the caller performs a full initial sync.
func (c *Cache) NextBatch(ctx context.Context, userID string) (string, error) {
	return c.db.LoadNextBatch(ctx, userID)
}

// SaveFilterID persists the server-assigned filter id.
func (c *Cache) SaveFilterID(ctx context.Context, userID, filterID string) error {
	return c.db.SaveFilterID(ctx, userID, filterID)
}

// FilterID loads the persisted filter id, storage.ErrNotFound when the
// user has never registered one.
func (c *Cache) FilterID(ctx context.Context, userID string) (string, error) {
	return c.db.LoadFilterID(ctx, userID)
}

// Run flushes snapshots at the given interval until the context is
// cancelled, then performs one final flush so restart resumes from the
// latest applied state.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.Flush(ctx); err != nil {
				logrus.WithError(err).Error("Failed to flush room snapshots")
			}
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := c.Flush(flushCtx); err != nil {
				logrus.WithError(err).Error("Failed to flush room snapshots on shutdown")
			}
			return
		}
	}
}
