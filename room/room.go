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

// Package room maintains one room's current-state projection: a
// two-level mapping from event type to state key to the latest event
// observed for that pair.
package room

import (
	"fmt"

	"github.com/mx-go/statecache/event"
)

// MembershipLeave is the defined default membership for a user with no
// membership event in the room.
const MembershipLeave = "leave"

// A Room is the state projection of a single room. Each (type,
// state_key) slot is a single-slot last-write register: applying an
// event replaces whatever was resident. Ordering is trusted from the
// sync stream and not re-validated here.
//
// A Room is not safe for concurrent use on its own; the statecache
// package serialises access per room.
type Room struct {
	ID    string                             `json:"id"`
	State map[string]map[string]*event.Event `json:"state,omitempty"`
}

// NewRoom creates an empty room projection.
func NewRoom(id string) *Room {
	return &Room{
		ID:    id,
		State: make(map[string]map[string]*event.Event),
	}
}

// InvalidStateEventError is returned when a timeline event is passed to
// ApplyStateEvent. Callers must pre-filter events with no state key.
type InvalidStateEventError struct {
	EventID string
	Type    string
}

func (e *InvalidStateEventError) Error() string {
	return fmt.Sprintf("event %q (%s) has no state key and cannot be applied to room state", e.EventID, e.Type)
}

// ApplyStateEvent merges a state event into the projection, replacing
// any event resident at the same (type, state_key) pair. The previous
// event becomes unreachable. Applying the same event twice is a no-op.
func (r *Room) ApplyStateEvent(ev *event.Event) error {
	if ev == nil || !ev.IsStateEvent() {
		var id, etype string
		if ev != nil {
			id, etype = ev.ID, ev.Type
		}
		return &InvalidStateEventError{EventID: id, Type: etype}
	}
	if r.State == nil {
		r.State = make(map[string]map[string]*event.Event)
	}
	byKey := r.State[ev.Type]
	if byKey == nil {
		byKey = make(map[string]*event.Event)
		r.State[ev.Type] = byKey
	}
	byKey[*ev.StateKey] = ev
	return nil
}

// StateEvent returns the current event for the given (type, state_key)
// pair. An event type the room has never seen and a state key with no
// entry both resolve to the same absent result.
func (r *Room) StateEvent(etype, stateKey string) (*event.Event, bool) {
	byKey, ok := r.State[etype]
	if !ok {
		return nil, false
	}
	ev, ok := byKey[stateKey]
	return ev, ok
}

// MembershipState returns the membership of the given user in this
// room. A user with no membership event is treated as having left. A
// resident membership event without a membership content field is a
// malformed event and is surfaced rather than silently defaulted.
func (r *Room) MembershipState(userID string) (string, error) {
	ev, ok := r.StateEvent("m.room.member", userID)
	if !ok {
		return MembershipLeave, nil
	}
	membership, ok := ev.Content["membership"].(string)
	if !ok {
		return "", &event.MalformedEventError{EventID: ev.ID, Field: "membership"}
	}
	return membership, nil
}

// ApplyRedaction scrubs the content of a resident state event named by
// an m.room.redaction event, retaining only the content keys the
// protocol preserves. A redaction whose target is not resident in state
// is a no-op. Cross-room and self-targeting redactions are rejected.
func (r *Room) ApplyRedaction(redaction *event.Event) error {
	if redaction == nil || redaction.Redacts == "" {
		return nil
	}
	if redaction.RoomID != r.ID || redaction.Redacts == redaction.ID {
		return &InvalidStateEventError{EventID: redaction.ID, Type: redaction.Type}
	}
	for etype, byKey := range r.State {
		for stateKey, ev := range byKey {
			if ev.ID != redaction.Redacts {
				continue
			}
			redacted, err := event.RedactContent(etype, ev.Content)
			if err != nil {
				return err
			}
			// Replace the resident value rather than mutating it, so
			// snapshots holding the old pointer stay intact.
			scrubbed := *ev
			scrubbed.Content = redacted
			byKey[stateKey] = &scrubbed
			return nil
		}
	}
	return nil
}
