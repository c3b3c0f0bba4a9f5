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

// Package event contains the typed representation of a single protocol
// event and the closed set of message-content variants the client/server
// API defines for m.room.message.
package event

import (
	"encoding/json"
	"fmt"
)

// An Event is a single matrix event as delivered by /sync.
// The state_key determines whether the event participates in the room
// state projection: a nil StateKey means a timeline event, a non-nil
// StateKey (the empty string is legitimate) means a state event.
type Event struct {
	ID          string                 `json:"event_id"`
	RoomID      string                 `json:"room_id"`
	Sender      string                 `json:"sender"`
	Type        string                 `json:"type"`
	StateKey    *string                `json:"state_key,omitempty"`
	Timestamp   int64                  `json:"origin_server_ts"`
	Redacts     string                 `json:"redacts,omitempty"`
	Content     map[string]interface{} `json:"content"`
	PrevContent map[string]interface{} `json:"prev_content,omitempty"`
	Unsigned    map[string]interface{} `json:"unsigned,omitempty"`
}

// MalformedEventError is returned when an event is missing a field that
// the client/server API requires to be present. The sync driver should
// skip the offending event and carry on with the rest of the batch.
type MalformedEventError struct {
	EventID string
	Field   string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed event %q: missing %q", e.EventID, e.Field)
}

// NewEventFromJSON builds an Event from raw event JSON and validates the
// mandatory fields. Optional fields default to their zero values.
func NewEventFromJSON(raw []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Validate checks that the mandatory event fields are present. The
// content key must exist in the wire form, even if the object is empty.
func (e *Event) Validate() error {
	switch {
	case e.ID == "":
		return &MalformedEventError{EventID: e.ID, Field: "event_id"}
	case e.RoomID == "":
		return &MalformedEventError{EventID: e.ID, Field: "room_id"}
	case e.Sender == "":
		return &MalformedEventError{EventID: e.ID, Field: "sender"}
	case e.Type == "":
		return &MalformedEventError{EventID: e.ID, Field: "type"}
	case e.Content == nil:
		return &MalformedEventError{EventID: e.ID, Field: "content"}
	}
	return nil
}

// IsStateEvent reports whether the event carries a state key. Its
// presence, not its value, is what matters: a pointer to the empty
// string is a state event.
func (e *Event) IsStateEvent() bool {
	return e.StateKey != nil
}

// Body returns the "body" content field if the event has one. A pure
// state event with no body is a valid empty result, not a fault.
func (e *Event) Body() (string, bool) {
	return e.contentString("body")
}

// MessageType returns the "msgtype" content field if the event has one.
func (e *Event) MessageType() (string, bool) {
	return e.contentString("msgtype")
}

func (e *Event) contentString(key string) (string, bool) {
	v, ok := e.Content[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
