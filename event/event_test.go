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

package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validEventJSON = []byte(`{
	"event_id": "$abc123:example.org",
	"room_id": "!roomid:example.org",
	"sender": "@alice:example.org",
	"type": "m.room.message",
	"origin_server_ts": 1234567890,
	"content": {"msgtype": "m.text", "body": "hello"}
}`)

func TestNewEventFromJSON(t *testing.T) {
	ev, err := NewEventFromJSON(validEventJSON)
	require.NoError(t, err)
	assert.Equal(t, "$abc123:example.org", ev.ID)
	assert.Equal(t, "!roomid:example.org", ev.RoomID)
	assert.Equal(t, "@alice:example.org", ev.Sender)
	assert.Equal(t, "m.room.message", ev.Type)
	assert.Equal(t, int64(1234567890), ev.Timestamp)
	assert.False(t, ev.IsStateEvent())

	body, ok := ev.Body()
	require.True(t, ok)
	assert.Equal(t, "hello", body)

	msgtype, ok := ev.MessageType()
	require.True(t, ok)
	assert.Equal(t, "m.text", msgtype)
}

func TestNewEventFromJSONMandatoryFields(t *testing.T) {
	tests := []struct {
		name      string
		dropField string
	}{
		{"missing event_id", "event_id"},
		{"missing room_id", "room_id"},
		{"missing sender", "sender"},
		{"missing type", "type"},
		{"missing content", "content"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(validEventJSON, &fields))
			delete(fields, tc.dropField)
			raw, err := json.Marshal(fields)
			require.NoError(t, err)

			_, err = NewEventFromJSON(raw)
			var malformed *MalformedEventError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tc.dropField, malformed.Field)
		})
	}
}

func TestStateKeyPresenceNotValue(t *testing.T) {
	// The empty string is a legitimate state key: presence of the
	// field, not its value, makes an event a state event.
	raw := []byte(`{
		"event_id": "$topic:example.org",
		"room_id": "!roomid:example.org",
		"sender": "@alice:example.org",
		"type": "m.room.topic",
		"state_key": "",
		"origin_server_ts": 1,
		"content": {"topic": "all things matrix"}
	}`)
	ev, err := NewEventFromJSON(raw)
	require.NoError(t, err)
	assert.True(t, ev.IsStateEvent())
	require.NotNil(t, ev.StateKey)
	assert.Equal(t, "", *ev.StateKey)

	// A pure state event with no body is a valid empty result.
	_, ok := ev.Body()
	assert.False(t, ok)
	_, ok = ev.MessageType()
	assert.False(t, ok)
}

func TestEventOptionalFieldsDefault(t *testing.T) {
	raw := []byte(`{
		"event_id": "$e:example.org",
		"room_id": "!r:example.org",
		"sender": "@alice:example.org",
		"type": "m.room.message",
		"content": {}
	}`)
	ev, err := NewEventFromJSON(raw)
	require.NoError(t, err)
	assert.Empty(t, ev.Redacts)
	assert.Nil(t, ev.StateKey)
	assert.Nil(t, ev.PrevContent)
	assert.Nil(t, ev.Unsigned)
	assert.NotNil(t, ev.Content)
}
