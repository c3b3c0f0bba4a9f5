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

package room

// PublicRoom is the public directory summary of a room. It is a view
// computed from current state, never stored independently.
type PublicRoom struct {
	RoomID           string   `json:"room_id"`
	CanonicalAlias   string   `json:"canonical_alias,omitempty"`
	Aliases          []string `json:"aliases,omitempty"`
	Name             string   `json:"name,omitempty"`
	Topic            string   `json:"topic,omitempty"`
	AvatarURL        string   `json:"avatar_url,omitempty"`
	NumJoinedMembers int      `json:"num_joined_members"`
	WorldReadable    bool     `json:"world_readable"`
	GuestCanJoin     bool     `json:"guest_can_join"`
}

// stateContentString reads one string content field off the current
// event for a (type, state_key) pair, empty when absent.
func (r *Room) stateContentString(etype, stateKey, field string) string {
	ev, ok := r.StateEvent(etype, stateKey)
	if !ok {
		return ""
	}
	s, _ := ev.Content[field].(string)
	return s
}

// PublicSummary projects the well-known state event types into a
// PublicRoom. The member count is the number of resident m.room.member
// entries with membership "join".
func (r *Room) PublicSummary() PublicRoom {
	summary := PublicRoom{
		RoomID:         r.ID,
		CanonicalAlias: r.stateContentString("m.room.canonical_alias", "", "alias"),
		Name:           r.stateContentString("m.room.name", "", "name"),
		Topic:          r.stateContentString("m.room.topic", "", "topic"),
		AvatarURL:      r.stateContentString("m.room.avatar", "", "url"),
		WorldReadable:  r.stateContentString("m.room.history_visibility", "", "history_visibility") == "world_readable",
		GuestCanJoin:   r.stateContentString("m.room.guest_access", "", "guest_access") == "can_join",
	}
	// m.room.aliases is keyed by the server that owns the aliases, so
	// collect across every state key.
	for _, ev := range r.State["m.room.aliases"] {
		aliases, _ := ev.Content["aliases"].([]interface{})
		for _, a := range aliases {
			if alias, ok := a.(string); ok {
				summary.Aliases = append(summary.Aliases, alias)
			}
		}
	}
	for _, ev := range r.State["m.room.member"] {
		if membership, _ := ev.Content["membership"].(string); membership == "join" {
			summary.NumJoinedMembers++
		}
	}
	return summary
}
