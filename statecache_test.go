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

package statecache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mx-go/statecache/event"
	"github.com/mx-go/statecache/room"
	"github.com/mx-go/statecache/setup/config"
	"github.com/mx-go/statecache/storage/memory"
)

const testRoomID = "!roomid:example.org"

func newTestCache() *Cache {
	var cfg config.Config
	cfg.Defaults()
	return New(&cfg, memory.NewStorer())
}

func memberEvent(id, userID, membership string, ts int64) *event.Event {
	return &event.Event{
		ID:        id,
		RoomID:    testRoomID,
		Sender:    userID,
		Type:      "m.room.member",
		StateKey:  &userID,
		Timestamp: ts,
		Content:   map[string]interface{}{"membership": membership},
	}
}

func TestCacheApplyAndQuery(t *testing.T) {
	c := newTestCache()
	require.NoError(t, c.ApplyStateEvent(memberEvent("$join", "@alice:example.org", "join", 1)))

	ev, ok := c.StateEvent(testRoomID, "m.room.member", "@alice:example.org")
	require.True(t, ok)
	assert.Equal(t, "$join", ev.ID)

	membership, err := c.MembershipState(testRoomID, "@alice:example.org")
	require.NoError(t, err)
	assert.Equal(t, "join", membership)

	// Unknown rooms answer with the defined defaults, never a fault.
	_, ok = c.StateEvent("!unknown:example.org", "m.room.member", "@alice:example.org")
	assert.False(t, ok)
	membership, err = c.MembershipState("!unknown:example.org", "@alice:example.org")
	require.NoError(t, err)
	assert.Equal(t, room.MembershipLeave, membership)
	_, ok = c.PublicSummary("!unknown:example.org")
	assert.False(t, ok)
}

func TestCacheApplyEventsSkipsMalformed(t *testing.T) {
	c := newTestCache()
	malformed := memberEvent("", "@alice:example.org", "join", 1)
	good := memberEvent("$join", "@alice:example.org", "join", 2)
	require.NoError(t, c.ApplyEvents(malformed, good))

	membership, err := c.MembershipState(testRoomID, "@alice:example.org")
	require.NoError(t, err)
	assert.Equal(t, "join", membership)
}

func TestCacheRoutesRedactions(t *testing.T) {
	c := newTestCache()
	joined := memberEvent("$join", "@alice:example.org", "join", 1)
	joined.Content["displayname"] = "Alice"
	require.NoError(t, c.ApplyStateEvent(joined))

	require.NoError(t, c.ApplyStateEvent(&event.Event{
		ID:      "$redact",
		RoomID:  testRoomID,
		Sender:  "@mod:example.org",
		Type:    "m.room.redaction",
		Redacts: "$join",
		Content: map[string]interface{}{},
	}))

	ev, ok := c.StateEvent(testRoomID, "m.room.member", "@alice:example.org")
	require.True(t, ok)
	assert.NotContains(t, ev.Content, "displayname")
	assert.Equal(t, "join", ev.Content["membership"])
}

func TestCacheFlushAndRestore(t *testing.T) {
	ctx := context.Background()
	db := memory.NewStorer()
	var cfg config.Config
	cfg.Defaults()

	c := New(&cfg, db)
	require.NoError(t, c.ApplyStateEvent(memberEvent("$join", "@alice:example.org", "join", 1)))
	require.NoError(t, c.SaveNextBatch(ctx, "@alice:example.org", "s100_0_0"))
	require.NoError(t, c.Flush(ctx))

	// A fresh cache over the same store resumes where the old one left off.
	resumed := New(&cfg, db)
	token, err := resumed.NextBatch(ctx, "@alice:example.org")
	require.NoError(t, err)
	assert.Equal(t, "s100_0_0", token)

	require.NoError(t, resumed.Restore(ctx))
	membership, err := resumed.MembershipState(testRoomID, "@alice:example.org")
	require.NoError(t, err)
	assert.Equal(t, "join", membership)
}

func TestCacheConcurrentReadersAndWriter(t *testing.T) {
	c := newTestCache()
	require.NoError(t, c.ApplyStateEvent(memberEvent("$seed", "@alice:example.org", "join", 0)))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			userID := fmt.Sprintf("@user%d:example.org", i)
			if err := c.ApplyStateEvent(memberEvent(fmt.Sprintf("$m%d", i), userID, "join", int64(i))); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if _, err := c.MembershipState(testRoomID, "@alice:example.org"); err != nil {
					t.Error(err)
					return
				}
				c.PublicSummary(testRoomID)
			}
		}()
	}
	wg.Wait()

	summary, ok := c.PublicSummary(testRoomID)
	require.True(t, ok)
	assert.Equal(t, 201, summary.NumJoinedMembers)
}
