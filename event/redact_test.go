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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRedactContent(t *testing.T) {
	tests := []struct {
		name    string
		etype   string
		content map[string]interface{}
		want    map[string]interface{}
	}{
		{
			name:  "member keeps membership only",
			etype: "m.room.member",
			content: map[string]interface{}{
				"membership":  "join",
				"displayname": "Alice",
				"avatar_url":  "mxc://example.org/a",
			},
			want: map[string]interface{}{"membership": "join"},
		},
		{
			name:    "message keeps nothing",
			etype:   "m.room.message",
			content: map[string]interface{}{"msgtype": "m.text", "body": "secret"},
			want:    map[string]interface{}{},
		},
		{
			name:  "namespaced keys are removed whole",
			etype: "m.room.member",
			content: map[string]interface{}{
				"membership":         "join",
				"io.example.feature": true,
			},
			want: map[string]interface{}{"membership": "join"},
		},
		{
			name:  "join rules keep join_rule",
			etype: "m.room.join_rules",
			content: map[string]interface{}{
				"join_rule": "public",
				"allow":     []interface{}{},
			},
			want: map[string]interface{}{"join_rule": "public"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RedactContent(tc.etype, tc.content)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("RedactContent mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
