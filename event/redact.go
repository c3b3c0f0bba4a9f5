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
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// redactionKeptContentKeys lists, per event type, the content keys that
// survive redaction under the client/server API.
var redactionKeptContentKeys = map[string][]string{
	"m.room.member":             {"membership"},
	"m.room.create":             {"creator"},
	"m.room.join_rules":         {"join_rule"},
	"m.room.aliases":            {"aliases"},
	"m.room.history_visibility": {"history_visibility"},
	"m.room.power_levels": {
		"ban", "events", "events_default", "invite", "kick",
		"redact", "state_default", "users", "users_default",
	},
}

// RedactContent returns a copy of the content with every key removed
// except those the protocol preserves through redaction for the given
// event type. For types with no preserved keys the result is empty.
func RedactContent(etype string, content map[string]interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	kept := make(map[string]bool)
	for _, k := range redactionKeptContentKeys[etype] {
		kept[k] = true
	}
	gjson.ParseBytes(raw).ForEach(func(key, _ gjson.Result) bool {
		if !kept[key.Str] {
			// Escape dots so namespaced keys are treated as one path element.
			raw, err = sjson.DeleteBytes(raw, strings.ReplaceAll(key.Str, ".", `\.`))
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	redacted := map[string]interface{}{}
	if err := json.Unmarshal(raw, &redacted); err != nil {
		return nil, err
	}
	return redacted, nil
}
