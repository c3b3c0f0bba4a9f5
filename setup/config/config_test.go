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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var c Config
	c.Defaults()
	assert.True(t, c.Database.ConnectionString.IsMemory())
	assert.Equal(t, 10, c.Database.MaxOpenConns())
	require.Len(t, c.Logging, 1)
	assert.Equal(t, "std", c.Logging[0].Type)
	assert.False(t, c.Metrics.Enabled)

	var configErrs ConfigErrors
	c.Verify(&configErrs)
	assert.Empty(t, configErrs)
}

func TestVerifyRejectsBadValues(t *testing.T) {
	var c Config
	c.Defaults()
	c.Database.ConnectionString = "postgres://user@localhost/db"
	c.Logging = append(c.Logging, LogrusHook{Type: "syslog", Level: "info"})

	var configErrs ConfigErrors
	c.Verify(&configErrs)
	assert.Len(t, configErrs, 2)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statecache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  connection_string: file:statecache.db
  max_open_conns: 20
logging:
  - type: std
    level: warn
metrics:
  enabled: true
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.True(t, c.Database.ConnectionString.IsSQLite())
	assert.Equal(t, 20, c.Database.MaxOpenConns())
	assert.Equal(t, "warn", c.Logging[0].Level)
	assert.True(t, c.Metrics.Enabled)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statecache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  connection_string: mysql://nope
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
