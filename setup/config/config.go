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

// Package config holds the cache configuration, loaded from YAML.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the top-level configuration for a state cache instance.
type Config struct {
	// Database options for the snapshot store. An empty connection
	// string selects the in-memory store.
	Database DatabaseOptions `yaml:"database"`

	// Logging configuration, a hook per output.
	Logging []LogrusHook `yaml:"logging"`

	// Metrics configuration.
	Metrics Metrics `yaml:"metrics"`
}

// Defaults sets sane defaults for a single-process client.
func (c *Config) Defaults() {
	c.Database.Defaults(10)
	c.Logging = []LogrusHook{{Type: "std", Level: "info"}}
	c.Metrics.Enabled = false
}

// Verify accumulates configuration problems in configErrs.
func (c *Config) Verify(configErrs *ConfigErrors) {
	c.Database.Verify(configErrs)
	for _, hook := range c.Logging {
		if hook.Type != "std" && hook.Type != "file" {
			configErrs.Add(fmt.Sprintf("unrecognised logging hook type %q", hook.Type))
		}
	}
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	c.Defaults()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	var configErrs ConfigErrors
	c.Verify(&configErrs)
	if len(configErrs) > 0 {
		return nil, configErrs
	}
	return &c, nil
}

// DataSource is a database connection string, file:filename.db for
// SQLite or empty for the in-memory store.
type DataSource string

// IsSQLite reports whether the connection string names a SQLite file.
func (s DataSource) IsSQLite() bool {
	return strings.HasPrefix(string(s), "file:")
}

// IsMemory reports whether the in-memory store is selected.
func (s DataSource) IsMemory() bool {
	return s == ""
}

// DatabaseOptions configures the snapshot store database.
type DatabaseOptions struct {
	// The connection string, file:filename.db or empty for in-memory.
	ConnectionString DataSource `yaml:"connection_string"`
	// Maximum open connections to the DB (0 = use default, negative means unlimited)
	MaxOpenConnections int `yaml:"max_open_conns"`
	// Maximum idle connections to the DB (0 = use default, negative means unlimited)
	MaxIdleConnections int `yaml:"max_idle_conns"`
	// maximum amount of time (in seconds) a connection may be reused (<= 0 means unlimited)
	ConnMaxLifetimeSeconds int `yaml:"conn_max_lifetime"`
}

func (c *DatabaseOptions) Defaults(conns int) {
	c.MaxOpenConnections = conns
	c.MaxIdleConnections = 2
	c.ConnMaxLifetimeSeconds = -1
}

func (c *DatabaseOptions) Verify(configErrs *ConfigErrors) {
	if !c.ConnectionString.IsMemory() && !c.ConnectionString.IsSQLite() {
		configErrs.Add(fmt.Sprintf("invalid database connection string %q", c.ConnectionString))
	}
}

// MaxIdleConns returns maximum idle connections to the DB.
func (c DatabaseOptions) MaxIdleConns() int {
	return c.MaxIdleConnections
}

// MaxOpenConns returns maximum open connections to the DB.
func (c DatabaseOptions) MaxOpenConns() int {
	return c.MaxOpenConnections
}

// ConnMaxLifetime returns maximum amount of time a connection may be reused.
func (c DatabaseOptions) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeSeconds) * time.Second
}

// LogrusHook represents a single logrus hook. At this point, only
// "std" and "file" types are supported.
type LogrusHook struct {
	// The type of hook, currently only "std" and "file".
	Type string `yaml:"type"`
	// The level of the logs to produce.
	Level string `yaml:"level"`
	// The parameters for this hook, e.g. path for the "file" type.
	Params map[string]interface{} `yaml:"params"`
}

// Metrics configures optional Prometheus instrumentation.
type Metrics struct {
	Enabled bool `yaml:"enabled"`
}

// ConfigErrors stores the human-readable configuration problems found
// during Verify.
type ConfigErrors []string

// Add appends an error to the list of errors in this ConfigErrors.
func (errs *ConfigErrors) Add(str string) {
	*errs = append(*errs, str)
}

// Error returns the errors as a newline-separated list.
func (errs ConfigErrors) Error() string {
	if len(errs) == 1 {
		return errs[0]
	}
	return fmt.Sprintf("%s (and %d other problems)", errs[0], len(errs)-1)
}
