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

package sqlutil

import (
	"database/sql"
	"net/url"
	"strings"

	// Imported for the side effect of registering the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mx-go/statecache/setup/config"
)

// Open opens the SQLite database named by the configured file: URI and
// applies the configured connection limits.
func Open(dbProperties *config.DatabaseOptions) (*sql.DB, error) {
	if !dbProperties.ConnectionString.IsSQLite() {
		return nil, errors.Errorf("invalid database connection string %q", dbProperties.ConnectionString)
	}
	dsn, err := ParseFileURI(dbProperties.ConnectionString)
	if err != nil {
		return nil, errors.Wrap(err, "ParseFileURI")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sql.Open")
	}
	logrus.WithFields(logrus.Fields{
		"max_open_conns":    dbProperties.MaxOpenConns(),
		"max_idle_conns":    dbProperties.MaxIdleConns(),
		"conn_max_lifetime": dbProperties.ConnMaxLifetime(),
	}).Debug("Setting DB connection limits")
	// SQLite is a single-writer engine; more than one open connection
	// just invites "database is locked" errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(dbProperties.MaxIdleConns())
	db.SetConnMaxLifetime(dbProperties.ConnMaxLifetime())
	return db, nil
}

// ParseFileURI returns the filesystem path encoded in a file: data
// source, tolerating both file:path and file:///path forms.
func ParseFileURI(dataSource config.DataSource) (string, error) {
	uri, err := url.Parse(string(dataSource))
	if err != nil {
		return "", err
	}
	var dsn string
	switch {
	case uri.Opaque != "":
		dsn = uri.Opaque
	case uri.Path != "":
		dsn = uri.Path
	default:
		dsn = strings.TrimPrefix(string(dataSource), "file:")
	}
	return dsn, nil
}
