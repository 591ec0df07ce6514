// Copyright 2024 The OpenIRR Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package db provides the sqlite plumbing shared by the storage backends.
package db

import (
	"context"
	"database/sql"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/openirr/irrd/pkg/private/serrors"
)

// Reader is the read-only subset of *sql.DB.
type Reader interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Sqlite holds a write pool limited to one connection, to avoid lock
// contention, and a wider read pool. WAL mode lets readers proceed while a
// write is in flight.
type Sqlite struct {
	// Full can perform any operation, including writes and transactions.
	Full *sql.DB
	// ReadOnly must only be used for reads.
	ReadOnly Reader
}

// New opens a sqlite database at path with split read/write pools.
func New(path string, maxOpenReadConns, maxIdleReadConns int) (*Sqlite, error) {
	if strings.Contains(path, ":memory:") {
		// Ambiguous with shared cache across two pools; a named memory
		// database (file:name?mode=memory) behaves predictably.
		return nil, serrors.New("use an explicitly named memory database")
	}
	trimmed, hadScheme := strings.CutPrefix(path, "file:")

	params := make(url.Values)
	// Start transactions as write transactions up front, so a lock wait
	// respects busy_timeout instead of failing with SQLITE_BUSY on the
	// in-flight upgrade.
	params.Add("_txlock", "immediate")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "busy_timeout(1000)")
	params.Add("_pragma", "synchronous(NORMAL)")
	params.Add("_pragma", "foreign_keys(1)")
	if strings.Contains(path, "mode=memory") {
		params.Add("cache", "shared")
	}

	connURL := "file:" + trimmed
	if hadScheme {
		connURL = path
	}
	if strings.Contains(connURL, "?") {
		connURL += "&" + params.Encode()
	} else {
		connURL += "?" + params.Encode()
	}

	write, err := sql.Open("sqlite", connURL)
	if err != nil {
		return nil, serrors.Wrap("opening write database", err)
	}
	write.SetMaxOpenConns(1)

	read, err := sql.Open("sqlite", connURL)
	if err != nil {
		write.Close()
		return nil, serrors.Wrap("opening read database", err)
	}
	if maxOpenReadConns == 0 {
		maxOpenReadConns = max(4, runtime.NumCPU())
	}
	read.SetMaxOpenConns(maxOpenReadConns)
	if maxIdleReadConns != 0 {
		read.SetMaxIdleConns(maxIdleReadConns)
	}

	return &Sqlite{Full: write, ReadOnly: read}, nil
}

// Setup applies the schema on a fresh database and verifies the schema
// version otherwise, using PRAGMA user_version.
func (db *Sqlite) Setup(schema string, schemaVersion int) error {
	var existing int
	if err := db.Full.QueryRow("PRAGMA user_version;").Scan(&existing); err != nil {
		return serrors.Wrap("checking schema version", err)
	}
	switch {
	case existing == 0:
		if _, err := db.Full.Exec(schema); err != nil {
			return serrors.Wrap("applying schema", err)
		}
		if _, err := db.Full.Exec(
			"PRAGMA user_version = " + strconv.Itoa(schemaVersion)); err != nil {
			return serrors.Wrap("writing schema version", err)
		}
		return nil
	case existing != schemaVersion:
		return serrors.New("schema version mismatch",
			"expected", schemaVersion, "have", existing)
	default:
		return nil
	}
}

// Close closes both pools.
func (db *Sqlite) Close() error {
	var errs serrors.List
	if r, ok := db.ReadOnly.(*sql.DB); ok {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := db.Full.Close(); err != nil {
		errs = append(errs, err)
	}
	return errs.ToError()
}
