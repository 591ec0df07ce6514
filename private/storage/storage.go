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

// Package storage defines the object store interface of the registry and
// its configuration. The authorization engine only ever reads; the write
// path exists for ingestion and for warming the prefix hierarchy at
// startup.
package storage

import (
	"context"
	"io"

	"github.com/openirr/irrd/pkg/private/serrors"
	"github.com/openirr/irrd/pkg/rpsl"
	"github.com/openirr/irrd/private/hierarchy"
)

// DB is the registry object store.
type DB interface {
	// Object returns the stored object for (class, key), or nil if it
	// does not exist.
	Object(ctx context.Context, class rpsl.Class, key string) (*rpsl.Object, error)
	// Mntner returns the named maintainer in resolved form, or nil if it
	// does not exist.
	Mntner(ctx context.Context, name string) (*rpsl.Mntner, error)
	// RouteEntries streams all route-class prefix entries, for warming
	// the hierarchy index.
	RouteEntries(ctx context.Context) ([]hierarchy.Entry, error)
	// InsertObject stores an object, rejecting objects that fail their
	// structural invariants.
	InsertObject(ctx context.Context, o *rpsl.Object) error
	// DeleteObject removes the object for (class, key). Deleting a
	// missing object is a no-op.
	DeleteObject(ctx context.Context, class rpsl.Class, key string) error

	io.Closer
}

// DBConfig is the configuration of a database backend.
type DBConfig struct {
	// Connection is the database path or DSN.
	Connection string `toml:"connection,omitempty"`
	// MaxOpenConns caps the read connection pool; 0 picks a default.
	MaxOpenConns int `toml:"max_open_conns,omitempty"`
	// MaxIdleConns caps the idle read connections; 0 keeps the driver
	// default.
	MaxIdleConns int `toml:"max_idle_conns,omitempty"`
}

// InitDefaults implements the config pattern; connection strings have no
// sensible default.
func (cfg *DBConfig) InitDefaults() {}

// Validate checks the config.
func (cfg *DBConfig) Validate() error {
	if cfg.Connection == "" {
		return serrors.New("db connection not set")
	}
	return nil
}
