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

// Package sqlite implements the object store on sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/netip"
	"strings"

	"github.com/openirr/irrd/pkg/private/serrors"
	"github.com/openirr/irrd/pkg/rpsl"
	"github.com/openirr/irrd/private/hierarchy"
	"github.com/openirr/irrd/private/storage/db"
)

// SchemaVersion is bumped on every incompatible schema change.
const SchemaVersion = 1

// Schema is the database layout. Objects of every class live in one table;
// route classes additionally fill the prefix and origin columns.
const Schema = `CREATE TABLE objects (
	class TEXT NOT NULL,
	key TEXT NOT NULL,
	mnt_by TEXT NOT NULL,
	attrs TEXT NOT NULL,
	prefix TEXT,
	origin TEXT,
	body BLOB,
	PRIMARY KEY (class, key)
);
CREATE INDEX idx_objects_prefix ON objects (prefix) WHERE prefix IS NOT NULL;`

// Backend implements storage.DB on sqlite.
type Backend struct {
	db *db.Sqlite
}

// New opens or creates the object database at path.
func New(path string, maxOpenConns, maxIdleConns int) (*Backend, error) {
	sdb, err := db.New(path, maxOpenConns, maxIdleConns)
	if err != nil {
		return nil, err
	}
	if err := sdb.Setup(Schema, SchemaVersion); err != nil {
		sdb.Close()
		return nil, err
	}
	return &Backend{db: sdb}, nil
}

// Object implements storage.DB.
func (b *Backend) Object(
	ctx context.Context,
	class rpsl.Class,
	key string,
) (*rpsl.Object, error) {

	row := b.db.ReadOnly.QueryRowContext(ctx,
		`SELECT class, key, mnt_by, attrs, prefix, origin, body
		 FROM objects WHERE class = ? AND key = ?`,
		string(class), strings.ToUpper(key),
	)
	o, err := scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

// Mntner implements storage.DB.
func (b *Backend) Mntner(ctx context.Context, name string) (*rpsl.Mntner, error) {
	o, err := b.Object(ctx, rpsl.ClassMntner, name)
	if err != nil || o == nil {
		return nil, err
	}
	return rpsl.MntnerFromObject(o)
}

// RouteEntries implements storage.DB.
func (b *Backend) RouteEntries(ctx context.Context) ([]hierarchy.Entry, error) {
	rows, err := b.db.ReadOnly.QueryContext(ctx,
		`SELECT key, prefix FROM objects WHERE prefix IS NOT NULL`)
	if err != nil {
		return nil, serrors.Wrap("querying route entries", err)
	}
	defer rows.Close()

	var entries []hierarchy.Entry
	for rows.Next() {
		var key, prefix string
		if err := rows.Scan(&key, &prefix); err != nil {
			return nil, serrors.Wrap("scanning route entry", err)
		}
		p, err := netip.ParsePrefix(prefix)
		if err != nil {
			return nil, serrors.Wrap("parsing stored prefix", err, "key", key)
		}
		entries = append(entries, hierarchy.Entry{Prefix: p, Key: key})
	}
	return entries, rows.Err()
}

// InsertObject implements storage.DB.
func (b *Backend) InsertObject(ctx context.Context, o *rpsl.Object) error {
	if err := o.Validate(); err != nil {
		return err
	}
	mntBy, err := json.Marshal(o.MntBy)
	if err != nil {
		return serrors.Wrap("encoding mnt-by", err)
	}
	attrs, err := json.Marshal(o.Attrs)
	if err != nil {
		return serrors.Wrap("encoding attributes", err)
	}
	var prefix, origin sql.NullString
	if o.Class.IsRoute() {
		prefix = sql.NullString{String: o.Prefix.String(), Valid: true}
		origin = sql.NullString{String: o.Origin, Valid: true}
	}
	_, err = b.db.Full.ExecContext(ctx,
		`INSERT OR REPLACE INTO objects (class, key, mnt_by, attrs, prefix, origin, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(o.Class), o.Key, string(mntBy), string(attrs), prefix, origin, o.Body,
	)
	if err != nil {
		return serrors.Wrap("inserting object", err, "object", o)
	}
	return nil
}

// DeleteObject implements storage.DB.
func (b *Backend) DeleteObject(ctx context.Context, class rpsl.Class, key string) error {
	_, err := b.db.Full.ExecContext(ctx,
		`DELETE FROM objects WHERE class = ? AND key = ?`,
		string(class), strings.ToUpper(key),
	)
	if err != nil {
		return serrors.Wrap("deleting object", err, "class", class, "key", key)
	}
	return nil
}

// Close implements storage.DB.
func (b *Backend) Close() error {
	return b.db.Close()
}

func scanObject(row *sql.Row) (*rpsl.Object, error) {
	var (
		class, key, mntBy, attrs string
		prefix, origin           sql.NullString
		body                     []byte
	)
	if err := row.Scan(&class, &key, &mntBy, &attrs, &prefix, &origin, &body); err != nil {
		return nil, err
	}
	o := &rpsl.Object{Class: rpsl.Class(class), Key: key, Body: body}
	if err := json.Unmarshal([]byte(mntBy), &o.MntBy); err != nil {
		return nil, serrors.Wrap("decoding mnt-by", err, "key", key)
	}
	if err := json.Unmarshal([]byte(attrs), &o.Attrs); err != nil {
		return nil, serrors.Wrap("decoding attributes", err, "key", key)
	}
	if prefix.Valid {
		p, err := netip.ParsePrefix(prefix.String)
		if err != nil {
			return nil, serrors.Wrap("parsing stored prefix", err, "key", key)
		}
		o.Prefix = p
	}
	if origin.Valid {
		o.Origin = origin.String
	}
	return o, nil
}
