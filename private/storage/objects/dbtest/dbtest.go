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

// Package dbtest exercises the storage.DB contract. Every backend runs the
// same suite.
package dbtest

import (
	"context"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openirr/irrd/pkg/rpsl"
	"github.com/openirr/irrd/private/storage"
)

// Run exercises the storage.DB contract against a fresh backend per
// subtest.
func Run(t *testing.T, newDB func(t *testing.T) storage.DB) {
	tests := map[string]func(*testing.T, storage.DB){
		"insert and get":              testInsertGet,
		"missing object":              testMissing,
		"mntner round trip":           testMntner,
		"route entries":               testRouteEntries,
		"delete":                      testDelete,
		"reject empty mnt-by":         testRejectInvalid,
		"key lookup case-insensitive": testKeyCase,
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			db := newDB(t)
			defer db.Close()
			test(t, db)
		})
	}
}

func testInsertGet(t *testing.T, db storage.DB) {
	ctx := context.Background()
	o := rpsl.NewRouteObject(netip.MustParsePrefix("10.1.0.0/16"), "AS65001")
	o.MntBy = []string{"EXAMPLE-MNT"}
	o.Attrs = []rpsl.Attribute{{Name: "route", Value: "10.1.0.0/16"}}
	o.Body = []byte("route: 10.1.0.0/16\n")
	require.NoError(t, db.InsertObject(ctx, o))

	got, err := db.Object(ctx, rpsl.ClassRoute, o.Key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, o.Key, got.Key)
	assert.Equal(t, o.MntBy, got.MntBy)
	assert.Equal(t, o.Prefix, got.Prefix)
	assert.Equal(t, o.Origin, got.Origin)
	assert.Equal(t, o.Body, got.Body)
}

func testMissing(t *testing.T, db storage.DB) {
	got, err := db.Object(context.Background(), rpsl.ClassRoute, "NO-SUCH-KEY")
	require.NoError(t, err)
	assert.Nil(t, got)

	m, err := db.Mntner(context.Background(), "NO-SUCH-MNT")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func testMntner(t *testing.T, db storage.DB) {
	ctx := context.Background()
	o := rpsl.NewObject(rpsl.ClassMntner, "EXAMPLE-MNT")
	o.MntBy = []string{"EXAMPLE-MNT"}
	o.Attrs = []rpsl.Attribute{
		{Name: "mntner", Value: "EXAMPLE-MNT"},
		{Name: "auth", Value: "MD5-PW $1$fgW84t9F$5BEwwzLCKulTMxahHT1be."},
		{Name: "auth", Value: "PGPKEY-80F238C6"},
	}
	require.NoError(t, db.InsertObject(ctx, o))

	m, err := db.Mntner(ctx, "example-mnt")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "EXAMPLE-MNT", m.Name)
	require.Len(t, m.Auth, 2)
	assert.Equal(t, rpsl.CredentialPasswordHash, m.Auth[0].Type())
	assert.Equal(t, rpsl.CredentialPGPKey, m.Auth[1].Type())
}

func testRouteEntries(t *testing.T, db storage.DB) {
	ctx := context.Background()
	for _, route := range []struct{ prefix, origin string }{
		{"10.0.0.0/8", "AS65000"},
		{"10.1.0.0/16", "AS65001"},
		{"2001:db8::/32", "AS65002"},
	} {
		o := rpsl.NewRouteObject(netip.MustParsePrefix(route.prefix), route.origin)
		o.MntBy = []string{"EXAMPLE-MNT"}
		require.NoError(t, db.InsertObject(ctx, o))
	}
	mnt := rpsl.NewObject(rpsl.ClassMntner, "EXAMPLE-MNT")
	mnt.MntBy = []string{"EXAMPLE-MNT"}
	require.NoError(t, db.InsertObject(ctx, mnt))

	entries, err := db.RouteEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "mntner objects must not appear")
}

func testDelete(t *testing.T, db storage.DB) {
	ctx := context.Background()
	o := rpsl.NewRouteObject(netip.MustParsePrefix("10.0.0.0/8"), "AS65000")
	o.MntBy = []string{"EXAMPLE-MNT"}
	require.NoError(t, db.InsertObject(ctx, o))
	require.NoError(t, db.DeleteObject(ctx, rpsl.ClassRoute, o.Key))

	got, err := db.Object(ctx, rpsl.ClassRoute, o.Key)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is a no-op.
	assert.NoError(t, db.DeleteObject(ctx, rpsl.ClassRoute, o.Key))
}

func testRejectInvalid(t *testing.T, db storage.DB) {
	o := rpsl.NewObject(rpsl.ClassInetnum, "192.0.2.0 - 192.0.2.255")
	assert.Error(t, db.InsertObject(context.Background(), o))
}

func testKeyCase(t *testing.T, db storage.DB) {
	ctx := context.Background()
	o := rpsl.NewObject(rpsl.ClassMntner, "Example-MNT")
	o.MntBy = []string{"EXAMPLE-MNT"}
	require.NoError(t, db.InsertObject(ctx, o))

	got, err := db.Object(ctx, rpsl.ClassMntner, "example-mnt")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
