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

package authz_test

import (
	"bytes"
	"context"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/openpgp"

	"github.com/openirr/irrd/pkg/rpsl"
	"github.com/openirr/irrd/private/authz"
	"github.com/openirr/irrd/private/credential"
	"github.com/openirr/irrd/private/hierarchy"
	"github.com/openirr/irrd/private/mntner"
	"github.com/openirr/irrd/private/storage/objects/memory"
)

// md5Hash is the MD5-PW hash of "s3cret".
const (
	md5Hash  = "$1$fgW84t9F$5BEwwzLCKulTMxahHT1be."
	password = "s3cret"
)

type env struct {
	store    *memory.Store
	index    *hierarchy.Index
	keystore credential.StaticKeystore
	auth     *authz.Authorizer
}

func newEnv(t *testing.T, policy authz.Policy) *env {
	t.Helper()
	e := &env{
		store:    memory.New(),
		index:    hierarchy.New(),
		keystore: credential.StaticKeystore{},
	}
	e.auth = authz.NewAuthorizer(
		e.store,
		e.index,
		&mntner.Resolver{DB: e.store},
		credential.NewSuite(e.keystore),
		policy,
	)
	return e
}

// addMntner stores a maintainer object with the given auth attribute values
// and protecting maintainers.
func (e *env) addMntner(t *testing.T, name string, auths []string, mntBy ...string) {
	t.Helper()
	o := rpsl.NewObject(rpsl.ClassMntner, name)
	o.MntBy = append([]string{name}, mntBy...)
	o.Attrs = []rpsl.Attribute{{Name: "mntner", Value: name}}
	for _, a := range auths {
		o.Attrs = append(o.Attrs, rpsl.Attribute{Name: "auth", Value: a})
	}
	require.NoError(t, e.store.InsertObject(context.Background(), o))
}

// addRoute stores a route object and registers its prefix in the hierarchy.
func (e *env) addRoute(t *testing.T, prefix, origin string, mntBy ...string) *rpsl.Object {
	t.Helper()
	o := rpsl.NewRouteObject(netip.MustParsePrefix(prefix), origin)
	o.MntBy = mntBy
	require.NoError(t, e.store.InsertObject(context.Background(), o))
	require.NoError(t, e.index.Insert(hierarchy.Entry{Prefix: o.Prefix, Key: o.Key}))
	return o
}

func route(prefix, origin string, mntBy ...string) *rpsl.Object {
	o := rpsl.NewRouteObject(netip.MustParsePrefix(prefix), origin)
	o.MntBy = mntBy
	return o
}

func TestAuthorizeCreatePassword(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "EXAMPLE-MNT", []string{"MD5-PW " + md5Hash})
	target := route("192.0.2.0/24", "AS65001", "EXAMPLE-MNT")

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Allowed, d.Outcome)
	assert.Equal(t, "EXAMPLE-MNT", d.MatchedMntner)
	require.Len(t, d.Requirements, 1)
	assert.Equal(t, authz.RequirementTarget, d.Requirements[0].Kind)
	assert.True(t, d.Requirements[0].Satisfied)

	d, err = e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof("not-it")},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Denied, d.Outcome)
	assert.Empty(t, d.MatchedMntner)
	require.Len(t, d.Reasons, 1)
	assert.Equal(t, authz.CodeMntnerNoMatch, d.Reasons[0].Code)
	assert.Equal(t, "no proof matched mntner EXAMPLE-MNT", d.Reasons[0].Detail)
}

func TestAuthorizeEmptyMntBy(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	target := rpsl.NewObject(rpsl.ClassInetnum, "192.0.2.0 - 192.0.2.255")

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Denied, d.Outcome)
	require.Len(t, d.Reasons, 1)
	assert.Equal(t, authz.CodeEmptyMntBy, d.Reasons[0].Code)
}

func TestAuthorizeOrAcrossMntners(t *testing.T) {
	// Any proof matching any credential of any referenced maintainer
	// suffices.
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "FIRST-MNT", []string{"PGPKEY-00000000"})
	e.addMntner(t, "SECOND-MNT", []string{"MD5-PW " + md5Hash})
	target := route("192.0.2.0/24", "AS65001", "FIRST-MNT", "SECOND-MNT")

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Allowed, d.Outcome)
	assert.Equal(t, "SECOND-MNT", d.MatchedMntner)
}

func TestAuthorizeInheritedCredentials(t *testing.T) {
	// A credential-less maintainer protected by another maintainer accepts
	// the protector's credentials.
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "PARENT-MNT", []string{"MD5-PW " + md5Hash})
	e.addMntner(t, "CHILD-MNT", nil, "PARENT-MNT")
	target := route("192.0.2.0/24", "AS65001", "CHILD-MNT")

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Allowed, d.Outcome)
	assert.Equal(t, "CHILD-MNT", d.MatchedMntner)
}

func TestAuthorizeCredentiallessNeverVacuouslyAllowed(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "EMPTY-MNT", nil)
	target := route("192.0.2.0/24", "AS65001", "EMPTY-MNT")

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Denied, d.Outcome)
}

func TestAuthorizeCoveringChain(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "MNT-A", []string{"MD5-PW " + md5Hash})
	otherHash, err := credential.GenerateMD5("other-pw")
	require.NoError(t, err)
	e.addMntner(t, "MNT-B", []string{"MD5-PW " + otherHash})
	thirdHash, err := credential.GenerateMD5("third-pw")
	require.NoError(t, err)
	e.addMntner(t, "MNT-C", []string{"MD5-PW " + thirdHash})

	e.addRoute(t, "10.0.0.0/8", "AS65000", "MNT-A")
	e.addRoute(t, "10.1.0.0/16", "AS65001", "MNT-B")
	target := route("10.1.2.0/24", "AS65002", "MNT-C")

	// The nearest covering block is 10.1.0.0/16: MNT-B must approve, not
	// MNT-A.
	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs: []rpsl.Proof{
			rpsl.PasswordProof("third-pw"),
			rpsl.PasswordProof("other-pw"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Allowed, d.Outcome)
	require.Len(t, d.Requirements, 2)
	assert.Equal(t, authz.RequirementCovering, d.Requirements[1].Kind)
	assert.Equal(t, "MNT-B", d.Requirements[1].MatchedMntner)

	// MNT-A's approval is not good enough; it owns a less specific block
	// than the nearest one.
	d, err = e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs: []rpsl.Proof{
			rpsl.PasswordProof("third-pw"),
			rpsl.PasswordProof(password),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Denied, d.Outcome)
	require.NotEmpty(t, d.Reasons)
	assert.Equal(t, authz.CodeCoveringRequiresAuth, d.Reasons[0].Code)
	assert.Contains(t, d.Reasons[0].Detail, "10.1.0.0/16")
}

func TestAuthorizeCoveringChainSkipsExactPrefix(t *testing.T) {
	// Creating a second route for an already registered prefix must not
	// require approval from that prefix's own entry, only from a strictly
	// less specific one.
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "MNT-A", []string{"MD5-PW " + md5Hash})
	otherHash, err := credential.GenerateMD5("other-pw")
	require.NoError(t, err)
	e.addMntner(t, "MNT-B", []string{"MD5-PW " + otherHash})

	e.addRoute(t, "10.0.0.0/8", "AS65000", "MNT-A")
	e.addRoute(t, "10.1.0.0/16", "AS65001", "MNT-B")
	target := route("10.1.0.0/16", "AS65099", "MNT-B")

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs: []rpsl.Proof{
			rpsl.PasswordProof("other-pw"),
			rpsl.PasswordProof(password),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Allowed, d.Outcome)
	require.Len(t, d.Requirements, 2)
	assert.Equal(t, authz.RequirementCovering, d.Requirements[1].Kind)
	assert.Equal(t, []string{"MNT-A"}, d.Requirements[1].Mntners)
}

func TestAuthorizeCoveringChainIPv6(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "MNT-A", []string{"MD5-PW " + md5Hash})
	e.addMntner(t, "MNT-C", []string{"MD5-PW " + md5Hash})

	e.addRoute(t, "2001:db8::/32", "AS65000", "MNT-A")
	target := route("2001:db8:1::/48", "AS65002", "MNT-C")

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Allowed, d.Outcome)
	require.Len(t, d.Requirements, 2)
	assert.Equal(t, authz.RequirementCovering, d.Requirements[1].Kind)
}

func TestAuthorizeNoCoveringBlock(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "EXAMPLE-MNT", []string{"MD5-PW " + md5Hash})
	target := route("198.51.100.0/24", "AS65001", "EXAMPLE-MNT")

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Allowed, d.Outcome)
	assert.Len(t, d.Requirements, 1)
}

func TestAuthorizeModifyStrictExisting(t *testing.T) {
	// Rewriting mnt-by to a maintainer the submitter controls must not be
	// enough: the stored object's maintainers still guard the change.
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "OLD-MNT", []string{"MD5-PW " + md5Hash})
	newHash, err := credential.GenerateMD5("new-pw")
	require.NoError(t, err)
	e.addMntner(t, "NEW-MNT", []string{"MD5-PW " + newHash})

	existing := route("192.0.2.0/24", "AS65001", "OLD-MNT")
	target := route("192.0.2.0/24", "AS65001", "NEW-MNT")

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Modify,
		Target:    target,
		Existing:  existing,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof("new-pw")},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Denied, d.Outcome)
	require.Len(t, d.Reasons, 2)
	assert.Equal(t, authz.CodeExistingRequiresAuth, d.Reasons[0].Code)
	assert.Equal(t, authz.CodeMntnerNoMatch, d.Reasons[1].Code)
	assert.Equal(t, "no proof matched mntner OLD-MNT", d.Reasons[1].Detail)

	// With proofs for both sets the handover is authorized.
	d, err = e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Modify,
		Target:    target,
		Existing:  existing,
		Proofs: []rpsl.Proof{
			rpsl.PasswordProof("new-pw"),
			rpsl.PasswordProof(password),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Allowed, d.Outcome)
	assert.Equal(t, "NEW-MNT", d.MatchedMntner)
}

func TestAuthorizeModifyLenientExisting(t *testing.T) {
	policy := authz.DefaultPolicy()
	policy.StrictExisting = false
	e := newEnv(t, policy)
	e.addMntner(t, "OLD-MNT", []string{"PGPKEY-00000000"})
	newHash, err := credential.GenerateMD5("new-pw")
	require.NoError(t, err)
	e.addMntner(t, "NEW-MNT", []string{"MD5-PW " + newHash})

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Modify,
		Target:    route("192.0.2.0/24", "AS65001", "NEW-MNT"),
		Existing:  route("192.0.2.0/24", "AS65001", "OLD-MNT"),
		Proofs:    []rpsl.Proof{rpsl.PasswordProof("new-pw")},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Allowed, d.Outcome)
	assert.Len(t, d.Requirements, 1)
}

func TestAuthorizeDelete(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "EXAMPLE-MNT", []string{"MD5-PW " + md5Hash})
	existing := route("192.0.2.0/24", "AS65001", "EXAMPLE-MNT")

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Delete,
		Target:    existing,
		Existing:  existing,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Allowed, d.Outcome)
	// No covering requirement on delete.
	assert.Len(t, d.Requirements, 2)
}

func TestAuthorizePGPSignature(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	signer, err := openpgp.NewEntity("Test Operator", "", "noc@example.net", nil)
	require.NoError(t, err)
	stranger, err := openpgp.NewEntity("Stranger", "", "other@example.net", nil)
	require.NoError(t, err)
	long := signer.PrimaryKey.KeyIdString()
	keyID := long[len(long)-8:]
	e.keystore[keyID] = openpgp.EntityList{signer}
	e.addMntner(t, "EXAMPLE-MNT", []string{"PGPKEY-" + keyID})

	target := route("192.0.2.0/24", "AS65001", "EXAMPLE-MNT")
	target.Body = []byte("route: 192.0.2.0/24\norigin: AS65001\nmnt-by: EXAMPLE-MNT\n")

	sign := func(entity *openpgp.Entity) []byte {
		var buf bytes.Buffer
		require.NoError(t,
			openpgp.ArmoredDetachSign(&buf, entity, bytes.NewReader(target.Body), nil))
		return buf.Bytes()
	}

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.SignatureProof(sign(signer))},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Allowed, d.Outcome)
	assert.Equal(t, "EXAMPLE-MNT", d.MatchedMntner)

	d, err = e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.SignatureProof(sign(stranger))},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Denied, d.Outcome)
}

func TestAuthorizeCyclicChain(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "LOOP-A", []string{"MD5-PW " + md5Hash}, "LOOP-B")
	e.addMntner(t, "LOOP-B", nil, "LOOP-A")
	target := route("192.0.2.0/24", "AS65001", "LOOP-A")

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	})
	require.ErrorIs(t, err, authz.ErrCyclicAuthorization)
	assert.Equal(t, authz.Denied, d.Outcome)
}

func TestAuthorizeUnresolvableMntner(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	target := route("192.0.2.0/24", "AS65001", "NO-SUCH-MNT")

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	})
	require.ErrorIs(t, err, authz.ErrUnresolvableMaintainer)
	assert.Equal(t, authz.Denied, d.Outcome)
}

func TestAuthorizeChainTooDeep(t *testing.T) {
	policy := authz.DefaultPolicy()
	policy.MaxChainDepth = 2
	e := newEnv(t, policy)
	e.addMntner(t, "DEPTH-1", nil, "DEPTH-2")
	e.addMntner(t, "DEPTH-2", nil, "DEPTH-3")
	e.addMntner(t, "DEPTH-3", nil, "DEPTH-4")
	e.addMntner(t, "DEPTH-4", []string{"MD5-PW " + md5Hash})
	target := route("192.0.2.0/24", "AS65001", "DEPTH-1")

	_, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	})
	require.ErrorIs(t, err, authz.ErrChainTooDeep)
}

func TestAuthorizeUnknownStoredScheme(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "EXAMPLE-MNT", []string{"SHA512-PW deadbeef"})
	target := route("192.0.2.0/24", "AS65001", "EXAMPLE-MNT")

	_, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	})
	require.ErrorIs(t, err, authz.ErrUnknownCredentialScheme)
}

func TestAuthorizeMalformedProof(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "EXAMPLE-MNT", []string{"MD5-PW " + md5Hash})
	target := route("192.0.2.0/24", "AS65001", "EXAMPLE-MNT")

	_, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof("")},
	})
	require.ErrorIs(t, err, authz.ErrMalformedProof)
}

func TestAuthorizeAmbiguousCoveringPrefix(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "EXAMPLE-MNT", []string{"MD5-PW " + md5Hash})
	e.addRoute(t, "10.1.0.0/16", "AS65001", "EXAMPLE-MNT")
	// Second claimant for the same block.
	err := e.index.Insert(hierarchy.Entry{
		Prefix: netip.MustParsePrefix("10.1.0.0/16"),
		Key:    "10.1.0.0/16AS65099",
	})
	require.ErrorIs(t, err, hierarchy.ErrAmbiguousPrefixOwnership)

	target := route("10.1.2.0/24", "AS65002", "EXAMPLE-MNT")
	_, err = e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	})
	require.ErrorIs(t, err, authz.ErrAmbiguousPrefixOwnership)
}

func TestAuthorizeRequestShape(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "EXAMPLE-MNT", []string{"MD5-PW " + md5Hash})
	target := route("192.0.2.0/24", "AS65001", "EXAMPLE-MNT")

	tests := map[string]authz.Request{
		"no target":               {Operation: rpsl.Create},
		"create with existing":    {Operation: rpsl.Create, Target: target, Existing: target},
		"modify without existing": {Operation: rpsl.Modify, Target: target},
		"delete without existing": {Operation: rpsl.Delete, Target: target},
		"unknown operation":       {Operation: rpsl.Operation("merge"), Target: target},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := e.auth.Authorize(context.Background(), req)
			assert.Error(t, err)
			assert.Equal(t, authz.Denied, d.Outcome)
		})
	}
}

func TestAuthorizeIdempotent(t *testing.T) {
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "EXAMPLE-MNT", []string{"MD5-PW " + md5Hash})
	req := authz.Request{
		Operation: rpsl.Create,
		Target:    route("192.0.2.0/24", "AS65001", "EXAMPLE-MNT"),
		Proofs:    []rpsl.Proof{rpsl.PasswordProof(password)},
	}

	first, err := e.auth.Authorize(context.Background(), req)
	require.NoError(t, err)
	second, err := e.auth.Authorize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAuthorizeMonotonicInProofs(t *testing.T) {
	// Adding proofs can only turn a denial into an allow, never the
	// reverse.
	e := newEnv(t, authz.DefaultPolicy())
	e.addMntner(t, "EXAMPLE-MNT", []string{"MD5-PW " + md5Hash})
	target := route("192.0.2.0/24", "AS65001", "EXAMPLE-MNT")

	d, err := e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs:    []rpsl.Proof{rpsl.PasswordProof("not-it")},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Denied, d.Outcome)

	d, err = e.auth.Authorize(context.Background(), authz.Request{
		Operation: rpsl.Create,
		Target:    target,
		Proofs: []rpsl.Proof{
			rpsl.PasswordProof("not-it"),
			rpsl.PasswordProof(password),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, authz.Allowed, d.Outcome)
}
