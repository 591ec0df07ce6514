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

// Package mntner resolves maintainer references into maintainers with fully
// expanded credential sets. A maintainer protected by other maintainers
// inherits their credentials; the traversal is cycle-checked and depth
// bounded so that misconfigured registry data surfaces as an error instead
// of looping or silently succeeding.
package mntner

import (
	"context"
	"errors"
	"strings"

	"github.com/openirr/irrd/pkg/private/serrors"
	"github.com/openirr/irrd/pkg/rpsl"
)

var (
	// ErrCyclicAuthorization indicates a maintainer protection chain that
	// loops back on itself through a different maintainer. A maintainer can
	// never, even transitively, be sufficient to authorize itself.
	ErrCyclicAuthorization = errors.New("cyclic maintainer authorization")
	// ErrUnresolvableMaintainer indicates a mnt-by reference to a
	// maintainer that does not exist in the registry.
	ErrUnresolvableMaintainer = errors.New("unresolvable maintainer")
	// ErrChainTooDeep indicates a protection chain exceeding the
	// configured ceiling.
	ErrChainTooDeep = errors.New("maintainer chain too deep")
)

// DefaultMaxDepth bounds maintainer protection chains. Deep chains are a
// sign of misconfiguration, not of legitimate setups.
const DefaultMaxDepth = 5

// DB abstracts read access to stored maintainer objects. A nil maintainer
// with a nil error means the maintainer does not exist.
type DB interface {
	Mntner(ctx context.Context, name string) (*rpsl.Mntner, error)
}

// Resolver resolves maintainer references against a backing store. The zero
// value with a DB is usable; MaxDepth falls back to DefaultMaxDepth.
type Resolver struct {
	DB       DB
	MaxDepth int
}

// Resolve returns the named maintainer with its credential set fully
// expanded: its own credentials first, followed by the credentials of the
// maintainers protecting it, transitively and deduplicated. A maintainer
// listing itself in mnt-by is the common self-maintained case and adds
// nothing; a cycle through a different maintainer yields
// ErrCyclicAuthorization.
func (r *Resolver) Resolve(ctx context.Context, name string) (*rpsl.Mntner, error) {
	return r.resolve(ctx, strings.ToUpper(name), map[string]bool{}, 0)
}

func (r *Resolver) resolve(
	ctx context.Context,
	name string,
	path map[string]bool,
	depth int,
) (*rpsl.Mntner, error) {

	if max := r.maxDepth(); depth > max {
		return nil, serrors.Join(ErrChainTooDeep, nil, "mntner", name, "max_depth", max)
	}
	m, err := r.DB.Mntner(ctx, name)
	if err != nil {
		return nil, serrors.Wrap("fetching maintainer", err, "mntner", name)
	}
	if m == nil {
		return nil, serrors.Join(ErrUnresolvableMaintainer, nil, "mntner", name)
	}

	resolved := &rpsl.Mntner{
		Name:  m.Name,
		MntBy: m.MntBy,
		Auth:  append([]rpsl.Credential(nil), m.Auth...),
	}
	path[name] = true
	defer delete(path, name)

	seen := make(map[string]bool, len(resolved.Auth))
	for _, c := range resolved.Auth {
		seen[c.String()] = true
	}
	for _, ref := range m.MntBy {
		ref = strings.ToUpper(ref)
		if ref == name {
			continue
		}
		if path[ref] {
			return nil, serrors.Join(ErrCyclicAuthorization, nil,
				"mntner", name, "via", ref)
		}
		protector, err := r.resolve(ctx, ref, path, depth+1)
		if err != nil {
			return nil, err
		}
		for _, c := range protector.Auth {
			if !seen[c.String()] {
				seen[c.String()] = true
				resolved.Auth = append(resolved.Auth, c)
			}
		}
	}
	return resolved, nil
}

// ExpandChain resolves every referenced maintainer, preserving order and
// dropping duplicate names. Any dangling reference is a data fault and
// yields ErrUnresolvableMaintainer; an object whose maintainers cannot all
// be resolved must never be silently authorized against the remainder.
func (r *Resolver) ExpandChain(ctx context.Context, names []string) ([]*rpsl.Mntner, error) {
	var set []*rpsl.Mntner
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.ToUpper(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		m, err := r.Resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		set = append(set, m)
	}
	return set, nil
}

func (r *Resolver) maxDepth() int {
	if r.MaxDepth > 0 {
		return r.MaxDepth
	}
	return DefaultMaxDepth
}
