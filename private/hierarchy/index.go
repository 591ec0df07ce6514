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

// Package hierarchy indexes registered route prefixes per address family and
// answers which registered blocks cover a queried prefix. The index is a
// binary trie with arena-indexed nodes; readers run concurrently, writers
// are serialized.
package hierarchy

import (
	"errors"
	"net/netip"
	"sort"
	"sync"

	"go4.org/netipx"

	"github.com/openirr/irrd/pkg/private/serrors"
)

// ErrAmbiguousPrefixOwnership indicates that more than one entry is
// registered for the same exact prefix. The index fails closed on such
// entries: a covering chain through an ambiguous node is unresolvable,
// because silently picking one owner would subvert the authorization
// guarantee.
var ErrAmbiguousPrefixOwnership = errors.New("ambiguous prefix ownership")

// Entry associates a registered prefix with the primary key of the owning
// route object. Entries are created and removed with the object, never
// mutated; a prefix change is a delete plus a create.
type Entry struct {
	Prefix netip.Prefix
	// Key is the primary key of the owning object.
	Key string
}

// node is a trie node. Children reference other nodes by arena index; 0
// means no child (index 0 is the root, which is never a child).
type node struct {
	children [2]int32
	// entries holds the entries registered at this exact prefix. More
	// than one entry marks the node ambiguous.
	entries []Entry
}

// trie is one per-family prefix tree over an arena of nodes. Interior nodes
// left behind by removals are kept; the arena only grows with the number of
// distinct prefixes ever registered.
type trie struct {
	nodes []node
}

func newTrie() trie {
	return trie{nodes: make([]node, 1)}
}

func (t *trie) alloc() int32 {
	t.nodes = append(t.nodes, node{})
	return int32(len(t.nodes) - 1)
}

// walk returns the arena index of the node for prefix, allocating missing
// nodes along the way if create is set, or -1 if the path does not exist.
func (t *trie) walk(prefix netip.Prefix, create bool) int32 {
	cur := int32(0)
	for i := 0; i < prefix.Bits(); i++ {
		b := bit(prefix.Addr(), i)
		next := t.nodes[cur].children[b]
		if next == 0 {
			if !create {
				return -1
			}
			next = t.alloc()
			t.nodes[cur].children[b] = next
		}
		cur = next
	}
	return cur
}

// Index is the address-family aware prefix hierarchy index.
//
// The zero value is not usable; use New. All methods are safe for concurrent
// use with single-writer/multi-reader semantics: a reader never observes a
// partially inserted or removed entry.
type Index struct {
	mu sync.RWMutex
	v4 trie
	v6 trie
	n  int
}

// New returns an empty index.
func New() *Index {
	return &Index{v4: newTrie(), v6: newTrie()}
}

// Len returns the number of registered entries.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.n
}

// Insert registers an entry. Inserting an identical (prefix, key) pair is a
// no-op. Inserting a second owner for an already occupied exact prefix
// registers the conflict and returns ErrAmbiguousPrefixOwnership; covering
// chains through that prefix fail until one owner is removed.
func (x *Index) Insert(e Entry) error {
	if !e.Prefix.IsValid() {
		return serrors.New("invalid prefix in entry", "key", e.Key)
	}
	e.Prefix = e.Prefix.Masked()

	x.mu.Lock()
	defer x.mu.Unlock()
	t := x.trieFor(e.Prefix.Addr())
	idx := t.walk(e.Prefix, true)
	for _, existing := range t.nodes[idx].entries {
		if existing.Key == e.Key {
			return nil
		}
	}
	t.nodes[idx].entries = append(t.nodes[idx].entries, e)
	x.n++
	if len(t.nodes[idx].entries) > 1 {
		return serrors.Join(ErrAmbiguousPrefixOwnership, nil,
			"prefix", e.Prefix, "key", e.Key)
	}
	return nil
}

// Remove unregisters the entry for (prefix, key). Removing an entry that is
// not registered is a no-op.
func (x *Index) Remove(prefix netip.Prefix, key string) {
	if !prefix.IsValid() {
		return
	}
	prefix = prefix.Masked()

	x.mu.Lock()
	defer x.mu.Unlock()
	t := x.trieFor(prefix.Addr())
	idx := t.walk(prefix, false)
	if idx < 0 {
		return
	}
	entries := t.nodes[idx].entries
	for i, e := range entries {
		if e.Key == key {
			t.nodes[idx].entries = append(entries[:i], entries[i+1:]...)
			x.n--
			return
		}
	}
}

// CoveringChain returns the registered entries whose prefix contains the
// queried prefix, non-strictly, ordered most specific first. An ambiguous
// node on the chain makes the whole chain unresolvable and yields
// ErrAmbiguousPrefixOwnership. Address families are never mixed: a v6 query
// only ever sees v6 entries.
func (x *Index) CoveringChain(prefix netip.Prefix) ([]Entry, error) {
	if !prefix.IsValid() {
		return nil, serrors.New("invalid prefix in query")
	}
	prefix = prefix.Masked()

	x.mu.RLock()
	defer x.mu.RUnlock()
	t := x.trieFor(prefix.Addr())

	var chain []Entry
	cur := int32(0)
	for i := 0; ; i++ {
		switch entries := t.nodes[cur].entries; len(entries) {
		case 0:
		case 1:
			chain = append(chain, entries[0])
		default:
			return nil, serrors.Join(ErrAmbiguousPrefixOwnership, nil,
				"prefix", netip.PrefixFrom(prefix.Addr(), i).Masked())
		}
		if i == prefix.Bits() {
			break
		}
		next := t.nodes[cur].children[bit(prefix.Addr(), i)]
		if next == 0 {
			break
		}
		cur = next
	}
	// Collected least specific first; callers want the nearest ancestor up
	// front.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Load bulk-inserts entries, parents before children, and accumulates every
// conflict instead of stopping at the first. Intended for the startup
// warm-up from the object store.
func (x *Index) Load(entries []Entry) error {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return netipx.ComparePrefix(sorted[i].Prefix.Masked(), sorted[j].Prefix.Masked()) < 0
	})
	var errs serrors.List
	for _, e := range sorted {
		if err := x.Insert(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errs.ToError()
}

func (x *Index) trieFor(addr netip.Addr) *trie {
	if addr.Is4() {
		return &x.v4
	}
	return &x.v6
}

// bit returns the i-th most significant bit of addr.
func bit(addr netip.Addr, i int) int {
	if addr.Is4() {
		a := addr.As4()
		return int(a[i/8]>>(7-i%8)) & 1
	}
	a := addr.As16()
	return int(a[i/8]>>(7-i%8)) & 1
}
