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

// Package memory implements the object store in memory. Used by tests and
// by deployments small enough to reload from a mirror at startup.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/openirr/irrd/pkg/rpsl"
	"github.com/openirr/irrd/private/hierarchy"
)

type objectKey struct {
	class rpsl.Class
	key   string
}

// Store is an in-memory object store. The zero value is not usable; use New.
type Store struct {
	mu      sync.RWMutex
	objects map[objectKey]*rpsl.Object
}

// New returns an empty store.
func New() *Store {
	return &Store{objects: map[objectKey]*rpsl.Object{}}
}

// Object implements storage.DB.
func (s *Store) Object(_ context.Context, class rpsl.Class, key string) (*rpsl.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[objectKey{class: class, key: strings.ToUpper(key)}], nil
}

// Mntner implements storage.DB.
func (s *Store) Mntner(ctx context.Context, name string) (*rpsl.Mntner, error) {
	o, err := s.Object(ctx, rpsl.ClassMntner, name)
	if err != nil || o == nil {
		return nil, err
	}
	return rpsl.MntnerFromObject(o)
}

// RouteEntries implements storage.DB.
func (s *Store) RouteEntries(context.Context) ([]hierarchy.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []hierarchy.Entry
	for k, o := range s.objects {
		if !k.class.IsRoute() {
			continue
		}
		entries = append(entries, hierarchy.Entry{Prefix: o.Prefix, Key: o.Key})
	}
	return entries, nil
}

// InsertObject implements storage.DB.
func (s *Store) InsertObject(_ context.Context, o *rpsl.Object) error {
	if err := o.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey{class: o.Class, key: o.Key}] = o
	return nil
}

// DeleteObject implements storage.DB.
func (s *Store) DeleteObject(_ context.Context, class rpsl.Class, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectKey{class: class, key: strings.ToUpper(key)})
	return nil
}

// Close implements storage.DB.
func (s *Store) Close() error {
	return nil
}
