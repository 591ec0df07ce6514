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

// Package irrd assembles the authorization engine of the routing registry:
// the object store, the prefix hierarchy, maintainer resolution and
// credential verification, behind one evaluator.
package irrd

import (
	"context"

	"github.com/openirr/irrd/pkg/log"
	"github.com/openirr/irrd/pkg/private/serrors"
	"github.com/openirr/irrd/private/authz"
	"github.com/openirr/irrd/private/credential"
	"github.com/openirr/irrd/private/hierarchy"
	"github.com/openirr/irrd/private/mntner"
	"github.com/openirr/irrd/private/storage"
)

// Service holds the wired authorization engine.
type Service struct {
	Store      storage.DB
	Index      *hierarchy.Index
	Authorizer *authz.Authorizer
}

// NewService wires the engine over the given store and keystore.
func NewService(store storage.DB, keystore credential.Keystore, policy authz.Policy) *Service {
	index := hierarchy.New()
	return &Service{
		Store: store,
		Index: index,
		Authorizer: authz.NewAuthorizer(
			store,
			index,
			&mntner.Resolver{DB: store},
			credential.NewSuite(keystore),
			policy,
		),
	}
}

// WarmHierarchy loads every registered route prefix into the hierarchy
// index. Called once at startup; the caller keeps the index in sync with
// object churn afterwards.
func (s *Service) WarmHierarchy(ctx context.Context) error {
	entries, err := s.Store.RouteEntries(ctx)
	if err != nil {
		return serrors.Wrap("loading route entries", err)
	}
	if err := s.Index.Load(entries); err != nil {
		return serrors.Wrap("building hierarchy index", err)
	}
	log.FromCtx(ctx).Info("Hierarchy index warmed", "entries", s.Index.Len())
	return nil
}
