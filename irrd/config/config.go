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

// Package config contains the configuration of the registry daemon.
package config

import (
	"github.com/openirr/irrd/pkg/log"
	"github.com/openirr/irrd/pkg/private/serrors"
	"github.com/openirr/irrd/private/authz"
	"github.com/openirr/irrd/private/config"
	"github.com/openirr/irrd/private/storage"
)

var _ config.Config = (*Config)(nil)

type Config struct {
	General General          `toml:"general,omitempty"`
	Logging log.Config       `toml:"log,omitempty"`
	Metrics Metrics          `toml:"metrics,omitempty"`
	API     API              `toml:"api,omitempty"`
	DB      storage.DBConfig `toml:"db,omitempty"`
	Auth    Auth             `toml:"auth,omitempty"`
}

func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.DB,
		&cfg.Auth,
	)
}

func (cfg *Config) Validate() error {
	return config.ValidateAll(
		&cfg.General,
		&cfg.Logging,
		&cfg.Metrics,
		&cfg.API,
		&cfg.DB,
		&cfg.Auth,
	)
}

// General contains the daemon-wide settings.
type General struct {
	config.NoDefaulter
	// ID is the instance identifier, used in logs.
	ID string `toml:"id,omitempty"`
	// PGPKeyDir is the directory of armored public keys, one <KEYID>.asc
	// per key. Empty disables signature verification.
	PGPKeyDir string `toml:"pgp_key_dir,omitempty"`
}

func (cfg *General) Validate() error {
	if cfg.ID == "" {
		return serrors.New("id must be set")
	}
	return nil
}

// Metrics holds the observability endpoint configuration.
type Metrics struct {
	config.NoDefaulter
	config.NoValidator
	// Prometheus is the address to expose prometheus metrics on. Empty
	// disables the endpoint.
	Prometheus string `toml:"prometheus,omitempty"`
}

// API holds the HTTP API configuration.
type API struct {
	config.NoValidator
	// Addr is the address the API listens on.
	Addr string `toml:"addr,omitempty"`
}

func (cfg *API) InitDefaults() {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8043"
	}
}

// Auth holds the authorization policy knobs. StrictExisting is a pointer so
// that an absent key keeps the strict default while an explicit false turns
// it off.
type Auth struct {
	config.NoDefaulter
	config.NoValidator
	StrictExisting *bool `toml:"strict_existing,omitempty"`
	MaxChainDepth  int   `toml:"max_chain_depth,omitempty"`
}

// Policy materializes the configured authorization policy.
func (cfg *Auth) Policy() authz.Policy {
	p := authz.DefaultPolicy()
	if cfg.StrictExisting != nil {
		p.StrictExisting = *cfg.StrictExisting
	}
	if cfg.MaxChainDepth > 0 {
		p.MaxChainDepth = cfg.MaxChainDepth
	}
	return p
}
