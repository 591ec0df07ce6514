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

// Package rpsl contains the value types of the registry object model: objects
// identified by (class, primary key), maintainers and their credentials, and
// the proofs submitted alongside change requests. Parsing of textual RPSL is
// out of scope; objects enter this package already split into attributes.
package rpsl

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/openirr/irrd/pkg/private/serrors"
)

// Class identifies an RPSL object class.
type Class string

// Object classes relevant to authorization. The registry stores more classes;
// the evaluator only distinguishes route objects from everything else.
const (
	ClassRoute    Class = "route"
	ClassRoute6   Class = "route6"
	ClassMntner   Class = "mntner"
	ClassInetnum  Class = "inetnum"
	ClassInet6num Class = "inet6num"
	ClassAutNum   Class = "aut-num"
)

// IsRoute reports whether the class is an address-prefix route class.
func (c Class) IsRoute() bool {
	return c == ClassRoute || c == ClassRoute6
}

// Attribute is a single attribute line of an object. Attributes are ordered
// and may repeat.
type Attribute struct {
	Name  string
	Value string
}

// Object is a registry object in attribute form.
//
// Every object carries at least one mnt-by reference; an object without one
// is unauthorizable and must be rejected at ingestion. For route classes,
// Prefix and Origin are set and the prefix is part of the primary key.
type Object struct {
	Class Class
	// Key is the primary key, always uppercase.
	Key string
	// Attrs is the ordered attribute set, including the class attribute.
	Attrs []Attribute
	// MntBy lists the names of the maintainers protecting this object.
	MntBy []string
	// Prefix is the address prefix of route-class objects.
	Prefix netip.Prefix
	// Origin is the origin AS of route-class objects, e.g. "AS65001".
	Origin string
	// Body is the exact submitted object text. Signature proofs are
	// verified over these bytes.
	Body []byte
}

// NewObject returns an object with the primary key normalized to uppercase,
// following registry convention.
func NewObject(class Class, key string) *Object {
	return &Object{Class: class, Key: strings.ToUpper(key)}
}

// NewRouteObject returns a route or route6 object for the given prefix and
// origin. The primary key is the prefix followed by the origin.
func NewRouteObject(prefix netip.Prefix, origin string) *Object {
	class := ClassRoute
	if prefix.Addr().Is6() {
		class = ClassRoute6
	}
	o := NewObject(class, fmt.Sprintf("%s%s", prefix, origin))
	o.Prefix = prefix.Masked()
	o.Origin = strings.ToUpper(origin)
	return o
}

// Validate checks the structural invariants the evaluator relies on.
func (o *Object) Validate() error {
	if o.Key == "" {
		return serrors.New("object without primary key", "class", o.Class)
	}
	if len(o.MntBy) == 0 {
		return serrors.New("object without mnt-by", "class", o.Class, "key", o.Key)
	}
	if o.Class.IsRoute() && !o.Prefix.IsValid() {
		return serrors.New("route object without prefix", "key", o.Key)
	}
	return nil
}

func (o *Object) String() string {
	return fmt.Sprintf("%s/%s", o.Class, o.Key)
}

// Operation is the kind of change submitted for an object.
type Operation string

const (
	Create Operation = "create"
	Modify Operation = "modify"
	Delete Operation = "delete"
)

// ParseOperation parses an operation name.
func ParseOperation(s string) (Operation, error) {
	switch Operation(strings.ToLower(s)) {
	case Create:
		return Create, nil
	case Modify:
		return Modify, nil
	case Delete:
		return Delete, nil
	default:
		return "", serrors.New("unknown operation", "operation", s)
	}
}

// Mntner is a maintainer object: the entity authorized to change objects
// that reference it via mnt-by.
//
// A maintainer may itself be protected by other maintainers, forming a
// directed graph that the resolver cycle-checks. A maintainer with an empty
// credential set can never authorize anything.
type Mntner struct {
	// Name is the primary key, always uppercase.
	Name string
	// Auth is the ordered credential set.
	Auth []Credential
	// MntBy lists the maintainers protecting this maintainer.
	MntBy []string
}

// NewMntner returns a maintainer with the name normalized to uppercase.
func NewMntner(name string) *Mntner {
	return &Mntner{Name: strings.ToUpper(name)}
}

// MntnerFromObject builds a maintainer from its stored object form, parsing
// the auth attributes into credential records. An unknown auth scheme in
// stored data is a data fault and surfaces as ErrUnknownCredentialScheme.
func MntnerFromObject(o *Object) (*Mntner, error) {
	if o.Class != ClassMntner {
		return nil, serrors.New("object is not a mntner", "class", o.Class, "key", o.Key)
	}
	m := NewMntner(o.Key)
	m.MntBy = o.MntBy
	for _, attr := range o.Attrs {
		if !strings.EqualFold(attr.Name, "auth") {
			continue
		}
		cred, err := ParseAuth(attr.Value)
		if err != nil {
			return nil, serrors.Wrap("parsing auth attribute", err, "mntner", m.Name)
		}
		m.Auth = append(m.Auth, cred)
	}
	return m, nil
}
