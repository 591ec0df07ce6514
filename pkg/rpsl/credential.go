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

package rpsl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openirr/irrd/pkg/private/serrors"
)

// ErrUnknownCredentialScheme indicates an auth attribute with a scheme tag
// this implementation does not know. It is a data fault, distinct from a
// credential that merely does not match.
var ErrUnknownCredentialScheme = errors.New("unknown credential scheme")

// CredentialType discriminates between the credential variants of a
// maintainer.
type CredentialType uint8

const (
	CredentialNone CredentialType = iota
	// CredentialPGPKey references a PGP public key by key ID.
	CredentialPGPKey
	// CredentialPasswordHash is a salted password hash.
	CredentialPasswordHash
)

func (t CredentialType) String() string {
	switch t {
	case CredentialNone:
		return "None"
	case CredentialPGPKey:
		return "PGPKey"
	case CredentialPasswordHash:
		return "PasswordHash"
	}
	return fmt.Sprintf("UNKNOWN (%d)", uint8(t))
}

// HashScheme identifies a password hashing scheme. The scheme set is closed;
// verification switches over it exhaustively.
type HashScheme uint8

const (
	// HashCrypt is the legacy Unix crypt(3) DES scheme (CRYPT-PW).
	HashCrypt HashScheme = iota + 1
	// HashMD5 is the salted MD5 crypt scheme (MD5-PW).
	HashMD5
)

func (s HashScheme) String() string {
	switch s {
	case HashCrypt:
		return "CRYPT-PW"
	case HashMD5:
		return "MD5-PW"
	}
	return fmt.Sprintf("UNKNOWN (%d)", uint8(s))
}

// Credential is one auth record of a maintainer, either a PGP key reference
// or a password hash, discriminated by Type(). Credentials are immutable;
// rotation replaces the record.
//
// The zero value is a valid object with Credential{}.Type() == CredentialNone.
type Credential struct {
	t      CredentialType
	keyID  string
	scheme HashScheme
	hash   string
}

// PGPKeyCredential returns a credential referencing the PGP key with the
// given key ID (the hex suffix of a PGPKEY-xxxxxxxx auth value).
func PGPKeyCredential(keyID string) Credential {
	return Credential{t: CredentialPGPKey, keyID: strings.ToUpper(keyID)}
}

// PasswordCredential returns a password hash credential.
func PasswordCredential(scheme HashScheme, hash string) Credential {
	return Credential{t: CredentialPasswordHash, scheme: scheme, hash: hash}
}

// Type returns the credential variant.
func (c Credential) Type() CredentialType {
	return c.t
}

// KeyID returns the referenced PGP key ID.
// Panics if c.Type() is not CredentialPGPKey.
func (c Credential) KeyID() string {
	if c.t != CredentialPGPKey {
		panic("KeyID called on non-PGP credential")
	}
	return c.keyID
}

// Scheme returns the hash scheme.
// Panics if c.Type() is not CredentialPasswordHash.
func (c Credential) Scheme() HashScheme {
	if c.t != CredentialPasswordHash {
		panic("Scheme called on non-password credential")
	}
	return c.scheme
}

// Hash returns the stored password hash.
// Panics if c.Type() is not CredentialPasswordHash.
func (c Credential) Hash() string {
	if c.t != CredentialPasswordHash {
		panic("Hash called on non-password credential")
	}
	return c.hash
}

func (c Credential) String() string {
	switch c.t {
	case CredentialPGPKey:
		return "PGPKEY-" + c.keyID
	case CredentialPasswordHash:
		return fmt.Sprintf("%s %s", c.scheme, c.hash)
	}
	return "none"
}

// ParseAuth parses the value of a mntner auth attribute. Recognized forms,
// matching registry convention:
//
//	CRYPT-PW <hash>
//	MD5-PW $1$<salt>$<hash>
//	PGPKEY-<keyid>
//
// An unrecognized scheme tag yields ErrUnknownCredentialScheme.
func ParseAuth(s string) (Credential, error) {
	value := strings.TrimSpace(s)
	if rest, ok := cutPrefixFold(value, "PGPKEY-"); ok {
		if rest == "" {
			return Credential{}, serrors.New("auth value without key id", "auth", s)
		}
		return PGPKeyCredential(rest), nil
	}
	scheme, hash, ok := strings.Cut(value, " ")
	if !ok || strings.TrimSpace(hash) == "" {
		return Credential{}, serrors.New("auth value without hash", "auth", s)
	}
	hash = strings.TrimSpace(hash)
	switch strings.ToUpper(scheme) {
	case "CRYPT-PW":
		return PasswordCredential(HashCrypt, hash), nil
	case "MD5-PW":
		return PasswordCredential(HashMD5, hash), nil
	default:
		return Credential{}, serrors.Join(ErrUnknownCredentialScheme, nil, "scheme", scheme)
	}
}

// MustParseAuth calls ParseAuth and panics on error. Intended for tests with
// hard-coded strings.
func MustParseAuth(s string) Credential {
	c, err := ParseAuth(s)
	if err != nil {
		panic(err)
	}
	return c
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
