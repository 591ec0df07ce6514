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

package credential

import (
	"context"

	"github.com/GehirnInc/crypt"
	_ "github.com/GehirnInc/crypt/md5_crypt" // register MD5-PW crypter
	descrypt "github.com/sergeymakinen/go-crypt/des"

	"github.com/openirr/irrd/pkg/private/serrors"
	"github.com/openirr/irrd/pkg/rpsl"
)

// HashVerifier recomputes the salted hash of a submitted plaintext secret
// and compares it to the stored hash. Both backing implementations compare
// in constant time. The verifier is stateless.
type HashVerifier struct{}

// Verify implements Verifier for password hash credentials. A stored hash
// that cannot be processed under its recorded scheme counts as a non-match:
// the credential fails closed instead of blocking other credentials from
// being tried. An unrecognized scheme tag on the credential is a
// configuration fault and yields rpsl.ErrUnknownCredentialScheme.
func (HashVerifier) Verify(
	_ context.Context,
	cred rpsl.Credential,
	proof rpsl.Proof,
	_ []byte,
) (bool, error) {

	if cred.Type() != rpsl.CredentialPasswordHash || proof.Type() != rpsl.ProofPassword {
		return false, nil
	}
	switch scheme := cred.Scheme(); scheme {
	case rpsl.HashCrypt:
		return descrypt.Check(cred.Hash(), proof.Password()) == nil, nil
	case rpsl.HashMD5:
		crypter := crypt.MD5.New()
		return crypter.Verify(cred.Hash(), []byte(proof.Password())) == nil, nil
	default:
		return false, serrors.Join(rpsl.ErrUnknownCredentialScheme, nil, "scheme", scheme)
	}
}

// GenerateMD5 hashes a plaintext secret into an MD5-PW credential value.
// Used by operator tooling and tests; verification never calls it.
func GenerateMD5(secret string) (string, error) {
	crypter := crypt.MD5.New()
	hash, err := crypter.Generate([]byte(secret), nil)
	if err != nil {
		return "", serrors.Wrap("generating MD5-PW hash", err)
	}
	return hash, nil
}
