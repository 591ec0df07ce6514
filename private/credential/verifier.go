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

// Package credential verifies submitted proofs against maintainer
// credentials. There is one verifier per credential scheme; both are pure
// with respect to shared state, so unrelated evaluations can verify
// concurrently. A proof that simply does not satisfy a credential is a
// non-match, never an error; errors are reserved for structural faults such
// as undecodable proofs or unknown schemes.
package credential

import (
	"context"
	"errors"

	"github.com/openirr/irrd/pkg/private/serrors"
	"github.com/openirr/irrd/pkg/rpsl"
)

// ErrMalformedProof indicates a proof whose encoding cannot be decoded at
// all, e.g. a signature proof that is not an armored PGP block. It is
// distinct from a well-formed proof that does not match.
var ErrMalformedProof = errors.New("malformed proof")

// Verifier checks whether a submitted proof satisfies a credential record.
// body is the exact submitted object body; signature proofs are verified
// over these bytes.
type Verifier interface {
	Verify(ctx context.Context, cred rpsl.Credential, proof rpsl.Proof, body []byte) (bool, error)
}

// Suite dispatches to the scheme-specific verifiers. The credential scheme
// set is closed; an unhandled credential type here is a programming error,
// not an extension point.
type Suite struct {
	Hash HashVerifier
	PGP  PGPVerifier
}

// NewSuite returns a verifier suite backed by the given keystore.
func NewSuite(keystore Keystore) *Suite {
	return &Suite{PGP: PGPVerifier{Keystore: keystore}}
}

// Verify implements Verifier by credential type.
func (s *Suite) Verify(
	ctx context.Context,
	cred rpsl.Credential,
	proof rpsl.Proof,
	body []byte,
) (bool, error) {

	switch cred.Type() {
	case rpsl.CredentialPasswordHash:
		return s.Hash.Verify(ctx, cred, proof, body)
	case rpsl.CredentialPGPKey:
		return s.PGP.Verify(ctx, cred, proof, body)
	case rpsl.CredentialNone:
		return false, nil
	default:
		return false, serrors.New("unhandled credential type", "type", cred.Type())
	}
}

// ValidateProof checks the structural integrity of a proof before
// evaluation. A malformed proof is rejected for the whole request rather
// than treated as a silent non-match, so that submitters learn about broken
// encodings instead of plain denial.
func ValidateProof(proof rpsl.Proof) error {
	switch proof.Type() {
	case rpsl.ProofPassword:
		if proof.Password() == "" {
			return serrors.Join(ErrMalformedProof, nil, "reason", "empty password")
		}
		return nil
	case rpsl.ProofSignature:
		if err := checkSignatureEncoding(proof.Signature()); err != nil {
			return serrors.Join(ErrMalformedProof, err, "kind", "signature")
		}
		return nil
	default:
		return serrors.Join(ErrMalformedProof, nil, "kind", proof.Type())
	}
}
