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

import "fmt"

// ProofType discriminates between the proof variants of a change request.
type ProofType uint8

const (
	ProofNone ProofType = iota
	// ProofPassword is a plaintext secret to be hashed and compared.
	ProofPassword
	// ProofSignature is a detached armored PGP signature over the
	// submitted object body.
	ProofSignature
)

func (t ProofType) String() string {
	switch t {
	case ProofNone:
		return "None"
	case ProofPassword:
		return "Password"
	case ProofSignature:
		return "Signature"
	}
	return fmt.Sprintf("UNKNOWN (%d)", uint8(t))
}

// Proof is one credential proof submitted with a change request. A request
// may carry several proofs when multiple schemes are attempted; each proof
// holds exactly one kind.
type Proof struct {
	t         ProofType
	password  string
	signature []byte
}

// PasswordProof returns a proof carrying a plaintext secret.
func PasswordProof(secret string) Proof {
	return Proof{t: ProofPassword, password: secret}
}

// SignatureProof returns a proof carrying a detached armored signature.
func SignatureProof(armored []byte) Proof {
	return Proof{t: ProofSignature, signature: armored}
}

// Type returns the proof variant.
func (p Proof) Type() ProofType {
	return p.t
}

// Password returns the plaintext secret.
// Panics if p.Type() is not ProofPassword.
func (p Proof) Password() string {
	if p.t != ProofPassword {
		panic("Password called on non-password proof")
	}
	return p.password
}

// Signature returns the armored signature bytes.
// Panics if p.Type() is not ProofSignature.
func (p Proof) Signature() []byte {
	if p.t != ProofSignature {
		panic("Signature called on non-signature proof")
	}
	return p.signature
}

// String renders the proof kind only. Secrets never appear in logs.
func (p Proof) String() string {
	return p.t.String()
}
