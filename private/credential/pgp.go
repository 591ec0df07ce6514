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
	"bytes"
	"context"
	"strings"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/clearsign"

	"github.com/openirr/irrd/pkg/private/serrors"
	"github.com/openirr/irrd/pkg/rpsl"
)

// Keystore supplies public key material for PGP key credentials. Key
// revocation and expiry checks are the keystore's responsibility. A nil
// keyring with a nil error means the key is unknown.
type Keystore interface {
	Keyring(ctx context.Context, keyID string) (openpgp.EntityList, error)
}

// PGPVerifier checks that a signature proof is a valid signature over the
// exact submitted object body, produced by the key the credential
// references. Any mismatch in body bytes, key, or signature is a non-match,
// never an error, so that remaining credentials can still be tried.
type PGPVerifier struct {
	Keystore Keystore
}

// Verify implements Verifier for PGP key credentials. Both detached armored
// signatures and clearsigned submissions are accepted; for clearsigned
// proofs the signed text must equal the object body.
func (v PGPVerifier) Verify(
	ctx context.Context,
	cred rpsl.Credential,
	proof rpsl.Proof,
	body []byte,
) (bool, error) {

	if cred.Type() != rpsl.CredentialPGPKey || proof.Type() != rpsl.ProofSignature {
		return false, nil
	}
	keyring, err := v.Keystore.Keyring(ctx, cred.KeyID())
	if err != nil {
		return false, serrors.Wrap("loading keyring", err, "key_id", cred.KeyID())
	}
	if len(keyring) == 0 {
		// No key material for the credential: cannot match, but the
		// submitter is not at fault.
		return false, nil
	}

	raw := proof.Signature()
	signer, signed := checkSignature(keyring, raw, body)
	if signer == nil {
		return false, nil
	}
	if !equalBody(signed, body) {
		return false, nil
	}
	return keyMatches(signer, cred.KeyID()), nil
}

// equalBody compares signed text with the object body, tolerating a single
// trailing newline difference introduced by the clearsign encoding.
func equalBody(a, b []byte) bool {
	return bytes.Equal(
		bytes.TrimSuffix(a, []byte("\n")),
		bytes.TrimSuffix(b, []byte("\n")),
	)
}

// checkSignature verifies raw against the keyring and returns the signing
// entity together with the bytes the signature covers. For a detached
// signature that is the supplied body; for a clearsigned block it is the
// embedded plaintext.
func checkSignature(
	keyring openpgp.EntityList,
	raw []byte,
	body []byte,
) (*openpgp.Entity, []byte) {

	if block, _ := clearsign.Decode(raw); block != nil {
		signer, err := openpgp.CheckDetachedSignature(
			keyring, bytes.NewReader(block.Bytes), block.ArmoredSignature.Body)
		if err != nil {
			return nil, nil
		}
		return signer, block.Plaintext
	}
	signer, err := openpgp.CheckArmoredDetachedSignature(
		keyring, bytes.NewReader(body), bytes.NewReader(raw))
	if err != nil {
		return nil, nil
	}
	return signer, body
}

// keyMatches reports whether the signing entity is the key the credential
// references. Credentials carry the 8 or 16 character hex key ID; matching
// is on the suffix of the full primary key ID, like the registries do.
func keyMatches(signer *openpgp.Entity, keyID string) bool {
	full := signer.PrimaryKey.KeyIdString()
	if strings.HasSuffix(full, strings.ToUpper(keyID)) {
		return true
	}
	for _, sub := range signer.Subkeys {
		if strings.HasSuffix(sub.PublicKey.KeyIdString(), strings.ToUpper(keyID)) {
			return true
		}
	}
	return false
}

// checkSignatureEncoding reports whether raw looks like a decodable
// signature block at all. Used for upfront proof validation.
func checkSignatureEncoding(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return serrors.New("empty signature")
	}
	if block, _ := clearsign.Decode(raw); block != nil {
		return nil
	}
	if !bytes.Contains(raw, []byte("-----BEGIN PGP SIGNATURE-----")) {
		return serrors.New("not an armored signature block")
	}
	return nil
}
