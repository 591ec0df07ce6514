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
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/openpgp"

	"github.com/openirr/irrd/pkg/private/serrors"
)

// DirKeystore serves armored public keys from a directory of
// <KEYID>.asc files, the way operators export them with gpg --armor
// --export. Files are parsed lazily and kept in memory; ReloadKey drops a
// cached entry after rotation.
type DirKeystore struct {
	Dir string

	mu    sync.RWMutex
	cache map[string]openpgp.EntityList
}

// NewDirKeystore returns a keystore over the given directory.
func NewDirKeystore(dir string) *DirKeystore {
	return &DirKeystore{Dir: dir, cache: map[string]openpgp.EntityList{}}
}

// Keyring implements Keystore. An absent key file is not an error; the
// credential simply has no material and cannot match.
func (k *DirKeystore) Keyring(_ context.Context, keyID string) (openpgp.EntityList, error) {
	keyID = strings.ToUpper(keyID)

	k.mu.RLock()
	cached, ok := k.cache[keyID]
	k.mu.RUnlock()
	if ok {
		return cached, nil
	}

	raw, err := os.ReadFile(filepath.Join(k.Dir, keyID+".asc"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, serrors.Wrap("reading key file", err, "key_id", keyID)
	}
	keyring, err := openpgp.ReadArmoredKeyRing(strings.NewReader(string(raw)))
	if err != nil {
		return nil, serrors.Wrap("parsing armored keyring", err, "key_id", keyID)
	}

	k.mu.Lock()
	k.cache[keyID] = keyring
	k.mu.Unlock()
	return keyring, nil
}

// ReloadKey drops the cached keyring for keyID so the next lookup re-reads
// the file.
func (k *DirKeystore) ReloadKey(keyID string) {
	k.mu.Lock()
	delete(k.cache, strings.ToUpper(keyID))
	k.mu.Unlock()
}

// StaticKeystore serves keyrings from memory. Used in tests and small
// deployments where keys are loaded at startup.
type StaticKeystore map[string]openpgp.EntityList

// Keyring implements Keystore.
func (k StaticKeystore) Keyring(_ context.Context, keyID string) (openpgp.EntityList, error) {
	return k[strings.ToUpper(keyID)], nil
}
