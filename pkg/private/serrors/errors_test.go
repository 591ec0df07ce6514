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

package serrors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openirr/irrd/pkg/private/serrors"
)

func TestWrapIsCause(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := serrors.Wrap("operation failed", sentinel, "key", "value")
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "operation failed")
	assert.Contains(t, err.Error(), "key=value")
	assert.Contains(t, err.Error(), "sentinel")
}

func TestJoin(t *testing.T) {
	base := errors.New("base")
	cause := errors.New("cause")

	tests := map[string]struct {
		err, cause error
		matches    []error
		nilResult  bool
	}{
		"both nil":   {nilResult: true},
		"base only":  {err: base, matches: []error{base}},
		"cause only": {cause: cause, matches: []error{cause}},
		"both":       {err: base, cause: cause, matches: []error{base, cause}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := serrors.Join(tc.err, tc.cause, "mntner", "EXAMPLE-MNT")
			if tc.nilResult {
				assert.NoError(t, err)
				return
			}
			for _, target := range tc.matches {
				assert.ErrorIs(t, err, target)
			}
		})
	}
}

func TestNewSelfIs(t *testing.T) {
	err := serrors.New("broken", "attempt", 1)
	assert.ErrorIs(t, err, err)
	assert.Contains(t, err.Error(), "attempt=1")
}

func TestList(t *testing.T) {
	assert.NoError(t, serrors.List{}.ToError())
	l := serrors.List{errors.New("a"), errors.New("b")}
	assert.Equal(t, "[ a; b ]", l.ToError().Error())
}
