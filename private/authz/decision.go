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

package authz

import "fmt"

// Outcome is the overall result of an evaluation.
type Outcome uint8

const (
	Denied Outcome = iota
	Allowed
)

func (o Outcome) String() string {
	switch o {
	case Denied:
		return "denied"
	case Allowed:
		return "allowed"
	}
	return fmt.Sprintf("UNKNOWN (%d)", uint8(o))
}

// ReasonCode is a stable diagnostic identifier. Calling layers aggregate and
// localize on these codes; the free-text detail is for humans only.
type ReasonCode string

const (
	// CodeEmptyMntBy: the object carries no mnt-by references at all.
	CodeEmptyMntBy ReasonCode = "empty-mnt-by"
	// CodeMntnerNoMatch: no submitted proof matched the named maintainer.
	CodeMntnerNoMatch ReasonCode = "mntner-no-match"
	// CodeExistingRequiresAuth: the stored object's maintainers were not
	// satisfied on modify/delete.
	CodeExistingRequiresAuth ReasonCode = "existing-requires-auth"
	// CodeCoveringRequiresAuth: the covering less-specific block's
	// maintainers were not satisfied on route creation.
	CodeCoveringRequiresAuth ReasonCode = "covering-requires-auth"
)

// Reason is one diagnostic entry of a decision.
type Reason struct {
	Code   ReasonCode `json:"code"`
	Detail string     `json:"detail,omitempty"`
}

func (r Reason) String() string {
	if r.Detail == "" {
		return string(r.Code)
	}
	return fmt.Sprintf("%s: %s", r.Code, r.Detail)
}

// RequirementKind names which maintainer set a requirement came from.
type RequirementKind string

const (
	// RequirementTarget is the submitted object's own maintainer set.
	RequirementTarget RequirementKind = "target"
	// RequirementExisting is the stored object's maintainer set,
	// applicable to modify and delete.
	RequirementExisting RequirementKind = "existing"
	// RequirementCovering is the maintainer set of the nearest covering
	// registered block, applicable to route creation.
	RequirementCovering RequirementKind = "covering"
)

// Requirement is the per-set evaluation result kept for audit.
type Requirement struct {
	Kind RequirementKind `json:"kind"`
	// Mntners lists the maintainer names of the set.
	Mntners []string `json:"mntners"`
	// MatchedMntner is the first maintainer a proof satisfied, or empty.
	MatchedMntner string `json:"matched_mntner,omitempty"`
	Satisfied     bool   `json:"satisfied"`
}

// Decision is the evaluation result. Decisions are produced fresh per
// evaluation and never cached, because credentials can rotate between
// requests.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	// MatchedMntner is the maintainer that satisfied the target
	// requirement, for audit. Empty on denial.
	MatchedMntner string `json:"matched_mntner,omitempty"`
	// Requirements holds the per-set results in evaluation order.
	Requirements []Requirement `json:"requirements"`
	// Reasons is the ordered diagnostic list. A denial always carries at
	// least one reason.
	Reasons []Reason `json:"reasons,omitempty"`
}
