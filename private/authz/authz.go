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

// Package authz decides whether a submitted change to a registry object is
// authorized by the proofs accompanying it. The evaluator is stateless and
// side-effect free: it borrows read access to the object store and the
// prefix hierarchy for the duration of one evaluation and never writes;
// the caller applies the change only after an Allowed decision.
package authz

import (
	"context"

	"github.com/openirr/irrd/pkg/log"
	"github.com/openirr/irrd/pkg/private/serrors"
	"github.com/openirr/irrd/pkg/rpsl"
	"github.com/openirr/irrd/private/credential"
	"github.com/openirr/irrd/private/hierarchy"
	"github.com/openirr/irrd/private/mntner"
)

// The error kinds an evaluation can surface. All of them indicate a data or
// configuration fault; a plain lack of credentials is a Denied decision,
// not an error.
var (
	ErrCyclicAuthorization      = mntner.ErrCyclicAuthorization
	ErrUnresolvableMaintainer   = mntner.ErrUnresolvableMaintainer
	ErrChainTooDeep             = mntner.ErrChainTooDeep
	ErrUnknownCredentialScheme  = rpsl.ErrUnknownCredentialScheme
	ErrAmbiguousPrefixOwnership = hierarchy.ErrAmbiguousPrefixOwnership
	ErrMalformedProof           = credential.ErrMalformedProof
)

// ObjectStore is read access to stored objects. A nil object with a nil
// error means the object does not exist.
type ObjectStore interface {
	Object(ctx context.Context, class rpsl.Class, key string) (*rpsl.Object, error)
}

// Policy holds the configurable parts of the authorization rules.
type Policy struct {
	// StrictExisting requires modify/delete to also satisfy the stored
	// object's maintainer set, so that a change cannot be authorized
	// purely against maintainers the submitter just wrote into the new
	// body. Registries vary in strictness; the default is strict.
	StrictExisting bool `toml:"strict_existing,omitempty"`
	// MaxChainDepth bounds maintainer protection chains.
	MaxChainDepth int `toml:"max_chain_depth,omitempty"`
}

// DefaultPolicy returns the default policy.
func DefaultPolicy() Policy {
	return Policy{StrictExisting: true, MaxChainDepth: mntner.DefaultMaxDepth}
}

// Request is one change submission to evaluate.
type Request struct {
	Operation rpsl.Operation
	// Target is the post-change candidate form of the object.
	Target *rpsl.Object
	// Existing is the currently stored object; required for modify and
	// delete, nil for create.
	Existing *rpsl.Object
	// Proofs are the submitted credentials.
	Proofs []rpsl.Proof
}

// Authorizer evaluates change requests. It holds no cross-request state;
// concurrent evaluations of unrelated objects run fully in parallel.
// Serializing concurrent changes to the same object key is the caller's
// job, since the Existing snapshot must stay valid until the caller's
// subsequent write.
type Authorizer struct {
	Store     ObjectStore
	Hierarchy *hierarchy.Index
	Resolver  *mntner.Resolver
	Verifier  credential.Verifier
	Policy    Policy
	// Metrics is optional.
	Metrics *Metrics
}

// NewAuthorizer wires an evaluator over the given collaborators.
func NewAuthorizer(
	store ObjectStore,
	index *hierarchy.Index,
	resolver *mntner.Resolver,
	verifier credential.Verifier,
	policy Policy,
) *Authorizer {

	if policy.MaxChainDepth > 0 {
		resolver.MaxDepth = policy.MaxChainDepth
	}
	return &Authorizer{
		Store:     store,
		Hierarchy: index,
		Resolver:  resolver,
		Verifier:  verifier,
		Policy:    policy,
	}
}

// Authorize is the sole entry point. It is synchronous and deterministic
// given its inputs and the backing data; transient store failures are the
// caller's retry responsibility. An errored evaluation never yields an
// Allowed decision.
func (a *Authorizer) Authorize(ctx context.Context, req Request) (Decision, error) {
	decision, err := a.evaluate(ctx, req)
	a.Metrics.observe(req.Operation, decision, err)
	return decision, err
}

func (a *Authorizer) evaluate(ctx context.Context, req Request) (Decision, error) {
	if err := a.checkRequest(req); err != nil {
		return Decision{}, err
	}
	for _, proof := range req.Proofs {
		if err := credential.ValidateProof(proof); err != nil {
			return Decision{}, err
		}
	}

	// An object without maintainers is unauthorizable, full stop.
	if len(req.Target.MntBy) == 0 {
		return Decision{
			Outcome: Denied,
			Reasons: []Reason{{Code: CodeEmptyMntBy, Detail: "object has no mnt-by"}},
		}, nil
	}

	reqs, err := a.requirements(ctx, req)
	if err != nil {
		return Decision{}, err
	}

	decision := Decision{Outcome: Allowed}
	for _, r := range reqs {
		result, err := a.evaluateSet(ctx, r, req.Proofs, req.Target.Body)
		if err != nil {
			return Decision{}, err
		}
		decision.Requirements = append(decision.Requirements, result)
		if result.Satisfied {
			if r.kind == RequirementTarget {
				decision.MatchedMntner = result.MatchedMntner
			}
			continue
		}
		decision.Outcome = Denied
		decision.Reasons = append(decision.Reasons, r.denialReasons(result)...)
	}
	if decision.Outcome == Denied {
		decision.MatchedMntner = ""
	}

	log.FromCtx(ctx).Debug("authorization evaluated",
		"operation", req.Operation,
		"object", req.Target,
		"outcome", decision.Outcome,
		"matched_mntner", decision.MatchedMntner,
	)
	return decision, nil
}

func (a *Authorizer) checkRequest(req Request) error {
	if req.Target == nil {
		return serrors.New("request without target object")
	}
	switch req.Operation {
	case rpsl.Create:
		if req.Existing != nil {
			return serrors.New("create with existing object", "object", req.Target)
		}
	case rpsl.Modify, rpsl.Delete:
		if req.Existing == nil {
			return serrors.New("modify/delete without existing object",
				"operation", req.Operation, "object", req.Target)
		}
	default:
		return serrors.New("unknown operation", "operation", req.Operation)
	}
	return nil
}

// requirement is one maintainer set that must be independently satisfied.
type requirement struct {
	kind RequirementKind
	// names are the unexpanded maintainer references.
	names []string
	// subject names the object the requirement protects, for diagnostics.
	subject string
}

func (r requirement) denialReasons(result Requirement) []Reason {
	var reasons []Reason
	switch r.kind {
	case RequirementExisting:
		reasons = append(reasons, Reason{
			Code:   CodeExistingRequiresAuth,
			Detail: "stored object requires separate authorization",
		})
	case RequirementCovering:
		reasons = append(reasons, Reason{
			Code:   CodeCoveringRequiresAuth,
			Detail: "covering block " + r.subject + " requires separate authorization",
		})
	}
	for _, name := range result.Mntners {
		reasons = append(reasons, Reason{
			Code:   CodeMntnerNoMatch,
			Detail: "no proof matched mntner " + name,
		})
	}
	return reasons
}

// requirements assembles the maintainer sets the request must satisfy: the
// target's own set always; the stored object's set on modify/delete under
// the strict policy; and, for route creation, the set of the nearest
// registered block covering the new prefix.
func (a *Authorizer) requirements(ctx context.Context, req Request) ([]requirement, error) {
	reqs := []requirement{{
		kind:    RequirementTarget,
		names:   req.Target.MntBy,
		subject: req.Target.String(),
	}}

	if req.Operation != rpsl.Create && a.Policy.StrictExisting {
		reqs = append(reqs, requirement{
			kind:    RequirementExisting,
			names:   req.Existing.MntBy,
			subject: req.Existing.String(),
		})
	}

	if req.Operation == rpsl.Create && req.Target.Class.IsRoute() {
		covering, err := a.coveringRequirement(ctx, req.Target)
		if err != nil {
			return nil, err
		}
		if covering != nil {
			reqs = append(reqs, *covering)
		}
	}
	return reqs, nil
}

// coveringRequirement finds the nearest registered ancestor of the target
// prefix, strictly less specific than the target's own prefix, and turns
// its maintainer set into a requirement. No covering entry means no
// additional requirement.
func (a *Authorizer) coveringRequirement(
	ctx context.Context,
	target *rpsl.Object,
) (*requirement, error) {

	if !target.Prefix.IsValid() {
		return nil, serrors.New("route object without prefix", "object", target)
	}
	chain, err := a.Hierarchy.CoveringChain(target.Prefix)
	if err != nil {
		return nil, err
	}
	var ancestor *hierarchy.Entry
	for i := range chain {
		if chain[i].Prefix != target.Prefix.Masked() {
			ancestor = &chain[i]
			break
		}
	}
	if ancestor == nil {
		return nil, nil
	}

	class := rpsl.ClassRoute
	if ancestor.Prefix.Addr().Is6() {
		class = rpsl.ClassRoute6
	}
	owner, err := a.Store.Object(ctx, class, ancestor.Key)
	if err != nil {
		return nil, serrors.Wrap("fetching covering object", err, "key", ancestor.Key)
	}
	if owner == nil {
		return nil, serrors.New("covering object missing from store",
			"key", ancestor.Key, "prefix", ancestor.Prefix)
	}
	return &requirement{
		kind:    RequirementCovering,
		names:   owner.MntBy,
		subject: ancestor.Prefix.String(),
	}, nil
}

// evaluateSet checks one maintainer set: it is satisfied iff any submitted
// proof matches any credential of any maintainer in the set. A set whose
// maintainers carry no credentials is denied, never vacuously allowed.
func (a *Authorizer) evaluateSet(
	ctx context.Context,
	r requirement,
	proofs []rpsl.Proof,
	body []byte,
) (Requirement, error) {

	set, err := a.Resolver.ExpandChain(ctx, r.names)
	if err != nil {
		return Requirement{}, err
	}
	result := Requirement{Kind: r.kind}
	for _, m := range set {
		result.Mntners = append(result.Mntners, m.Name)
	}
	for _, m := range set {
		matched, err := a.matchMntner(ctx, m, proofs, body)
		if err != nil {
			return Requirement{}, err
		}
		if matched {
			result.MatchedMntner = m.Name
			result.Satisfied = true
			break
		}
	}
	return result, nil
}

func (a *Authorizer) matchMntner(
	ctx context.Context,
	m *rpsl.Mntner,
	proofs []rpsl.Proof,
	body []byte,
) (bool, error) {

	for _, cred := range m.Auth {
		for _, proof := range proofs {
			matched, err := a.Verifier.Verify(ctx, cred, proof, body)
			if err != nil {
				return false, serrors.Wrap("verifying credential", err, "mntner", m.Name)
			}
			if matched {
				return true, nil
			}
		}
	}
	return false, nil
}
