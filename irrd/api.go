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

package irrd

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/openirr/irrd/pkg/log"
	"github.com/openirr/irrd/pkg/private/serrors"
	"github.com/openirr/irrd/pkg/rpsl"
	"github.com/openirr/irrd/private/authz"
)

// AuthorizeRequest is the wire form of one change submission.
type AuthorizeRequest struct {
	Operation string          `json:"operation"`
	Object    ObjectSubmitted `json:"object"`
	// Passwords are tried against every password credential.
	Passwords []string `json:"passwords,omitempty"`
	// Signatures are armored PGP signatures over the object body.
	Signatures []string `json:"signatures,omitempty"`
}

// ObjectSubmitted is the wire form of the candidate object.
type ObjectSubmitted struct {
	Class  string   `json:"class"`
	Key    string   `json:"key,omitempty"`
	MntBy  []string `json:"mnt_by"`
	Prefix string   `json:"prefix,omitempty"`
	Origin string   `json:"origin,omitempty"`
	Body   string   `json:"body,omitempty"`
}

// AuthorizeResponse carries the decision, or the evaluation error.
type AuthorizeResponse struct {
	Decision *authz.Decision `json:"decision,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// APIHandler returns the HTTP API of the service.
func (s *Service) APIHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
	}))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/api/v1/authorize", s.handleAuthorize)
	return r
}

func (s *Service) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	var req AuthorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthorizeResponse{Error: "malformed request body"})
		return
	}
	evalReq, err := s.buildRequest(r, req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, AuthorizeResponse{Error: err.Error()})
		return
	}

	decision, err := s.Authorizer.Authorize(r.Context(), evalReq)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if !isEvaluationFault(err) {
			status = http.StatusInternalServerError
			log.FromCtx(r.Context()).Error("Authorization failed", "err", err)
		}
		writeJSON(w, status, AuthorizeResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, AuthorizeResponse{Decision: &decision})
}

// buildRequest turns the wire form into an evaluation request, fetching the
// stored object for modify and delete.
func (s *Service) buildRequest(r *http.Request, req AuthorizeRequest) (authz.Request, error) {
	op, err := rpsl.ParseOperation(req.Operation)
	if err != nil {
		return authz.Request{}, err
	}
	target, err := buildObject(req.Object)
	if err != nil {
		return authz.Request{}, err
	}

	evalReq := authz.Request{Operation: op, Target: target}
	if op != rpsl.Create {
		existing, err := s.Store.Object(r.Context(), target.Class, target.Key)
		if err != nil {
			return authz.Request{}, serrors.Wrap("fetching stored object", err)
		}
		if existing == nil {
			return authz.Request{}, serrors.New("object does not exist",
				"class", target.Class, "key", target.Key)
		}
		evalReq.Existing = existing
	}

	for _, pw := range req.Passwords {
		evalReq.Proofs = append(evalReq.Proofs, rpsl.PasswordProof(pw))
	}
	for _, sig := range req.Signatures {
		evalReq.Proofs = append(evalReq.Proofs, rpsl.SignatureProof([]byte(sig)))
	}
	return evalReq, nil
}

func buildObject(o ObjectSubmitted) (*rpsl.Object, error) {
	class := rpsl.Class(o.Class)
	var target *rpsl.Object
	if class.IsRoute() {
		prefix, err := netip.ParsePrefix(o.Prefix)
		if err != nil {
			return nil, serrors.Wrap("parsing prefix", err)
		}
		if o.Origin == "" {
			return nil, serrors.New("route object without origin")
		}
		target = rpsl.NewRouteObject(prefix, o.Origin)
		if target.Class != class {
			return nil, serrors.New("class does not match prefix family",
				"class", class, "prefix", prefix)
		}
	} else {
		if o.Key == "" {
			return nil, serrors.New("object without key")
		}
		target = rpsl.NewObject(class, o.Key)
	}
	target.MntBy = o.MntBy
	target.Body = []byte(o.Body)
	return target, nil
}

func isEvaluationFault(err error) bool {
	for _, kind := range []error{
		authz.ErrCyclicAuthorization,
		authz.ErrUnresolvableMaintainer,
		authz.ErrChainTooDeep,
		authz.ErrUnknownCredentialScheme,
		authz.ErrAmbiguousPrefixOwnership,
		authz.ErrMalformedProof,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
