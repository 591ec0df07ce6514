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

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/openirr/irrd/pkg/rpsl"
)

// Metrics counts evaluation outcomes. A nil *Metrics is a valid no-op.
type Metrics struct {
	decisions *prometheus.CounterVec
	errors    prometheus.Counter
}

// NewMetrics registers the evaluator metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		decisions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "irrd_authz_decisions_total",
				Help: "Authorization decisions by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		errors: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "irrd_authz_errors_total",
				Help: "Evaluations aborted by data or configuration faults.",
			},
		),
	}
}

func (m *Metrics) observe(op rpsl.Operation, d Decision, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.errors.Inc()
		return
	}
	m.decisions.WithLabelValues(string(op), d.Outcome.String()).Inc()
}
