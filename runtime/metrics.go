// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package runtime

import (
	"errors"
	"time"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type runtimeMetrics struct {
	transactions      *prometheus.CounterVec
	instructionErrors *prometheus.CounterVec
	duration          prometheus.Histogram
}

func newRuntimeMetrics(promRegistry prometheus.Registerer) *runtimeMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &runtimeMetrics{
		transactions: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creatorclaim_runtime_transactions_total",
				Help: "transactions processed by result",
			},
			[]string{"result"},
		),
		instructionErrors: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creatorclaim_runtime_instruction_errors_total",
				Help: "failed instructions by program and error",
			},
			[]string{"program", "error"},
		),
		duration: promautoFactory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "creatorclaim_runtime_transaction_duration_seconds",
				Help:    "time to execute a transaction",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

func (m *runtimeMetrics) observe(start time.Time, commit bool, err error) {
	m.duration.Observe(time.Since(start).Seconds())
	result := "committed"
	switch {
	case err != nil:
		result = "rejected"
	case !commit:
		result = "simulated"
	}
	m.transactions.WithLabelValues(result).Inc()
}

func (m *runtimeMetrics) instructionError(
	r *Runtime,
	programID address.Address,
	err error,
) {
	program, ok := r.programName(programID)
	if !ok {
		program = "unknown"
	}
	name := "other"
	var progErr *ProgramError
	if errors.As(err, &progErr) {
		name = progErr.Name
	}
	m.instructionErrors.WithLabelValues(program, name).Inc()
}
