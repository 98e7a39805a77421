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

package ledger

import (
	"github.com/Abraham12611/creator-claim/certificate"
	"github.com/Abraham12611/creator-claim/licence"
	"github.com/Abraham12611/creator-claim/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ledgerMetrics struct {
	certificates   prometheus.Gauge
	activeLicences prometheus.Gauge
}

func (m *ledgerMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.certificates = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "creatorclaim_ledger_certificates",
		Help: "number of registered certificates",
	})
	m.activeLicences = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "creatorclaim_ledger_active_licences",
		Help: "number of licences not revoked",
	})
}

// observe applies the events of a committed transaction
func (m *ledgerMetrics) observe(receipt *runtime.Receipt) {
	for _, evt := range receipt.Events {
		switch evt.Type {
		case certificate.RegisteredEventType:
			m.certificates.Inc()
		case licence.PurchasedEventType:
			m.activeLicences.Inc()
		case licence.RevokedEventType:
			m.activeLicences.Dec()
		}
	}
}
