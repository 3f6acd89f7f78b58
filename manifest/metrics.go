// Copyright 2026 Blink Labs Software
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

package manifest

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "mikrobus_manifest"

// Metrics records parse outcomes as Prometheus metrics
type Metrics struct {
	parsed      prometheus.Counter
	rejected    *prometheus.CounterVec
	devices     prometheus.Counter
	descriptors prometheus.Histogram
}

// NewMetrics creates the parser metrics and registers them with reg. Metrics that
// are already registered with reg are reused, so multiple parsers can share a registry
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		parsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "parsed_total",
			Help:      "Number of manifests parsed successfully",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rejected_total",
			Help:      "Number of manifests rejected, by error kind",
		}, []string{"kind"}),
		devices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "devices_total",
			Help:      "Number of devices resolved from parsed manifests",
		}),
		descriptors: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "descriptors",
			Help:      "Number of descriptors per parsed manifest",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.parsed, err = register(reg, m.parsed); err != nil {
		return nil, err
	}
	if m.rejected, err = register(reg, m.rejected); err != nil {
		return nil, err
	}
	if m.devices, err = register(reg, m.devices); err != nil {
		return nil, err
	}
	if m.descriptors, err = register(reg, m.descriptors); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) recordParsed(board *Board, numDescriptors int) {
	if m == nil {
		return
	}
	m.parsed.Inc()
	m.devices.Add(float64(len(board.Devices)))
	m.descriptors.Observe(float64(numDescriptors))
}

func (m *Metrics) recordRejected(err error) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(errorKind(err)).Inc()
}
