/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package metrics counts producer runs and their outcomes.
//
// Collectors live in a private registry; a run can dump them in the
// node_exporter textfile format when a metrics file is configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shmcalc"

// Collector groups the producer counters.
type Collector struct {
	registry *prometheus.Registry

	segmentsCreated  prometheus.Counter
	segmentsReleased prometheus.Counter
	inputBytes       prometheus.Counter
	resultBytes      prometheus.Counter
	overflows        prometheus.Counter
	outcomes         *prometheus.CounterVec
}

// New registers a fresh set of collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		segmentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_created_total",
			Help:      "Total number of shared memory segments created.",
		}),
		segmentsReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_released_total",
			Help:      "Total number of shared memory segments unmapped and unlinked.",
		}),
		inputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_bytes_total",
			Help:      "Total input bytes loaded into segments.",
		}),
		resultBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_bytes_total",
			Help:      "Total result bytes read back from segments.",
		}),
		overflows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segment_overflows_total",
			Help:      "Total inputs rejected for not fitting in the segment.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_outcomes_total",
			Help:      "Worker terminations by decoded outcome.",
		}, []string{"outcome"}),
	}
	c.registry.MustRegister(
		c.segmentsCreated,
		c.segmentsReleased,
		c.inputBytes,
		c.resultBytes,
		c.overflows,
		c.outcomes,
	)
	return c
}

func (c *Collector) SegmentCreated() { c.segmentsCreated.Inc() }
func (c *Collector) SegmentReleased() { c.segmentsReleased.Inc() }
func (c *Collector) Overflow() { c.overflows.Inc() }

func (c *Collector) InputLoaded(n int) { c.inputBytes.Add(float64(n)) }
func (c *Collector) ResultRead(n int) { c.resultBytes.Add(float64(n)) }
func (c *Collector) Outcome(o string) { c.outcomes.WithLabelValues(o).Inc() }

// Gatherer exposes the registry.
func (c *Collector) Gatherer() prometheus.Gatherer { return c.registry }

// WriteTextfile atomically writes all metrics to filename.
func (c *Collector) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, c.registry)
}
