/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package tcp

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics are the counters/gauge an embedding application can scrape
// through its own prometheus.Registerer. They are registered lazily, by
// EnableMetrics, so building an engine without ever calling it costs nothing.
type metrics struct {
	accepted    prometheus.Counter
	tlsFailures prometheus.Counter
	overLimit   prometheus.Counter
	open        prometheus.GaugeFunc
}

func newMetrics(reg prometheus.Registerer, e *engine) *metrics {
	m := &metrics{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "restcore",
			Subsystem: "socket_tcp",
			Name:      "connections_accepted_total",
			Help:      "Connections accepted by this listener since start.",
		}),
		tlsFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "restcore",
			Subsystem: "socket_tcp",
			Name:      "tls_handshake_failures_total",
			Help:      "TLS handshakes that failed before a connection reached its handler.",
		}),
		overLimit: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "restcore",
			Subsystem: "socket_tcp",
			Name:      "connections_over_limit_total",
			Help:      "Connections closed for exceeding max data per connection.",
		}),
		open: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "restcore",
			Subsystem: "socket_tcp",
			Name:      "connections_open",
			Help:      "Connections currently being served.",
		}, func() float64 { return float64(e.OpenConnections()) }),
	}

	reg.MustRegister(m.accepted, m.tlsFailures, m.overLimit, m.open)
	return m
}

// EnableMetrics registers this engine's counters against reg. It is safe to
// call at most once per engine; calling it twice panics via MustRegister,
// matching the rest of this module's fail-fast registration style.
func (e *engine) EnableMetrics(reg prometheus.Registerer) {
	e.metricsMu.Lock()
	defer e.metricsMu.Unlock()
	e.metric = newMetrics(reg, e)
}
