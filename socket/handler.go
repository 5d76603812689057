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

package socket

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// HandlerFunc is the contract the embedding application implements to
// consume accepted connections. An engine invokes it once per connection,
// after any TLS handshake has completed, on a goroutine it owns; ctx.Done
// fires when the peer closes the connection, the connection is idle past
// its configured timeout, or the engine is shutting down.
type HandlerFunc func(ctx Context)

// Server is the lifecycle surface a concrete transport engine exposes to
// the embedding application.
type Server interface {
	// RegisterFuncError installs the sink every connection-scoped error is
	// reported to, after ErrorFilter. Not safe to call once Listen has started.
	RegisterFuncError(fct FuncError)

	// RegisterFuncInfo installs the sink every connection state transition
	// is reported to. Not safe to call once Listen has started.
	RegisterFuncInfo(fct FuncInfo)

	// Listen binds the configured address and accepts connections until ctx
	// is canceled or Shutdown is called. It returns once the listener is
	// closed and every in-flight handler has returned, or ErrEngineFailure
	// if that did not happen within the configured shutdown wait.
	Listen(ctx context.Context) error

	// Shutdown stops accepting new connections and cancels every in-flight
	// Context, then blocks until Listen returns or ctx is done first.
	Shutdown(ctx context.Context) error

	// OpenConnections reports the number of connections currently being served.
	OpenConnections() int64

	// IsGone reports whether Shutdown has been called, regardless of whether
	// Listen has finished draining yet.
	IsGone() bool

	// EnableMetrics registers this server's Prometheus collectors against
	// reg. Safe to call at most once; a second call panics via
	// MustRegister, matching every other registerer-based collector in
	// this module. Not required to be called at all.
	EnableMetrics(reg prometheus.Registerer)
}
