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

// Package tcp is the one transport engine this module ships: a TLS-capable,
// backpressured TCP listener that drives socket.HandlerFunc once per
// accepted connection.
//
// Every accepted connection gets its own goroutine and its own derived
// context.Context; there is no hand-rolled readiness queue or worker-thread
// pool to keep in sync with the kernel, since the Go runtime's netpoller
// already multiplexes blocking Read/Write/Handshake calls across OS threads.
// A semaphore.Weighted takes the role the spec's fixed worker-thread count
// plays: it bounds how many handler invocations run at once, independent of
// how many connections are open.
package tcp

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	atomicstd "sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/nabbar/restcore/atomic"
	"github.com/nabbar/restcore/socket"
	"github.com/nabbar/restcore/socket/config"
)

// log is the default structured sink for connection lifecycle events this
// engine does not have a registered FuncInfo/FuncError to hand them to. It
// renders fields instead of the spec's fixed-width text line because every
// other restcore package that logs through logrus does the same (see
// DESIGN.md) rather than hand-building the C engine's printf format.
var log = logrus.New()

// engine implements socket.Server over a single bound TCP listener.
type engine struct {
	cfg     config.Server
	handler socket.HandlerFunc

	sem *semaphore.Weighted

	funcErrMu  sync.RWMutex
	funcErr    socket.FuncError
	funcInfoMu sync.RWMutex
	funcInfo   socket.FuncInfo

	mu     sync.Mutex
	ln     net.Listener
	cancel context.CancelFunc

	open atomicstd.Int64
	gone atomic.Value[bool]

	wg sync.WaitGroup

	metricsMu sync.Mutex
	metric    *metrics
}

// New returns a socket.Server driving handler over cfg. cfg must already
// have passed Validate; callers normally go through socket/server.New
// instead of calling this directly.
func New(cfg config.Server, handler socket.HandlerFunc) socket.Server {
	e := &engine{
		cfg:     cfg,
		handler: handler,
		gone:    atomic.NewValue[bool](),
	}

	if cfg.WorkerCount > 0 {
		e.sem = semaphore.NewWeighted(int64(cfg.WorkerCount))
	}

	return e
}

func (e *engine) RegisterFuncError(fct socket.FuncError) {
	e.funcErrMu.Lock()
	defer e.funcErrMu.Unlock()
	e.funcErr = fct
}

func (e *engine) RegisterFuncInfo(fct socket.FuncInfo) {
	e.funcInfoMu.Lock()
	defer e.funcInfoMu.Unlock()
	e.funcInfo = fct
}

func (e *engine) reportError(errs ...error) {
	var filtered []error
	for _, err := range errs {
		if f := socket.ErrorFilter(err); f != nil {
			filtered = append(filtered, f)
		}
	}

	if len(filtered) == 0 {
		return
	}

	for _, err := range filtered {
		log.WithError(err).Error("socket/server/tcp: connection error")
	}

	e.funcErrMu.RLock()
	fct := e.funcErr
	e.funcErrMu.RUnlock()

	if fct != nil {
		fct(filtered...)
	}
}

func (e *engine) reportInfo(local, remote net.Addr, state socket.ConnState) {
	log.WithFields(logrus.Fields{
		"local":  local.String(),
		"remote": remote.String(),
		"state":  state.String(),
	}).Debug("socket/server/tcp: connection state")

	e.funcInfoMu.RLock()
	fct := e.funcInfo
	e.funcInfoMu.RUnlock()

	if fct != nil {
		fct(local, remote, state)
	}
}

// OpenConnections reports the number of connections currently being served.
func (e *engine) OpenConnections() int64 {
	return e.open.Load()
}

// IsGone reports whether Shutdown has been called.
func (e *engine) IsGone() bool {
	return e.gone.Load()
}

// Listen binds cfg.Address and serves until ctx is canceled or Shutdown runs.
func (e *engine) Listen(parent context.Context) error {
	if e.IsGone() {
		return socket.ErrShutdownInProgress.Error(nil)
	}

	ln, err := listenConfig().Listen(parent, e.cfg.Network.String(), e.cfg.Address)
	if err != nil {
		return socket.ErrSyscallFailed.Error(err)
	}

	if e.cfg.TLS.Enable {
		ln = tls.NewListener(ln, e.cfg.TLS.Config.TLS(e.cfg.TLS.ServerName))
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	e.mu.Lock()
	e.ln = ln
	e.cancel = cancel
	e.mu.Unlock()

	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		e.acceptLoop(ctx, ln)
	}()

	<-ctx.Done()

	_ = ln.Close()
	<-acceptDone

	wait := e.cfg.ShutdownWait.Time()
	if wait <= 0 {
		e.wg.Wait()
		return nil
	}

	drained := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-time.After(wait):
		return socket.ErrEngineFailure.Error(nil)
	}
}

func (e *engine) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			e.reportError(err)
			continue
		}

		if e.sem != nil {
			if err = e.sem.Acquire(ctx, 1); err != nil {
				_ = conn.Close()
				return
			}
		}

		e.metricsMu.Lock()
		m := e.metric
		e.metricsMu.Unlock()
		if m != nil {
			m.accepted.Inc()
		}

		e.wg.Add(1)
		go e.serve(ctx, conn)
	}
}

func (e *engine) metricsSnapshot() *metrics {
	e.metricsMu.Lock()
	defer e.metricsMu.Unlock()
	return e.metric
}

func (e *engine) serve(ctx context.Context, conn net.Conn) {
	defer e.wg.Done()
	if e.sem != nil {
		defer e.sem.Release(1)
	}

	e.open.Add(1)
	defer e.open.Add(-1)

	local, remote := conn.LocalAddr(), conn.RemoteAddr()
	e.reportInfo(local, remote, socket.ConnectionNew)

	// The idle timer is built before the handshake runs, not after, so a
	// peer that stalls mid-handshake (or never sends a ClientHello) is
	// still bounded by ConnTimeout instead of being watched by nothing
	// but the parent shutdown context.
	cctx := newConnContext(ctx, conn, e.cfg.ConnTimeout.Time(), e.cfg.MaxDataPerConn, e)

	if tc, ok := conn.(*tls.Conn); ok {
		if err := tc.HandshakeContext(cctx.Context); err != nil {
			e.reportError(socket.ErrTlsAcceptFailed.Error(err))
			if m := e.metricsSnapshot(); m != nil {
				m.tlsFailures.Inc()
			}
			cctx.stopTimer()
			_ = conn.Close()
			return
		}
	}

	e.reportInfo(local, remote, socket.ConnectionHandler)
	e.handler(cctx)

	e.reportInfo(local, remote, socket.ConnectionCloseRead)
	cctx.stopTimer()
	e.reportInfo(local, remote, socket.ConnectionClose)
	_ = conn.Close()
}

// Shutdown stops the listener; Listen unblocks once its parent ctx observes
// the same cancellation the caller uses here, or once ln.Close alone has
// unblocked the accept loop.
func (e *engine) Shutdown(ctx context.Context) error {
	e.gone.Store(true)

	e.mu.Lock()
	ln := e.ln
	cancel := e.cancel
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if ln != nil {
		if err := ln.Close(); err != nil {
			return socket.ErrSyscallFailed.Error(err)
		}
	}

	return nil
}
