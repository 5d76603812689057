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
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/nabbar/restcore/socket"
)

// connContext is the socket.Context handed to a HandlerFunc for one
// accepted connection. It layers three things spec.md asks of a raw
// connection on top of net.Conn: an idle timeout that cancels ctx when a
// connection goes quiet, a running total of bytes read that trips
// socket.ErrOverLimit, and a write retry loop with doubling backoff.
type connContext struct {
	context.Context
	cancel context.CancelFunc

	conn net.Conn
	eng  *engine

	idle     time.Duration
	timerMu  sync.Mutex
	timer    *time.Timer
	stopped  bool

	maxData uint32
	readMu  sync.Mutex
	nRead   uint32
	overLim bool
	buf     readBuffer
}

func newConnContext(parent context.Context, conn net.Conn, idle time.Duration, maxData uint32, eng *engine) *connContext {
	ctx, cancel := context.WithCancel(parent)

	c := &connContext{
		Context: ctx,
		cancel:  cancel,
		conn:    conn,
		eng:     eng,
		idle:    idle,
		maxData: maxData,
	}

	if idle > 0 {
		c.timer = time.AfterFunc(idle, c.onIdle)
	}

	return c
}

func (c *connContext) onIdle() {
	_ = c.conn.Close()
	c.cancel()
}

func (c *connContext) stopTimer() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if c.timer != nil && !c.stopped {
		c.timer.Stop()
		c.stopped = true
	}
}

func (c *connContext) resetTimer() {
	if c.idle <= 0 {
		return
	}

	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if c.stopped {
		return
	}
	c.timer.Reset(c.idle)
}

// IsConnected reports whether the connection's context has not yet been
// canceled by close, idle timeout or engine shutdown.
func (c *connContext) IsConnected() bool {
	return c.Context.Err() == nil
}

// LocalHost returns the local address this connection was accepted on.
func (c *connContext) LocalHost() string {
	if a := c.conn.LocalAddr(); a != nil {
		return a.String()
	}
	return ""
}

// RemoteHost returns the peer address of this connection.
func (c *connContext) RemoteHost() string {
	if a := c.conn.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}

// Read fills p from the connection's buffer, which is refilled from the
// socket in chunkSize increments whenever it runs dry (spec.md §4.7). A
// short caller buffer never discards bytes: whatever a socket read delivers
// beyond len(p) stays in the buffer's unconsumed tail for the next Read, the
// same tail-preservation behavior §4.7 describes for a parser that resumes
// mid-request. The idle timer resets on every socket read, and
// socket.ErrOverLimit trips once the running total of bytes ever read for
// this connection exceeds the configured MaxDataPerConn.
func (c *connContext) Read(p []byte) (int, error) {
	c.readMu.Lock()
	if c.overLim {
		c.readMu.Unlock()
		return 0, socket.ErrOverLimit.Error(nil)
	}
	if c.buf.has() {
		n := c.buf.take(p)
		c.readMu.Unlock()
		return n, nil
	}
	tail := c.buf.grow()
	c.readMu.Unlock()

	n, err := c.conn.Read(tail)

	var taken int
	if n > 0 {
		c.resetTimer()

		c.readMu.Lock()
		c.buf.commit(n)
		c.nRead += uint32(n)
		if c.maxData > 0 && c.nRead > c.maxData {
			c.overLim = true
		}
		over := c.overLim
		taken = c.buf.take(p)
		c.readMu.Unlock()

		if over {
			c.eng.reportError(socket.ErrOverLimit.Error(nil))
			if m := c.eng.metricsSnapshot(); m != nil {
				m.overLimit.Inc()
			}
			return taken, socket.ErrOverLimit.Error(nil)
		}
	}

	if err != nil && err != io.EOF {
		if f := socket.ErrorFilter(err); f != nil {
			c.eng.reportError(socket.ErrReadFailed.Error(f))
		}
	}

	return taken, err
}

// writeBackoffStart and writeBackoffMax bound the octave (doubling) backoff
// a partial or failed Write retries with, matching the bounded retry budget
// a buffered writer needs against a slow or congested peer.
const (
	writeBackoffStart = 1 * time.Millisecond
	writeBackoffMax   = 256 * time.Millisecond
)

// Write sends p in full, retrying a short write with a doubling backoff
// between attempts, up to writeBackoffMax per attempt. It gives up and
// returns socket.ErrWriteFailed if ctx is canceled mid-retry.
func (c *connContext) Write(p []byte) (int, error) {
	var (
		written int
		backoff = writeBackoffStart
	)

	for written < len(p) {
		n, err := c.conn.Write(p[written:])
		written += n

		if err != nil {
			if f := socket.ErrorFilter(err); f != nil {
				c.eng.reportError(socket.ErrWriteFailed.Error(f))
				return written, err
			}
			return written, nil
		}

		if written >= len(p) {
			break
		}

		select {
		case <-c.Context.Done():
			return written, socket.ErrWriteFailed.Error(c.Context.Err())
		case <-time.After(backoff):
		}

		if backoff < writeBackoffMax {
			backoff *= 2
			if backoff > writeBackoffMax {
				backoff = writeBackoffMax
			}
		}
	}

	c.resetTimer()
	return written, nil
}
