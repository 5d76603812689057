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
	"net"
)

// DefaultBufferSize is the read-chunk size an engine falls back to when a
// config does not set one.
const DefaultBufferSize = 32 * 1024

// EOL is the line terminator the buffered reader scans for in protocols that
// frame on newlines.
const EOL byte = '\n'

// Reader is the read half of Context, named separately so a handler can be
// written against the half of the contract it actually needs.
type Reader interface {
	Read(p []byte) (n int, err error)
}

// Writer is the write half of Context.
type Writer interface {
	Write(p []byte) (n int, err error)
}

// Context is the handle a HandlerFunc is given for one connection. It
// carries the cancellation the engine uses to unblock a handler at
// shutdown (Done/Err), the raw stream (Reader/Writer) and a pair of
// accessors a handler uses to log or key state by peer.
type Context interface {
	context.Context
	Reader
	Writer

	// IsConnected reports whether the underlying connection is still open.
	IsConnected() bool

	// LocalHost returns the local address string ("host:port" or a path for
	// a stream-oriented local socket).
	LocalHost() string

	// RemoteHost returns the peer address string.
	RemoteHost() string
}

// UpdateConn tunes a net.Conn before it is handed to a handler: setting
// TCP_NODELAY, keepalive, or read/write buffer sizes. It must not replace
// or close conn.
type UpdateConn func(conn net.Conn)

// FuncError receives every error an engine cannot return synchronously to
// its caller: per-connection accept, handshake, read, write and close
// failures. ErrorFilter has already been applied upstream of this callback
// by the engine, so a registered FuncError never sees a routine close error.
type FuncError func(errs ...error)

// FuncInfo receives a lifecycle notification each time a connection moves
// to a new ConnState.
type FuncInfo func(local, remote net.Addr, state ConnState)
