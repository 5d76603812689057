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

// ConnState is the phase of one connection's life that an engine reports
// through FuncInfo. Engines emit these in order, though ConnectionDial is
// client-side only and never appears on the accept path.
type ConnState uint8

const (
	// ConnectionDial marks the start of an outbound connection attempt.
	ConnectionDial ConnState = iota
	// ConnectionNew marks a freshly accepted or dialed connection.
	ConnectionNew
	// ConnectionRead marks an in-progress read of the incoming stream.
	ConnectionRead
	// ConnectionCloseRead marks the read half being shut down.
	ConnectionCloseRead
	// ConnectionHandler marks the handler function running against the connection.
	ConnectionHandler
	// ConnectionWrite marks an in-progress write of the outgoing stream.
	ConnectionWrite
	// ConnectionCloseWrite marks the write half being shut down.
	ConnectionCloseWrite
	// ConnectionClose marks the connection fully closed.
	ConnectionClose
)

// String renders the human-readable label used in log and info callbacks.
func (s ConnState) String() string {
	switch s {
	case ConnectionDial:
		return "Dial Connection"
	case ConnectionNew:
		return "New Connection"
	case ConnectionRead:
		return "Read Incoming Stream"
	case ConnectionCloseRead:
		return "Close Incoming Stream"
	case ConnectionHandler:
		return "Run HandlerFunc"
	case ConnectionWrite:
		return "Write Outgoing Steam"
	case ConnectionCloseWrite:
		return "Close Outgoing Stream"
	case ConnectionClose:
		return "Close Connection"
	default:
		return "unknown connection state"
	}
}
