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

package socket_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/restcore/socket"
)

var _ = Describe("ConnState", func() {
	It("renders every named state", func() {
		Expect(socket.ConnectionDial.String()).To(Equal("Dial Connection"))
		Expect(socket.ConnectionNew.String()).To(Equal("New Connection"))
		Expect(socket.ConnectionRead.String()).To(Equal("Read Incoming Stream"))
		Expect(socket.ConnectionCloseRead.String()).To(Equal("Close Incoming Stream"))
		Expect(socket.ConnectionHandler.String()).To(Equal("Run HandlerFunc"))
		Expect(socket.ConnectionWrite.String()).To(Equal("Write Outgoing Steam"))
		Expect(socket.ConnectionCloseWrite.String()).To(Equal("Close Outgoing Stream"))
		Expect(socket.ConnectionClose.String()).To(Equal("Close Connection"))
	})

	It("falls back to unknown for an undefined value", func() {
		Expect(socket.ConnState(255).String()).To(Equal("unknown connection state"))
	})
})

var _ = Describe("ErrorFilter", func() {
	It("passes nil through", func() {
		Expect(socket.ErrorFilter(nil)).To(BeNil())
	})

	It("drops a closed-connection error", func() {
		err := errors.New("read tcp 127.0.0.1:1234->127.0.0.1:5678: use of closed network connection")
		Expect(socket.ErrorFilter(err)).To(BeNil())
	})

	It("passes any other error through unchanged", func() {
		err := errors.New("connection reset by peer")
		Expect(socket.ErrorFilter(err)).To(MatchError(err))
	})
})

var _ = Describe("Error codes", func() {
	It("registers this package's messages exactly once", func() {
		Expect(socket.IsCodeError()).To(BeTrue())
	})

	It("carries a readable message for the codes this engine raises", func() {
		Expect(socket.ErrOverLimit.Error(nil).Error()).To(ContainSubstring("max data per connection"))
		Expect(socket.ErrTlsAcceptFailed.Error(nil).Error()).To(ContainSubstring("handshake"))
		Expect(socket.ErrShutdownInProgress.Error(nil).GetCode()).To(Equal(socket.ErrShutdownInProgress))
	})
})
