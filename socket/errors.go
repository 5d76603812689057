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
	"strings"

	"github.com/nabbar/restcore/errors"
)

const (
	// ErrShutdownInProgress is returned by Server.Listen/Shutdown once a
	// shutdown has already been initiated.
	ErrShutdownInProgress errors.CodeError = iota + errors.MinPkgSocket
	// ErrSyscallFailed wraps a failure from the underlying net package (bind, accept, set*).
	ErrSyscallFailed
	// ErrInvalidParam flags a nil handler, negative timeout or other caller mistake.
	ErrInvalidParam
	// ErrInvalidConfig flags a config.Server that failed Validate.
	ErrInvalidConfig
	// ErrTlsAcceptFailed wraps a failed TLS handshake on a secure listener.
	ErrTlsAcceptFailed
	// ErrTlsError wraps any other TLS-layer failure surfaced after the handshake.
	ErrTlsError
	// ErrOverLimit marks a connection closed for exceeding its configured max data per connection.
	ErrOverLimit
	// ErrReadFailed wraps a non-timeout, non-EOF read failure.
	ErrReadFailed
	// ErrWriteFailed wraps a write failure that persisted through every retry.
	ErrWriteFailed
	// ErrEngineFailure marks a worker goroutine that did not return within the shutdown wait budget.
	ErrEngineFailure
)

var isCodeError = false

// IsCodeError reports whether this package's error codes are registered in
// the shared errors.CodeError message map, mirroring the per-package init
// check other restcore packages expose.
func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrShutdownInProgress)
	errors.RegisterIdFctMessage(ErrShutdownInProgress, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrShutdownInProgress:
		return "shutdown in progress"
	case ErrSyscallFailed:
		return "syscall failed"
	case ErrInvalidParam:
		return "invalid parameter"
	case ErrInvalidConfig:
		return "invalid configuration"
	case ErrTlsAcceptFailed:
		return "tls handshake failed"
	case ErrTlsError:
		return "tls error"
	case ErrOverLimit:
		return "request exceeds max data per connection"
	case ErrReadFailed:
		return "read failed"
	case ErrWriteFailed:
		return "write failed"
	case ErrEngineFailure:
		return "engine did not reach clean shutdown within the wait budget"
	}

	return ""
}

// ErrorFilter drops the one error every engine expects on a routine close:
// a blocking Read/Write unblocked by the local side calling Close. Every
// other error, including a nil one, passes through unchanged.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "use of closed network connection") {
		return nil
	}

	return err
}
