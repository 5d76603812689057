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

// Package server picks the concrete engine for a config.Server by protocol.
// Today that is only socket/server/tcp; the indirection exists so a caller
// depends on config.Server.Network rather than importing an engine package
// directly.
package server

import (
	"github.com/nabbar/restcore/socket"
	"github.com/nabbar/restcore/socket/config"
	"github.com/nabbar/restcore/socket/server/tcp"
)

// New validates cfg and returns the engine it describes, bound to handler.
func New(cfg config.Server, handler socket.HandlerFunc) (socket.Server, error) {
	if e := cfg.Validate(); e != nil {
		return nil, socket.ErrInvalidConfig.Error(e)
	}

	if handler == nil {
		return nil, socket.ErrInvalidParam.Error(nil)
	}

	return tcp.New(cfg, handler), nil
}
