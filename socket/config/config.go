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

// Package config describes config.Server, the validated, serializable
// configuration one socket/server/tcp engine is built from.
package config

import (
	"errors"
	"fmt"
	"net"

	libval "github.com/go-playground/validator/v10"

	"github.com/nabbar/restcore/certificates"
	"github.com/nabbar/restcore/duration"
	libptc "github.com/nabbar/restcore/network/protocol"
)

var validate = libval.New()

// ErrInvalidProtocol is returned by Validate when Network is not one of the
// TCP family values this engine can bind.
var ErrInvalidProtocol = errors.New("socket/config: invalid protocol")

// ErrInvalidAddress is returned by Validate when Address cannot be split
// into a host and a numeric port.
var ErrInvalidAddress = errors.New("socket/config: invalid address")

// ErrInvalidTLSConfig is returned by Validate when TLS.Enable is true but
// TLS.Config is nil or fails its own Validate.
var ErrInvalidTLSConfig = errors.New("socket/config: invalid TLS config")

// ErrInvalidConfig is returned by Validate when a required field (per its
// validate struct tag) is missing.
var ErrInvalidConfig = errors.New("socket/config: invalid configuration")

// TLS is the nested TLS configuration of a Server.
type TLS struct {
	// Enable turns on TLS for the listener. Zero value is plaintext, matching
	// a freshly zeroed Server being usable as a plain TCP listener.
	Enable bool `mapstructure:"enable" json:"enable" yaml:"enable" toml:"enable" validate:"-"`

	// ServerName is the SNI name presented to certificates.TLSConfig.TLS when
	// building the *tls.Config; it also seeds tls.Config.ServerName for the
	// rare case this listener is reused as a client-auth peer validator.
	ServerName string `mapstructure:"serverName" json:"serverName" yaml:"serverName" toml:"serverName" validate:"-"`

	// Config supplies the certificate chain, cipher/curve lists and client
	// auth policy. Required when Enable is true.
	Config certificates.TLSConfig `mapstructure:"-" json:"-" yaml:"-" toml:"-" validate:"-"`
}

// Server is the full configuration of one listening TCP socket.
type Server struct {
	// Network restricts this engine to the TCP family; Validate rejects
	// anything else (UDP and Unix transports are out of scope for this
	// engine, see socket/server/tcp).
	Network libptc.NetworkProtocol `mapstructure:"network" json:"network" yaml:"network" toml:"network" validate:"required"`

	// Address is "host:port" (or ":port" to bind every interface).
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address" validate:"required"`

	// TLS holds the optional TLS configuration.
	TLS TLS `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls" validate:"-"`

	// WorkerCount bounds how many handler invocations may run concurrently;
	// zero means unbounded.
	WorkerCount uint32 `mapstructure:"workerCount" json:"workerCount" yaml:"workerCount" toml:"workerCount" validate:"-"`

	// ConnTimeout is the idle duration after which a connection with no
	// complete request is closed. Zero disables the idle timeout.
	ConnTimeout duration.Duration `mapstructure:"connTimeout" json:"connTimeout" yaml:"connTimeout" toml:"connTimeout" validate:"-"`

	// MaxDataPerConn caps the number of unconsumed bytes an engine will
	// buffer for one connection before closing it with ErrOverLimit. Zero
	// means unbounded.
	MaxDataPerConn uint32 `mapstructure:"maxDataPerConn" json:"maxDataPerConn" yaml:"maxDataPerConn" toml:"maxDataPerConn" validate:"-"`

	// ShutdownWait bounds how long Shutdown waits for in-flight handlers to
	// return before Listen gives up and reports ErrEngineFailure.
	ShutdownWait duration.Duration `mapstructure:"shutdownWait" json:"shutdownWait" yaml:"shutdownWait" toml:"shutdownWait" validate:"-"`
}

// Validate checks Network, Address and, if enabled, TLS. It never mutates s.
func (s Server) Validate() error {
	if e := validate.Struct(s); e != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, e.Error())
	}

	switch s.Network {
	case libptc.NetworkTCP, libptc.NetworkTCP4, libptc.NetworkTCP6:
		// supported
	default:
		return ErrInvalidProtocol
	}

	if _, _, e := net.SplitHostPort(s.Address); e != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, e.Error())
	}

	if s.TLS.Enable {
		if s.TLS.Config == nil {
			return ErrInvalidTLSConfig
		}
		if cfg := s.TLS.Config.Config(); cfg != nil {
			if e := cfg.Validate(); e != nil {
				return fmt.Errorf("%w: %s", ErrInvalidTLSConfig, e.Error())
			}
		}
	}

	return nil
}
