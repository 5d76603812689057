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

package tcp_test

import (
	"bufio"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nabbar/restcore/certificates"
	"github.com/nabbar/restcore/duration"
	libptc "github.com/nabbar/restcore/network/protocol"
	"github.com/nabbar/restcore/socket"
	"github.com/nabbar/restcore/socket/config"
	"github.com/nabbar/restcore/socket/server/tcp"
)

// selfSignedTLSConfig builds an ephemeral ECDSA certificate valid for
// "127.0.0.1" and wraps it in a certificates.TLSConfig, the same type
// socket/config.TLS.Config expects.
func selfSignedTLSConfig() certificates.TLSConfig {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	Expect(err).ToNot(HaveOccurred())

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "127.0.0.1"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		IsCA:         true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	Expect(err).ToNot(HaveOccurred())

	keyDER, err := x509.MarshalECPrivateKey(key)
	Expect(err).ToNot(HaveOccurred())

	crtPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	cfg := certificates.New()
	Expect(cfg.AddCertificatePairString(string(keyPEM), string(crtPEM))).ToNot(HaveOccurred())

	return cfg
}

var _ = Describe("Engine", func() {
	var port int32 = 18180

	nextAddr := func() string {
		p := atomic.AddInt32(&port, 1)
		return fmt.Sprintf("127.0.0.1:%d", p)
	}

	It("accepts a connection, runs the handler once, and echoes a line", func() {
		addr := nextAddr()

		cfg := config.Server{
			Network: libptc.NetworkTCP,
			Address: addr,
		}

		handled := make(chan struct{}, 1)

		eng := tcp.New(cfg, func(ctx socket.Context) {
			defer close(handled)

			r := bufio.NewReader(ctx)
			line, err := r.ReadString(socket.EOL)
			Expect(err).ToNot(HaveOccurred())

			_, err = ctx.Write([]byte("echo: " + line))
			Expect(err).ToNot(HaveOccurred())
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		listenDone := make(chan error, 1)
		go func() { listenDone <- eng.Listen(ctx) }()

		Eventually(func() error {
			conn, err := net.Dial("tcp", addr)
			if err == nil {
				_ = conn.Close()
			}
			return err
		}, time.Second, 10*time.Millisecond).Should(Succeed())

		conn, err := net.Dial("tcp", addr)
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()

		_, err = conn.Write([]byte("hello\n"))
		Expect(err).ToNot(HaveOccurred())

		Eventually(handled, time.Second).Should(BeClosed())

		reply := make([]byte, 64)
		n, err := conn.Read(reply)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(reply[:n])).To(Equal("echo: hello\n"))

		Expect(eng.Shutdown(context.Background())).ToNot(HaveOccurred())
		Eventually(listenDone, time.Second).Should(Receive(BeNil()))
		Expect(eng.IsGone()).To(BeTrue())
	})

	It("closes idle connections after ConnTimeout", func() {
		addr := nextAddr()

		cfg := config.Server{
			Network:     libptc.NetworkTCP,
			Address:     addr,
			ConnTimeout: duration.ParseDuration(50 * time.Millisecond),
		}

		closed := make(chan struct{}, 1)

		eng := tcp.New(cfg, func(ctx socket.Context) {
			buf := make([]byte, 1)
			_, _ = ctx.Read(buf)
			close(closed)
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = eng.Listen(ctx) }()

		Eventually(func() error {
			conn, err := net.Dial("tcp", addr)
			if err == nil {
				_ = conn.Close()
			}
			return err
		}, time.Second, 10*time.Millisecond).Should(Succeed())

		conn, err := net.Dial("tcp", addr)
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()

		Eventually(closed, time.Second).Should(BeClosed())

		Expect(eng.Shutdown(context.Background())).ToNot(HaveOccurred())
	})

	It("completes a TLS handshake and runs the handler once over the encrypted stream", func() {
		addr := nextAddr()

		cfg := config.Server{
			Network: libptc.NetworkTCP,
			Address: addr,
		}
		cfg.TLS.Enable = true
		cfg.TLS.Config = selfSignedTLSConfig()

		handled := make(chan struct{}, 1)

		eng := tcp.New(cfg, func(ctx socket.Context) {
			defer close(handled)

			r := bufio.NewReader(ctx)
			line, err := r.ReadString(socket.EOL)
			Expect(err).ToNot(HaveOccurred())

			_, err = ctx.Write([]byte("echo: " + line))
			Expect(err).ToNot(HaveOccurred())
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = eng.Listen(ctx) }()

		var conn *tls.Conn
		Eventually(func() error {
			c, err := tls.Dial("tcp", addr, &tls.Config{InsecureSkipVerify: true})
			if err != nil {
				return err
			}
			conn = c
			return nil
		}, time.Second, 10*time.Millisecond).Should(Succeed())
		defer conn.Close()

		_, err := conn.Write([]byte("hello\n"))
		Expect(err).ToNot(HaveOccurred())

		Eventually(handled, time.Second).Should(BeClosed())

		reply := make([]byte, 64)
		n, err := conn.Read(reply)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(reply[:n])).To(Equal("echo: hello\n"))

		Expect(eng.Shutdown(context.Background())).ToNot(HaveOccurred())
	})

	It("closes a connection that exceeds MaxDataPerConn with ErrOverLimit", func() {
		addr := nextAddr()

		cfg := config.Server{
			Network:        libptc.NetworkTCP,
			Address:        addr,
			MaxDataPerConn: 8,
		}

		readErr := make(chan error, 1)

		eng := tcp.New(cfg, func(ctx socket.Context) {
			buf := make([]byte, 64)
			for {
				_, err := ctx.Read(buf)
				if err != nil {
					readErr <- err
					return
				}
			}
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = eng.Listen(ctx) }()

		Eventually(func() error {
			conn, err := net.Dial("tcp", addr)
			if err == nil {
				_ = conn.Close()
			}
			return err
		}, time.Second, 10*time.Millisecond).Should(Succeed())

		conn, err := net.Dial("tcp", addr)
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()

		_, err = conn.Write([]byte("0123456789abcdef"))
		Expect(err).ToNot(HaveOccurred())

		Eventually(readErr, time.Second).Should(Receive())

		Expect(eng.Shutdown(context.Background())).ToNot(HaveOccurred())
	})

	It("exposes Prometheus counters once EnableMetrics is called", func() {
		addr := nextAddr()

		cfg := config.Server{
			Network: libptc.NetworkTCP,
			Address: addr,
		}

		handled := make(chan struct{}, 1)
		eng := tcp.New(cfg, func(ctx socket.Context) {
			defer close(handled)
			buf := make([]byte, 1)
			_, _ = ctx.Read(buf)
		})

		reg := prometheus.NewRegistry()
		eng.EnableMetrics(reg)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = eng.Listen(ctx) }()

		Eventually(func() error {
			conn, err := net.Dial("tcp", addr)
			if err == nil {
				_ = conn.Close()
			}
			return err
		}, time.Second, 10*time.Millisecond).Should(Succeed())

		conn, err := net.Dial("tcp", addr)
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()
		_, err = conn.Write([]byte("x"))
		Expect(err).ToNot(HaveOccurred())

		Eventually(handled, time.Second).Should(BeClosed())

		mfs, err := reg.Gather()
		Expect(err).ToNot(HaveOccurred())

		var sawAccepted bool
		for _, mf := range mfs {
			if mf.GetName() == "restcore_socket_tcp_connections_accepted_total" {
				sawAccepted = true
			}
		}
		Expect(sawAccepted).To(BeTrue())

		Expect(eng.Shutdown(context.Background())).ToNot(HaveOccurred())
	})
})
