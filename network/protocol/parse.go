/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package protocol

import "strings"

// matchProtocol is the single case-insensitive, exact-match switch every
// Parse/Unmarshal entry point in this package funnels through.
func matchProtocol(s string) NetworkProtocol {
	switch strings.ToLower(s) {
	case "unix":
		return NetworkUnix
	case "tcp":
		return NetworkTCP
	case "tcp4":
		return NetworkTCP4
	case "tcp6":
		return NetworkTCP6
	case "udp":
		return NetworkUDP
	case "udp4":
		return NetworkUDP4
	case "udp6":
		return NetworkUDP6
	case "ip":
		return NetworkIP
	case "ip4":
		return NetworkIP4
	case "ip6":
		return NetworkIP6
	case "unixgram":
		return NetworkUnixGram
	default:
		return NetworkEmpty
	}
}

// unquoteOnce strips one layer of matching surrounding quote characters
// (", ', `) from a trimmed string, if present.
func unquoteOnce(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}

	first, last := s[0], s[len(s)-1]
	switch first {
	case '"', '\'', '`':
		if last == first {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// Parse converts a string such as "tcp" or "TCP" into a NetworkProtocol.
// Surrounding whitespace and a single layer of quoting are tolerated.
// Unrecognized input returns NetworkEmpty.
func Parse(s string) NetworkProtocol {
	return matchProtocol(unquoteOnce(s))
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(b []byte) NetworkProtocol {
	return Parse(string(b))
}

// ParseInt64 converts a numeric protocol code (as produced by Int64) back
// into a NetworkProtocol. Values outside the valid range return
// NetworkEmpty.
func ParseInt64(v int64) NetworkProtocol {
	if v < int64(NetworkUnix) || v > int64(NetworkUnixGram) {
		return NetworkEmpty
	}
	return NetworkProtocol(v)
}
