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

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// unquoteBytes strips a layer of single quotes, then a layer of double
// quotes, from the trimmed input - in that order, so a value quoted both
// ways only has its outer layer removed.
func unquoteBytes(b []byte) []byte {
	b = bytes.TrimSpace(b)
	b = bytes.Trim(b, "'")
	b = bytes.Trim(b, "\"")
	return bytes.TrimSpace(b)
}

// UnmarshalJSON decodes a JSON string into the protocol. Unrecognized or
// empty input sets NetworkEmpty without an error, matching how a missing
// config field should behave.
func (p *NetworkProtocol) UnmarshalJSON(b []byte) error {
	*p = matchProtocol(string(unquoteBytes(b)))
	return nil
}

// UnmarshalYAML decodes a YAML scalar node into the protocol.
func (p *NetworkProtocol) UnmarshalYAML(value *yaml.Node) error {
	*p = matchProtocol(string(unquoteBytes([]byte(value.Value))))
	return nil
}

// UnmarshalTOML decodes a TOML value into the protocol. Only string and
// []byte inputs are accepted; anything else is an error.
func (p *NetworkProtocol) UnmarshalTOML(i interface{}) error {
	switch v := i.(type) {
	case []byte:
		*p = matchProtocol(string(unquoteBytes(v)))
		return nil
	case string:
		*p = matchProtocol(string(unquoteBytes([]byte(v))))
		return nil
	default:
		return fmt.Errorf("network/protocol: value not in valid format")
	}
}

// UnmarshalText decodes a text value into the protocol.
func (p *NetworkProtocol) UnmarshalText(b []byte) error {
	*p = matchProtocol(string(unquoteBytes(b)))
	return nil
}

// UnmarshalCBOR decodes a raw-text CBOR payload into the protocol,
// mirroring MarshalCBOR's raw-text encoding.
func (p *NetworkProtocol) UnmarshalCBOR(b []byte) error {
	*p = matchProtocol(string(unquoteBytes(b)))
	return nil
}
