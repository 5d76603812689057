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

import "encoding/json"

// MarshalJSON returns the protocol's String() wrapped in a JSON string,
// or `""` for NetworkEmpty / an undefined value.
func (p NetworkProtocol) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// MarshalYAML returns the protocol's String() for YAML encoding.
func (p NetworkProtocol) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// MarshalTOML returns the protocol's String() as raw bytes, matching how
// socket/config.Server renders this field in generated TOML samples.
func (p NetworkProtocol) MarshalTOML() ([]byte, error) {
	return []byte(p.String()), nil
}

// MarshalText returns the protocol's String() as raw bytes.
func (p NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// MarshalCBOR returns the protocol's String() as raw bytes. This mirrors
// MarshalText rather than wrapping the string in a CBOR text-string
// header, so config loaders that read the raw record back as text still
// recognize it without a CBOR decoder.
func (p NetworkProtocol) MarshalCBOR() ([]byte, error) {
	return []byte(p.String()), nil
}
