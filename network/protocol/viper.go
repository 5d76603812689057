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
	"fmt"
	"math"
	"reflect"
)

var protocolType = reflect.TypeOf(NetworkProtocol(0))

func toInt64(data interface{}) (int64, bool) {
	switch v := data.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

func toUint64(data interface{}) (uint64, bool) {
	switch v := data.(type) {
	case uint:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	default:
		return 0, false
	}
}

// ViperDecoderHook returns a mapstructure-shaped decode hook that converts
// strings and integers into a NetworkProtocol when the destination field
// has that type, and passes every other (from, to, data) triple through
// unchanged. It is meant to be registered with
// viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(protocol.ViperDecoderHook())).
func ViperDecoderHook() func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != protocolType {
			return data, nil
		}

		switch from.Kind() {
		case reflect.String:
			s, k := data.(string)
			if !k {
				return data, nil
			}
			return Parse(s), nil

		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			v, k := toInt64(data)
			if !k {
				return data, nil
			}
			if v < int64(NetworkUnix) || v > int64(NetworkUnixGram) {
				return nil, fmt.Errorf("network/protocol: invalid value %d for NetworkProtocol", v)
			}
			return ParseInt64(v), nil

		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			v, k := toUint64(data)
			if !k {
				return data, nil
			}
			if v > math.MaxUint16 {
				return nil, fmt.Errorf("network/protocol: invalid value %d for NetworkProtocol", v)
			}
			if v < uint64(NetworkUnix) || v > uint64(NetworkUnixGram) {
				return nil, fmt.Errorf("network/protocol: invalid value %d for NetworkProtocol", v)
			}
			return ParseInt64(int64(v)), nil

		default:
			return data, nil
		}
	}
}
