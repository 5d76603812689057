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

package tcp

// chunkSize is the growth increment applied to a connection's read buffer
// each time it runs dry, matching spec.md §4.7's CHUNK (4 KiB).
const chunkSize = 4096

// readBuffer is the per-connection bookkeeping spec.md §4.7 describes: data
// holds every byte read from the socket that the caller has not yet
// consumed, nValid is how much of data is populated, nConsumed is how much
// of that the caller has already taken via take. nConsumed <= nValid always.
type readBuffer struct {
	data      []byte
	nValid    int
	nConsumed int
}

// has reports whether a caller can be served from the buffer without a new
// socket read.
func (b *readBuffer) has() bool {
	return b.nConsumed < b.nValid
}

// compact discards the already-consumed prefix, copying the unconsumed tail
// [nConsumed, nValid) to the front of a fresh slice. This is spec.md §4.7
// step 1: "copy the unconsumed tail to a fresh buffer, free the old, and
// reset counters with the tail preserved at the front."
func (b *readBuffer) compact() {
	tail := b.nValid - b.nConsumed
	fresh := make([]byte, tail, tail+chunkSize)
	copy(fresh, b.data[b.nConsumed:b.nValid])
	b.data = fresh
	b.nValid = tail
	b.nConsumed = 0
}

// grow compacts away any consumed prefix, extends data by chunkSize, and
// returns the writable tail a socket read should fill. Spec.md §4.7 step 2.
func (b *readBuffer) grow() []byte {
	if b.nConsumed > 0 {
		b.compact()
	}

	need := b.nValid + chunkSize
	if cap(b.data) < need {
		fresh := make([]byte, b.nValid, need)
		copy(fresh, b.data[:b.nValid])
		b.data = fresh
	}
	b.data = b.data[:need]

	return b.data[b.nValid:need]
}

// commit records n freshly read bytes as valid, growing the window a
// caller's take can draw from.
func (b *readBuffer) commit(n int) {
	b.nValid += n
}

// take copies as much of the unconsumed tail into p as fits, advancing
// nConsumed. Once everything valid has been consumed, the buffer resets to
// empty so the next grow starts from a clean slate instead of compacting a
// zero-length tail forever.
func (b *readBuffer) take(p []byte) int {
	n := copy(p, b.data[b.nConsumed:b.nValid])
	b.nConsumed += n

	if b.nConsumed == b.nValid {
		b.nConsumed, b.nValid = 0, 0
		b.data = b.data[:0]
	}

	return n
}
