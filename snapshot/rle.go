// This file is part of zxfleet.
//
// zxfleet is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// zxfleet is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with zxfleet.  If not, see <https://www.gnu.org/licenses/>.

package snapshot

import (
	"github.com/zxfleet/core/zxerrors"
)

// escapeByte, doubled (0xED 0xED), is the marker that introduces a run-length
// token in the Z80 compressed memory block encoding. The run/escape
// scheme below generalises the plain (byte,count) pair RLE used
// elsewhere in the codebase (the teacher's crunched.quick data type) to
// the Z80 format's specific escape rule: a run is only ever emitted as
// "ED ED <count> <value>", and any literal occurrence of two or more
// 0xED bytes in a row must itself be escaped this way so the decoder
// never mistakes literal data for a token.
const escapeByte = 0xED

// minRunLength is the shortest run (of any byte) worth encoding as a
// token; shorter runs are cheaper to emit as literals. A run of two or
// more 0xED bytes is always encoded as a token regardless of length,
// since two literal 0xED bytes are themselves indistinguishable from the
// start of a token.
const minRunLength = 5

// maxRunLength is the largest run a single token can represent (an
// 8-bit count field).
const maxRunLength = 255

// Compress encodes page using the Z80 RLE scheme: runs of minRunLength
// or more identical bytes, and any run of two or more 0xED bytes
// regardless of length, are replaced by "ED ED <count> <value>" tokens;
// every other byte is copied literally.
func Compress(page []byte) []byte {
	out := make([]byte, 0, len(page))

	i := 0
	for i < len(page) {
		v := page[i]
		runLen := 1
		for i+runLen < len(page) && page[i+runLen] == v && runLen < maxRunLength {
			runLen++
		}

		shouldEscape := runLen >= minRunLength || (v == escapeByte && runLen >= 2)

		if shouldEscape {
			out = append(out, escapeByte, escapeByte, byte(runLen), v)
			i += runLen
			continue
		}

		if v == escapeByte && i+1 < len(page) {
			// A lone 0xED carries the next byte with it as a literal, so
			// that byte can never start a token the decoder would read
			// as part of an "ED ED" marker.
			out = append(out, v, page[i+1])
			i += 2
			continue
		}

		out = append(out, v)
		i++
	}

	return out
}

// Decompress reverses Compress. size is the expected uncompressed length
// (always PageSize for a Z80 memory block); a mismatch is reported but
// the best-effort decoded bytes are still returned so callers can choose
// how strict to be.
func Decompress(data []byte, size int) ([]byte, error) {
	out := make([]byte, 0, size)

	i := 0
	for i < len(data) {
		if data[i] == escapeByte && i+1 < len(data) && data[i+1] == escapeByte {
			if i+3 >= len(data) {
				return nil, zxerrors.New(zxerrors.InvalidFormat, "truncated RLE token at offset %d", i)
			}
			count := data[i+2]
			value := data[i+3]
			if count == 0 {
				return nil, zxerrors.New(zxerrors.InvalidFormat, "RLE token has illegal zero count at offset %d", i)
			}
			for n := byte(0); n < count; n++ {
				out = append(out, value)
			}
			i += 4
			continue
		}

		out = append(out, data[i])
		i++
	}

	if len(out) != size {
		return out, zxerrors.New(zxerrors.InvalidFormat, "decompressed block is %d bytes, expected %d", len(out), size)
	}
	return out, nil
}
