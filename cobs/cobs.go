// Package cobs implements Consistent Overhead Byte Stuffing: encoding an
// arbitrary byte string into a sequence of segments that never contain a
// 0x00 byte, and decoding it back. The 0x00 wire delimiter itself is not
// part of this package's output; framing layers append it.
package cobs

import (
	"bytes"
	"errors"
)

// ErrContainsZero is returned by Decode when the input contains a 0x00
// byte, which is never valid in a COBS-encoded segment.
var ErrContainsZero = errors.New("cobs: input contains zero byte")

// ErrTruncated is returned by Decode when a code byte promises more bytes
// than remain in the input.
var ErrTruncated = errors.New("cobs: truncated segment")

// EncodedLen returns the maximum number of bytes Encode can produce for an
// input of length n > 0. For n == 0 it returns 0, while Encode emits a
// single code byte.
func EncodedLen(n int) int {
	return (n+253)/254 + n
}

// Encode returns the COBS encoding of src. The result never contains a 0x00
// byte. Callers that frame on the wire append the 0x00 delimiter themselves;
// Encode does not.
func Encode(src []byte) []byte {
	dst := make([]byte, 0, EncodedLen(len(src)))
	dst = append(dst, 1) // code byte for the first (possibly only) segment
	codePos := 0
	sawMaxRun := false

	for _, b := range src {
		sawMaxRun = false
		if b == 0x00 {
			codePos = len(dst)
			dst = append(dst, 1)
			continue
		}
		dst = append(dst, b)
		dst[codePos]++
		if dst[codePos] == 0xFF {
			codePos = len(dst)
			dst = append(dst, 1)
			sawMaxRun = true
		}
	}
	// A run that saturated at 0xFF on the very last input byte leaves a
	// fresh code byte for a segment with nothing in it; drop it rather
	// than emit a trailing empty segment.
	if sawMaxRun {
		dst = dst[:len(dst)-1]
	}
	return dst
}

// Decode writes the COBS decoding of src into dst, which must be at least
// len(src) bytes, and returns the number of bytes written. src must not
// contain 0x00.
func Decode(dst, src []byte) (int, error) {
	n := 0
	i := 0
	pendingZero := false
	for i < len(src) {
		code := src[i]
		if code == 0x00 {
			return 0, ErrContainsZero
		}
		i++
		run := int(code) - 1
		if i+run > len(src) {
			return 0, ErrTruncated
		}
		if bytes.IndexByte(src[i:i+run], 0x00) >= 0 {
			return 0, ErrContainsZero
		}
		if pendingZero {
			if n >= len(dst) {
				return 0, ErrTruncated
			}
			dst[n] = 0x00
			n++
		}
		if n+run > len(dst) {
			return 0, ErrTruncated
		}
		copy(dst[n:], src[i:i+run])
		n += run
		i += run
		pendingZero = code < 0xFF && i < len(src)
	}
	return n, nil
}

// DecodeBytes is an allocating convenience wrapper around Decode.
func DecodeBytes(src []byte) ([]byte, error) {
	dst := make([]byte, len(src))
	n, err := Decode(dst, src)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}
