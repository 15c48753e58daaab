package base64

import (
	"math"

	"github.com/trustkit/jose/pkg/errcode"
)

// EncodedLen returns the length of the encoding of n source bytes. The
// standard alphabet is padded to a multiple of four characters, the URL-safe
// alphabet is never padded.
//
// An error is returned if the length cannot be represented as an int.
func EncodedLen(n int, urlSafe bool) (int, error) {
	if n < 0 || n/3 > (math.MaxInt-4)/4 {
		return 0, errcode.New(errcode.Argument, errcode.Base64Overflow, n)
	}
	if !urlSafe {
		return (n + 2) / 3 * 4, nil
	}
	size := n / 3 * 4
	switch n % 3 {
	case 1:
		size += 2
	case 2:
		size += 3
	}
	return size, nil
}

// Encode returns the base64 encoding of src, using the URL-safe alphabet
// without padding if urlSafe is set, or the standard alphabet with padding
// otherwise.
//
// Every 6-bit group is mapped to its character without branching on, or
// indexing a table with, the value, so key material can be encoded without
// leaking it through timing.
func Encode(src []byte, urlSafe bool) string {
	size, err := EncodedLen(len(src), urlSafe)
	if err != nil {
		panic(err)
	}

	digit := encodeStd
	if urlSafe {
		digit = encodeURL
	}

	dst := make([]byte, 0, size)

	n := len(src) / 3 * 3
	for i := 0; i < n; i += 3 {
		v := uint32(src[i])<<16 | uint32(src[i+1])<<8 | uint32(src[i+2])
		dst = append(dst,
			digit(int32(v>>18&0x3f)),
			digit(int32(v>>12&0x3f)),
			digit(int32(v>>6&0x3f)),
			digit(int32(v&0x3f)),
		)
	}

	switch len(src) - n {
	case 1:
		v := uint32(src[n])
		dst = append(dst,
			digit(int32(v>>2)),
			digit(int32(v<<4&0x3f)),
		)
		if !urlSafe {
			dst = append(dst, '=', '=')
		}
	case 2:
		v := uint32(src[n])<<8 | uint32(src[n+1])
		dst = append(dst,
			digit(int32(v>>10)),
			digit(int32(v>>4&0x3f)),
			digit(int32(v<<2&0x3f)),
		)
		if !urlSafe {
			dst = append(dst, '=')
		}
	}

	return string(dst)
}

// StdEncode returns the padded standard base64 encoding of src.
func StdEncode(src []byte) string {
	return Encode(src, false)
}

// URLEncode returns the unpadded base64url encoding of src, as defined in
// RFC 4648 Section 5 and used by RFC 7515.
func URLEncode(src []byte) string {
	return Encode(src, true)
}

// Decode returns the bytes represented by s, which may use either the
// standard or the URL-safe alphabet (or a mix of both).
//
// Decoding never fails: any character that is not a digit of either alphabet,
// such as padding, line separators or white space, is skipped. Digits are
// consumed in groups of four yielding three bytes; a trailing group of two or
// three digits yields one or two bytes, a single trailing digit is dropped.
func Decode(s string) []byte {
	dst := make([]byte, 0, len(s)/4*3+2)

	var (
		acc uint32
		n   int
	)

	for i := 0; i < len(s); i++ {
		v := decodeDigit(int32(s[i]))
		// Only the validity of the character is branched on, never its value.
		if v < 0 {
			continue
		}
		acc = acc<<6 | uint32(v)
		n++
		if n == 4 {
			dst = append(dst, byte(acc>>16), byte(acc>>8), byte(acc))
			acc, n = 0, 0
		}
	}

	switch n {
	case 2:
		dst = append(dst, byte(acc>>4))
	case 3:
		dst = append(dst, byte(acc>>10), byte(acc>>2))
	}

	return dst
}

// The functions below use arithmetic right shifts of small differences to
// obtain all-ones (-1) or all-zeros masks: for 0 <= v < 256, (k - v) >> 8 is
// -1 exactly when v > k.

// encodeStd maps a 6-bit value to the standard alphabet A-Z a-z 0-9 + /.
func encodeStd(v int32) byte {
	diff := int32('A')
	diff += ((25 - v) >> 8) & 6
	diff -= ((51 - v) >> 8) & 75
	diff -= ((61 - v) >> 8) & 15
	diff += ((62 - v) >> 8) & 3
	return byte(v + diff)
}

// encodeURL maps a 6-bit value to the URL-safe alphabet A-Z a-z 0-9 - _.
func encodeURL(v int32) byte {
	diff := int32('A')
	diff += ((25 - v) >> 8) & 6
	diff -= ((51 - v) >> 8) & 75
	diff -= ((61 - v) >> 8) & 13
	diff += ((62 - v) >> 8) & 49
	return byte(v + diff)
}

// decodeDigit maps a character of either alphabet to its 6-bit value, or
// returns -1 if c is not a base64 digit. Each range test computes
// (lo-1 - c) & (c - (hi+1)), which is negative only for lo <= c <= hi.
func decodeDigit(c int32) int32 {
	ret := int32(-1)
	ret += (((0x40 - c) & (c - 0x5b)) >> 8) & (c - 64) // A-Z
	ret += (((0x60 - c) & (c - 0x7b)) >> 8) & (c - 70) // a-z
	ret += (((0x2f - c) & (c - 0x3a)) >> 8) & (c + 5)  // 0-9
	ret += (((0x2a - c) & (c - 0x2c)) >> 8) & 63       // +
	ret += (((0x2e - c) & (c - 0x30)) >> 8) & 64       // /
	ret += (((0x2c - c) & (c - 0x2e)) >> 8) & 63       // -
	ret += (((0x5e - c) & (c - 0x60)) >> 8) & 64       // _
	return ret
}
