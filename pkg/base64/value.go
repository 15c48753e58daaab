package base64

import (
	"math/big"
)

// Encoded is a value in the padded standard base64 alphabet, as used for
// the "x5c" header parameter.
type Encoded string

// NewEncoded returns the standard encoding of b.
func NewEncoded(b []byte) Encoded {
	return Encoded(StdEncode(b))
}

// Bytes returns the decoded bytes of the value.
func (e Encoded) Bytes() []byte {
	return Decode(string(e))
}

// Text returns the decoded bytes interpreted as UTF-8 text.
func (e Encoded) Text() string {
	return string(e.Bytes())
}

// BigInt returns the decoded bytes interpreted as an unsigned big-endian
// integer.
func (e Encoded) BigInt() *big.Int {
	return new(big.Int).SetBytes(e.Bytes())
}

// String returns the encoded text.
func (e Encoded) String() string {
	return string(e)
}

// EncodedURL is a value in the unpadded base64url alphabet. Every segment
// of a compact serialization, and most binary header and key parameters,
// are of this form.
type EncodedURL string

// NewEncodedURL returns the base64url encoding of b.
func NewEncodedURL(b []byte) EncodedURL {
	return EncodedURL(URLEncode(b))
}

// EncodedURLOf returns the base64url encoding of the UTF-8 bytes of s.
func EncodedURLOf(s string) EncodedURL {
	return NewEncodedURL([]byte(s))
}

// EncodedURLOfInt returns the base64url encoding of the big-endian, minimal
// length representation of n, as used for RSA and elliptic curve key
// parameters.
func EncodedURLOfInt(n *big.Int) EncodedURL {
	return NewEncodedURL(n.Bytes())
}

// Bytes returns the decoded bytes of the value.
func (e EncodedURL) Bytes() []byte {
	return Decode(string(e))
}

// Text returns the decoded bytes interpreted as UTF-8 text.
func (e EncodedURL) Text() string {
	return string(e.Bytes())
}

// BigInt returns the decoded bytes interpreted as an unsigned big-endian
// integer.
func (e EncodedURL) BigInt() *big.Int {
	return new(big.Int).SetBytes(e.Bytes())
}

// IsEmpty reports whether the value encodes no bytes.
func (e EncodedURL) IsEmpty() bool {
	return e == ""
}

// String returns the encoded text.
func (e EncodedURL) String() string {
	return string(e)
}
