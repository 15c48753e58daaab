// Package base64 provides the base64 and base64url codecs used throughout
// the JOSE packages, as defined in RFC 4648 Sections 4 and 5.
//
// Unlike encoding/base64, the codec in this package maps digits to and from
// characters using only arithmetic on the value, with no data dependent
// branches or table lookups, so that secret key material can be encoded and
// decoded in constant time.
//
// Encoding with the URL-safe alphabet never emits padding. Decoding accepts
// either alphabet, ignores padding and any other non-alphabet characters,
// and never fails.
//
// http://www.rfc-editor.org/rfc/rfc4648#section-5
package base64
