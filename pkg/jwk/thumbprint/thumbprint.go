package thumbprint

import (
	"bytes"
	"crypto"
	"encoding/json"
	"fmt"

	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/jwk"
)

// required lists the required members of each key type, ordered
// lexicographically.
//
// https://datatracker.ietf.org/doc/html/rfc7638#section-3.2
var required = map[string][]jwk.ParameterName{
	jwk.TypeEC:    {jwk.Curve, jwk.KeyType, jwk.X, jwk.Y},
	jwk.TypeRSA:   {jwk.E, jwk.KeyType, jwk.N},
	jwk.TypeOctet: {jwk.K, jwk.KeyType},
	jwk.TypeOKP:   {jwk.Curve, jwk.KeyType, jwk.X},
}

// Generate returns the JWK Thumbprint for the given JWK following
// the steps defined in RFC 7638.
func Generate(key *jwk.Key, h crypto.Hash) ([]byte, error) {
	names, ok := required[key.Type()]
	if !ok {
		return nil, errcode.New(errcode.Argument, errcode.ThumbprintKey, key.Type())
	}

	// 1. Construct a JSON object [RFC7159] containing only the required
	// members of a JWK representing the key and with no whitespace or
	// line breaks before or after any syntactic elements and with the
	// required members ordered lexicographically by the Unicode
	// [UNICODE] code points of the member names.
	//
	// (This JSON object is itself a legal JWK representation of the key.)
	b := bytes.NewBuffer(nil)

	b.WriteRune('{')

	for i, name := range names {
		value, ok := key.Param(name)
		if !ok {
			return nil, errcode.New(errcode.Argument, errcode.KeyMissing, name)
		}

		if i > 0 {
			b.WriteRune(',')
		}

		b.WriteRune('"')
		b.WriteString(name)
		b.WriteRune('"')
		b.WriteRune(':')

		v, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("thumbprint: failed to encode %q: %w", name, err)
		}
		b.Write(v)
	}

	b.WriteRune('}')

	// 2. Hash the octets of the UTF-8 representation of this JSON object
	// with a cryptographic hash function H.
	//
	// For example, SHA-256 might be used as H. If none is specified,
	// SHA-256 is used.
	if h == 0 {
		h = crypto.SHA256
	}

	if !h.Available() {
		return nil, fmt.Errorf("thumbprint: hash function %v is not available", h)
	}

	hash := h.New()

	_, err := hash.Write(b.Bytes())
	if err != nil {
		return nil, err
	}

	return hash.Sum(nil), nil
}

// GenerateString returns the JWK Thumbprint for the given JWK following
// the steps defined in RFC 7638 as a base64url encoded string.
func GenerateString(key *jwk.Key, h crypto.Hash) (string, error) {
	thumbprint, err := Generate(key, h)
	if err != nil {
		return "", err
	}

	return base64.URLEncode(thumbprint), nil
}
