package header

import (
	"bytes"
	"encoding/json"
	"net/url"

	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/jwa"
	"github.com/trustkit/jose/pkg/jwk"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Parse parses a header from its JSON object, choosing the variant by the
// kind of its "alg" parameter: "none" yields a *Plain, a signature
// algorithm a *Signature and a key management algorithm an *Encryption.
//
// The origin is the encoded segment the JSON was decoded from, and may be
// empty for headers that did not come from a compact serialization.
func Parse(data []byte, origin base64.EncodedURL) (Header, error) {
	r, err := decodeMembers(data)
	if err != nil {
		return nil, err
	}

	alg, err := r.algorithm(ParamAlgorithm)
	if err != nil {
		return nil, err
	}

	switch {
	case alg == jwa.None:
		return parsePlain(r, origin)
	case alg.Kind() == jwa.Signature:
		return parseSignature(r, alg, origin)
	case alg.Kind() == jwa.KeyManagement:
		return parseEncryption(r, alg, origin)
	default:
		return nil, errcode.New(errcode.Argument, errcode.HeaderAlgorithm, alg.String(), "JOSE")
	}
}

// Decode decodes and parses an encoded header segment, which is kept as the
// origin of the header.
func Decode(segment base64.EncodedURL) (Header, error) {
	return Parse(segment.Bytes(), segment)
}

// ParsePlain parses a plain header, whose algorithm must be "none".
func ParsePlain(data []byte, origin base64.EncodedURL) (*Plain, error) {
	r, err := decodeMembers(data)
	if err != nil {
		return nil, err
	}
	return parsePlain(r, origin)
}

// DecodePlain decodes and parses an encoded plain header segment.
func DecodePlain(segment base64.EncodedURL) (*Plain, error) {
	return ParsePlain(segment.Bytes(), segment)
}

// ParseSignature parses a signature header.
func ParseSignature(data []byte, origin base64.EncodedURL) (*Signature, error) {
	r, err := decodeMembers(data)
	if err != nil {
		return nil, err
	}
	alg, err := r.algorithm(ParamAlgorithm)
	if err != nil {
		return nil, err
	}
	return parseSignature(r, alg, origin)
}

// DecodeSignature decodes and parses an encoded signature header segment.
func DecodeSignature(segment base64.EncodedURL) (*Signature, error) {
	return ParseSignature(segment.Bytes(), segment)
}

// ParseEncryption parses an encryption header.
func ParseEncryption(data []byte, origin base64.EncodedURL) (*Encryption, error) {
	r, err := decodeMembers(data)
	if err != nil {
		return nil, err
	}
	alg, err := r.algorithm(ParamAlgorithm)
	if err != nil {
		return nil, err
	}
	return parseEncryption(r, alg, origin)
}

// DecodeEncryption decodes and parses an encoded encryption header segment.
func DecodeEncryption(segment base64.EncodedURL) (*Encryption, error) {
	return ParseEncryption(segment.Bytes(), segment)
}

func parsePlain(r rawMembers, origin base64.EncodedURL) (*Plain, error) {
	alg, err := r.algorithm(ParamAlgorithm)
	if err != nil {
		return nil, err
	}
	if alg != jwa.None {
		return nil, errcode.New(errcode.Argument, errcode.HeaderAlgorithm, alg.String(), "plain")
	}

	b := NewPlainBuilder()
	for _, name := range r.names() {
		ok, err := b.h.common.parseMember(r, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			if err := b.parseCustom(r, name); err != nil {
				return nil, err
			}
		}
	}

	h, err := b.Build()
	if err != nil {
		return nil, err
	}
	h.origin = origin
	return h, nil
}

func parseSignature(r rawMembers, alg jwa.Algorithm, origin base64.EncodedURL) (*Signature, error) {
	b := NewSignatureBuilder(alg)
	for _, name := range r.names() {
		ok, err := b.h.secure.parseMember(r, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			if err := b.parseCustom(r, name); err != nil {
				return nil, err
			}
		}
	}

	h, err := b.Build()
	if err != nil {
		return nil, err
	}
	h.origin = origin
	return h, nil
}

func parseEncryption(r rawMembers, alg jwa.Algorithm, origin base64.EncodedURL) (*Encryption, error) {
	enc, err := r.algorithm(ParamEncryption)
	if err != nil {
		return nil, err
	}

	b := NewEncryptionBuilder(alg, enc)
	for _, name := range r.names() {
		ok, err := b.h.parseMember(r, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			if err := b.parseCustom(r, name); err != nil {
				return nil, err
			}
		}
	}

	h, err := b.Build()
	if err != nil {
		return nil, err
	}
	h.origin = origin
	return h, nil
}

// rawMembers are the members of a JSON object, not yet decoded.
type rawMembers map[string]json.RawMessage

func decodeMembers(data []byte) (rawMembers, error) {
	var r rawMembers
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.HeaderMalformed, err)
	}
	if r == nil {
		return nil, errcode.New(errcode.Argument, errcode.HeaderMalformed)
	}
	return r, nil
}

// names returns the member names sorted, so parse errors are deterministic.
func (r rawMembers) names() []string {
	names := maps.Keys(r)
	slices.Sort(names)
	return names
}

// value decodes a member into a generic value, keeping numbers exact.
func (r rawMembers) value(name string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(r[name]))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.HeaderMalformed, err)
	}
	return v, nil
}

func (r rawMembers) typeError(name string) error {
	v, err := r.value(name)
	if err != nil {
		return err
	}
	return errcode.New(errcode.Argument, errcode.HeaderParameterType, name, v)
}

func (r rawMembers) string(name string) (string, error) {
	var s string
	if err := json.Unmarshal(r[name], &s); err != nil {
		return "", r.typeError(name)
	}
	return s, nil
}

func (r rawMembers) strings(name string) ([]string, error) {
	var s []string
	if err := json.Unmarshal(r[name], &s); err != nil {
		return nil, r.typeError(name)
	}
	return s, nil
}

func (r rawMembers) int(name string) (int, error) {
	var n int
	if err := json.Unmarshal(r[name], &n); err != nil {
		return 0, r.typeError(name)
	}
	return n, nil
}

func (r rawMembers) algorithm(name string) (jwa.Algorithm, error) {
	if _, ok := r[name]; !ok {
		return 0, errcode.New(errcode.Argument, errcode.HeaderMissing, name)
	}
	s, err := r.string(name)
	if err != nil {
		return 0, err
	}
	return jwa.ParseAlgorithm(s)
}

func (r rawMembers) url(name string) (*url.URL, error) {
	s, err := r.string(name)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.HeaderParameterValue, err, name, s)
	}
	return u, nil
}

func (r rawMembers) encodedURL(name string) (base64.EncodedURL, error) {
	s, err := r.string(name)
	if err != nil {
		return "", err
	}
	return base64.EncodedURL(s), nil
}

func (r rawMembers) certificates(name string) ([]base64.Encoded, error) {
	var items []any
	if err := json.Unmarshal(r[name], &items); err != nil {
		return nil, r.typeError(name)
	}
	chain := make([]base64.Encoded, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errcode.New(errcode.Argument, errcode.HeaderCertificateItem, i)
		}
		chain = append(chain, base64.Encoded(s))
	}
	return chain, nil
}

func (r rawMembers) key(name string) (*jwk.Key, error) {
	if len(r[name]) == 0 || r[name][0] != '{' {
		return nil, r.typeError(name)
	}
	k, err := jwk.ParseKey(r[name])
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.HeaderParameterValue, err, name, string(r[name]))
	}
	return k, nil
}
