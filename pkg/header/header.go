package header

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/jwa"
	"golang.org/x/exp/slices"
)

// There are three classes of Header Parameter names: Registered Header
// Parameter names, Public Header Parameter names, and Private Header
// Parameter names. Only registered names are reserved, every other name is
// a custom parameter.
//
// https://datatracker.ietf.org/doc/html/rfc7515#section-4
type ParameterName = string

// Registered Header Parameter Names shared by every header.
//
// https://datatracker.ietf.org/doc/html/rfc7515#section-4.1
const (
	ParamAlgorithm   ParameterName = "alg"
	ParamType        ParameterName = "typ"
	ParamContentType ParameterName = "cty"
)

// Registered Header Parameter Names of signature and encryption headers.
//
// https://datatracker.ietf.org/doc/html/rfc7515#section-4.1
const (
	ParamJWKSetURL                       ParameterName = "jku"
	ParamJSONWebKey                      ParameterName = "jwk"
	ParamX509URL                         ParameterName = "x5u"
	ParamX509CertificateSHA1Thumbprint   ParameterName = "x5t"
	ParamX509CertificateSHA256Thumbprint ParameterName = "x5t#S256"
	ParamX509CertificateChain            ParameterName = "x5c"
	ParamKeyID                           ParameterName = "kid"
	ParamCritical                        ParameterName = "crit"
)

// Registered Header Parameter Names of encryption headers.
//
// https://www.rfc-editor.org/rfc/rfc7516.html#section-4.1
// https://www.rfc-editor.org/rfc/rfc7518.html#section-4.6.1
const (
	ParamEncryption           ParameterName = "enc"
	ParamEphemeralPublicKey   ParameterName = "epk"
	ParamCompression          ParameterName = "zip"
	ParamAgreementPartyUInfo  ParameterName = "apu"
	ParamAgreementPartyVInfo  ParameterName = "apv"
	ParamPBES2SaltInput       ParameterName = "p2s"
	ParamPBES2Count           ParameterName = "p2c"
	ParamInitializationVector ParameterName = "iv"
	ParamSenderKeyID          ParameterName = "skid"
)

// CompressionDeflate is the only registered "zip" value.
const CompressionDeflate = "DEF"

var (
	commonNames = []ParameterName{
		ParamAlgorithm, ParamType, ParamContentType,
	}
	secureNames = append(slices.Clone(commonNames),
		ParamJWKSetURL, ParamJSONWebKey, ParamX509URL,
		ParamX509CertificateSHA1Thumbprint, ParamX509CertificateSHA256Thumbprint,
		ParamX509CertificateChain, ParamKeyID, ParamCritical,
	)
	encryptionNames = append(slices.Clone(secureNames),
		ParamEncryption, ParamEphemeralPublicKey, ParamCompression,
		ParamAgreementPartyUInfo, ParamAgreementPartyVInfo,
		ParamPBES2SaltInput, ParamPBES2Count,
		ParamInitializationVector, ParamSenderKeyID,
	)
)

// ReservedNames returns every registered parameter name that may not be
// used for a custom parameter in any header.
func ReservedNames() []ParameterName {
	return slices.Clone(encryptionNames)
}

// Type is the "typ" header parameter, the media type of the complete JOSE
// object.
type Type string

const (
	TypeJWS Type = "JWS"
	TypeJWE Type = "JWE"
	TypeJWT Type = "JWT"
)

// Header is the JOSE header of a plain, signed or encrypted object.
//
// Headers are immutable once built or parsed and safe for concurrent use.
type Header interface {
	// Algorithm returns the "alg" parameter.
	Algorithm() jwa.Algorithm

	// Type returns the "typ" parameter, or the empty string.
	Type() Type

	// ContentType returns the "cty" parameter, or the empty string.
	ContentType() string

	// Parameter returns the value of a reserved or custom parameter.
	Parameter(name ParameterName) (any, bool)

	// Parameters returns every parameter included in the header.
	Parameters() map[ParameterName]any

	// Included returns the sorted names of every parameter that
	// MarshalJSON emits.
	Included() []ParameterName

	// Origin returns the encoded segment the header was parsed from, or the
	// empty string if it was built.
	Origin() base64.EncodedURL

	// MarshalJSON returns the JSON object of the header.
	MarshalJSON() ([]byte, error)

	// Encoded returns the origin if there is one, and the base64url
	// encoding of MarshalJSON otherwise.
	Encoded() (base64.EncodedURL, error)
}

// member is a header parameter with its name, in emission order.
type member struct {
	name  ParameterName
	value any
}

// common holds the parameters shared by every header variant.
type common struct {
	alg    jwa.Algorithm
	typ    Type
	cty    string
	custom map[ParameterName]any
	origin base64.EncodedURL
}

func (c *common) Algorithm() jwa.Algorithm {
	return c.alg
}

func (c *common) Type() Type {
	return c.typ
}

func (c *common) ContentType() string {
	return c.cty
}

func (c *common) Origin() base64.EncodedURL {
	return c.origin
}

// Custom returns the custom (non-reserved) parameters of the header.
func (c *common) Custom() map[ParameterName]any {
	m := make(map[ParameterName]any, len(c.custom))
	for name, value := range c.custom {
		m[name] = value
	}
	return m
}

func (c *common) algorithmMember() []member {
	return []member{{ParamAlgorithm, c.alg.String()}}
}

func (c *common) typeMembers(ms []member) []member {
	if c.typ != "" {
		ms = append(ms, member{ParamType, string(c.typ)})
	}
	if c.cty != "" {
		ms = append(ms, member{ParamContentType, c.cty})
	}
	return ms
}

func (c *common) customMembers(ms []member) []member {
	names := make([]ParameterName, 0, len(c.custom))
	for name := range c.custom {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		ms = append(ms, member{name, c.custom[name]})
	}
	return ms
}

func (c *common) clone() common {
	cp := *c
	cp.custom = make(map[ParameterName]any, len(c.custom))
	for name, value := range c.custom {
		cp.custom[name] = value
	}
	cp.origin = ""
	return cp
}

func included(ms []member) []ParameterName {
	names := make([]ParameterName, 0, len(ms))
	for _, m := range ms {
		names = append(names, m.name)
	}
	slices.Sort(names)
	return names
}

func lookup(ms []member, name ParameterName) (any, bool) {
	for _, m := range ms {
		if m.name == name {
			return m.value, true
		}
	}
	return nil, false
}

func parameters(ms []member) map[ParameterName]any {
	params := make(map[ParameterName]any, len(ms))
	for _, m := range ms {
		params[m.name] = m.value
	}
	return params
}

// marshalMembers writes the members as a compact JSON object in the given
// order, which encoding/json cannot do for a map.
func marshalMembers(ms []member) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, m := range ms {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(m.name); err != nil {
			return nil, fmt.Errorf("failed to encode header parameter name %q: %w", m.name, err)
		}
		trimNewline(&buf)
		buf.WriteByte(':')
		if err := enc.Encode(m.value); err != nil {
			return nil, fmt.Errorf("failed to encode header parameter %q: %w", m.name, err)
		}
		trimNewline(&buf)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func trimNewline(buf *bytes.Buffer) {
	if b := buf.Bytes(); len(b) > 0 && b[len(b)-1] == '\n' {
		buf.Truncate(len(b) - 1)
	}
}

func encoded(origin base64.EncodedURL, ms []member) (base64.EncodedURL, error) {
	if origin != "" {
		return origin, nil
	}
	b, err := marshalMembers(ms)
	if err != nil {
		return "", err
	}
	return base64.NewEncodedURL(b), nil
}

// validator accumulates the first error recorded while building a header.
type validator struct {
	reserved []ParameterName
	err      error
}

func (v *validator) fail(err error) {
	if v.err == nil {
		v.err = err
	}
}

func (v *validator) custom(custom map[ParameterName]any, name ParameterName, value any) {
	if slices.Contains(v.reserved, name) {
		v.fail(errcode.New(errcode.Argument, errcode.HeaderReservedName, name))
		return
	}
	custom[name] = value
}

func (v *validator) algorithm(alg jwa.Algorithm, ok bool, variant string) {
	if !ok {
		v.fail(errcode.New(errcode.Argument, errcode.HeaderAlgorithm, alg.String(), variant))
	}
}
