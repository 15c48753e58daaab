package header

import (
	"net/url"

	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/jwa"
	"github.com/trustkit/jose/pkg/jwk"
	"golang.org/x/exp/slices"
)

// secure holds the key and certificate parameters shared by signature and
// encryption headers.
//
// https://datatracker.ietf.org/doc/html/rfc7515#section-4.1.2
type secure struct {
	common

	jku      *url.URL
	jwk      *jwk.Key
	x5u      *url.URL
	x5t      base64.EncodedURL
	x5tS256  base64.EncodedURL
	x5c      []base64.Encoded
	kid      string
	critical []string
}

// JWKSetURL returns the "jku" parameter, or nil.
func (s *secure) JWKSetURL() *url.URL {
	return cloneURL(s.jku)
}

// JWK returns the "jwk" parameter, or nil.
func (s *secure) JWK() *jwk.Key {
	return s.jwk
}

// X509URL returns the "x5u" parameter, or nil.
func (s *secure) X509URL() *url.URL {
	return cloneURL(s.x5u)
}

// X509Thumbprint returns the "x5t" parameter, the SHA-1 thumbprint of the
// DER encoded certificate.
func (s *secure) X509Thumbprint() base64.EncodedURL {
	return s.x5t
}

// X509ThumbprintS256 returns the "x5t#S256" parameter, the SHA-256
// thumbprint of the DER encoded certificate.
func (s *secure) X509ThumbprintS256() base64.EncodedURL {
	return s.x5tS256
}

// X509Chain returns the "x5c" parameter.
func (s *secure) X509Chain() []base64.Encoded {
	return slices.Clone(s.x5c)
}

// KeyID returns the "kid" parameter.
func (s *secure) KeyID() string {
	return s.kid
}

// Critical returns the "crit" parameter.
func (s *secure) Critical() []string {
	return slices.Clone(s.critical)
}

func (s *secure) secureMembers(ms []member) []member {
	if s.jku != nil {
		ms = append(ms, member{ParamJWKSetURL, s.jku.String()})
	}
	if s.jwk != nil {
		ms = append(ms, member{ParamJSONWebKey, s.jwk})
	}
	if s.x5u != nil {
		ms = append(ms, member{ParamX509URL, s.x5u.String()})
	}
	if s.x5t != "" {
		ms = append(ms, member{ParamX509CertificateSHA1Thumbprint, s.x5t.String()})
	}
	if s.x5tS256 != "" {
		ms = append(ms, member{ParamX509CertificateSHA256Thumbprint, s.x5tS256.String()})
	}
	if s.x5c != nil {
		chain := make([]string, len(s.x5c))
		for i, cert := range s.x5c {
			chain[i] = cert.String()
		}
		ms = append(ms, member{ParamX509CertificateChain, chain})
	}
	if s.kid != "" {
		ms = append(ms, member{ParamKeyID, s.kid})
	}
	if s.critical != nil {
		ms = append(ms, member{ParamCritical, slices.Clone(s.critical)})
	}
	return ms
}

func (s *secure) clone() secure {
	cp := *s
	cp.common = s.common.clone()
	cp.jku = cloneURL(s.jku)
	cp.x5u = cloneURL(s.x5u)
	cp.x5c = slices.Clone(s.x5c)
	cp.critical = slices.Clone(s.critical)
	return cp
}

func (s *secure) parseMember(r rawMembers, name string) (bool, error) {
	if ok, err := s.common.parseMember(r, name); ok {
		return true, err
	}

	var err error
	switch name {
	case ParamJWKSetURL:
		s.jku, err = r.url(name)
	case ParamJSONWebKey:
		s.jwk, err = r.key(name)
	case ParamX509URL:
		s.x5u, err = r.url(name)
	case ParamX509CertificateSHA1Thumbprint:
		s.x5t, err = r.encodedURL(name)
	case ParamX509CertificateSHA256Thumbprint:
		s.x5tS256, err = r.encodedURL(name)
	case ParamX509CertificateChain:
		s.x5c, err = r.certificates(name)
	case ParamKeyID:
		s.kid, err = r.string(name)
	case ParamCritical:
		s.critical, err = r.strings(name)
	default:
		return false, nil
	}
	return true, err
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	cp := *u
	if u.User != nil {
		user := *u.User
		cp.User = &user
	}
	return &cp
}

// Signature is the JOSE header of a JWS.
//
// https://datatracker.ietf.org/doc/html/rfc7515#section-4
type Signature struct {
	secure
}

var _ Header = (*Signature)(nil)

func (h *Signature) members() []member {
	ms := h.algorithmMember()
	ms = h.typeMembers(ms)
	ms = h.secureMembers(ms)
	return h.customMembers(ms)
}

func (h *Signature) Parameter(name ParameterName) (any, bool) {
	return lookup(h.members(), name)
}

func (h *Signature) Parameters() map[ParameterName]any {
	return parameters(h.members())
}

func (h *Signature) Included() []ParameterName {
	return included(h.members())
}

func (h *Signature) MarshalJSON() ([]byte, error) {
	return marshalMembers(h.members())
}

func (h *Signature) Encoded() (base64.EncodedURL, error) {
	return encoded(h.origin, h.members())
}

// Builder returns a builder initialized with the parameters of h. The
// origin is not carried over.
func (h *Signature) Builder() *SignatureBuilder {
	return &SignatureBuilder{
		h: Signature{secure: h.secure.clone()},
		v: validator{reserved: secureNames},
	}
}

// SignatureBuilder builds a *Signature header.
type SignatureBuilder struct {
	h Signature
	v validator
}

// NewSignatureBuilder returns a builder for a signature header with the
// given algorithm, which must be a signature algorithm other than "none".
func NewSignatureBuilder(alg jwa.Algorithm) *SignatureBuilder {
	b := &SignatureBuilder{
		h: Signature{secure: secure{common: common{
			alg:    alg,
			custom: map[ParameterName]any{},
		}}},
		v: validator{reserved: secureNames},
	}
	b.v.algorithm(alg, alg.Kind() == jwa.Signature && alg != jwa.None, "signature")
	return b
}

// Type sets the "typ" parameter.
func (b *SignatureBuilder) Type(typ Type) *SignatureBuilder {
	b.h.typ = typ
	return b
}

// ContentType sets the "cty" parameter.
func (b *SignatureBuilder) ContentType(cty string) *SignatureBuilder {
	b.h.cty = cty
	return b
}

// JWKSetURL sets the "jku" parameter.
func (b *SignatureBuilder) JWKSetURL(u *url.URL) *SignatureBuilder {
	b.h.jku = cloneURL(u)
	return b
}

// JWK sets the "jwk" parameter.
func (b *SignatureBuilder) JWK(key *jwk.Key) *SignatureBuilder {
	b.h.jwk = key
	return b
}

// X509URL sets the "x5u" parameter.
func (b *SignatureBuilder) X509URL(u *url.URL) *SignatureBuilder {
	b.h.x5u = cloneURL(u)
	return b
}

// X509Thumbprint sets the "x5t" parameter.
func (b *SignatureBuilder) X509Thumbprint(t base64.EncodedURL) *SignatureBuilder {
	b.h.x5t = t
	return b
}

// X509ThumbprintS256 sets the "x5t#S256" parameter.
func (b *SignatureBuilder) X509ThumbprintS256(t base64.EncodedURL) *SignatureBuilder {
	b.h.x5tS256 = t
	return b
}

// X509Chain sets the "x5c" parameter.
func (b *SignatureBuilder) X509Chain(chain ...base64.Encoded) *SignatureBuilder {
	b.h.x5c = slices.Clone(chain)
	return b
}

// KeyID sets the "kid" parameter.
func (b *SignatureBuilder) KeyID(kid string) *SignatureBuilder {
	b.h.kid = kid
	return b
}

// Critical sets the "crit" parameter.
func (b *SignatureBuilder) Critical(names ...string) *SignatureBuilder {
	b.h.critical = slices.Clone(names)
	return b
}

// Custom sets a custom parameter. Build fails if name is reserved.
func (b *SignatureBuilder) Custom(name ParameterName, value any) *SignatureBuilder {
	b.v.custom(b.h.custom, name, value)
	return b
}

func (b *SignatureBuilder) parseCustom(r rawMembers, name string) error {
	value, err := r.value(name)
	if err != nil {
		return err
	}
	b.Custom(name, value)
	return nil
}

// Build returns the header, or the first error recorded while building.
func (b *SignatureBuilder) Build() (*Signature, error) {
	if b.v.err != nil {
		return nil, b.v.err
	}
	return &Signature{secure: b.h.secure.clone()}, nil
}
