package jwt

import (
	"fmt"
	"time"

	"github.com/jmhodges/clock"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/header"
	"github.com/trustkit/jose/pkg/jose"
	"golang.org/x/exp/slices"
)

// Token is a JSON Web Token: a set of claims carried as the payload of a
// JWS.
//
// JWTs contain three parts, separated by dots (".") which are:
//
//  1. Header
//  2. Claims (Payload)
//  3. Signature
//
// https://datatracker.ietf.org/doc/html/rfc7519#section-1
type Token struct {
	obj    *jose.SignatureObject
	claims Claims
}

// Sign signs the claims, which must not be empty. A header without a "typ" is given "typ" "JWT";
// any other "typ" is rejected.
//
// Time claims may be given as time.Time or as seconds since the epoch, and
// are encoded as NumericDate values.
func Sign(h *header.Signature, claims Claims, signer jose.Signer) (*Token, error) {
	if h == nil {
		return nil, errcode.New(errcode.Argument, errcode.NilArgument, "header")
	}

	switch h.Type() {
	case header.TypeJWT:
	case "":
		var err error
		h, err = h.Builder().Type(header.TypeJWT).Build()
		if err != nil {
			return nil, err
		}
	default:
		return nil, errcode.New(errcode.Argument, errcode.HeaderParameterValue, header.ParamType, string(h.Type()))
	}

	if len(claims) == 0 {
		return nil, errcode.New(errcode.Argument, errcode.TokenClaims)
	}
	normalized, err := claims.normalize()
	if err != nil {
		return nil, err
	}
	payload, err := jose.PayloadJSON(normalized)
	if err != nil {
		return nil, err
	}

	obj, err := jose.NewSignatureObject(h, payload)
	if err != nil {
		return nil, err
	}
	if err := obj.Sign(signer); err != nil {
		return nil, err
	}

	return &Token{obj: obj, claims: normalized}, nil
}

// Parse parses a signed JWT. The signature and claims are not verified.
func Parse(s string) (*Token, error) {
	obj, err := jose.Parse(s)
	if err != nil {
		return nil, err
	}

	signed, ok := obj.(*jose.SignatureObject)
	if !ok {
		return nil, errcode.New(errcode.Argument, errcode.TokenKind, fmt.Sprintf("%T", obj))
	}

	claims, err := ParseClaims(signed.Payload())
	if err != nil {
		return nil, err
	}

	return &Token{obj: signed, claims: claims}, nil
}

// ParseAndVerify parses a signed JWT and verifies it.
func ParseAndVerify(s string, verifier jose.Verifier, opts ...VerifyOption) (*Token, error) {
	t, err := Parse(s)
	if err != nil {
		return nil, err
	}
	if err := t.Verify(verifier, opts...); err != nil {
		return nil, err
	}
	return t, nil
}

// Header returns the JOSE header.
func (t *Token) Header() *header.Signature {
	return t.obj.SignatureHeader()
}

// Claims returns a copy of the claims.
func (t *Token) Claims() Claims {
	c := make(Claims, len(t.claims))
	for name, value := range t.claims {
		c[name] = value
	}
	return c
}

// Object returns the underlying JWS.
func (t *Token) Object() *jose.SignatureObject {
	return t.obj
}

// Serialize returns the compact serialization.
func (t *Token) Serialize() (string, error) {
	return t.obj.Serialize()
}

// String returns the compact serialization, or the empty string if the
// token cannot be serialized.
func (t *Token) String() string {
	s, err := t.obj.Serialize()
	if err != nil {
		return ""
	}
	return s
}

// VerifyConfig holds the requirements a token must meet.
type VerifyConfig struct {
	// AllowedIssuers is the set of allowed "iss" values. If empty, any
	// issuer is allowed.
	AllowedIssuers []string

	// AllowedAudiences is the set of allowed "aud" values. If empty, any
	// audience is allowed; otherwise at least one audience of the token
	// must be in the set.
	AllowedAudiences []string

	// Leeway is subtracted from "nbf" and added to "exp".
	Leeway time.Duration

	// RequireExpiration rejects tokens without an "exp" claim.
	RequireExpiration bool

	// Clock provides the current time. If not set, the system clock is
	// used.
	Clock clock.Clock
}

// VerifyOption is a functional option type used to configure
// the verification requirements for JWTs.
type VerifyOption func(*VerifyConfig)

// WithAllowedIssuers sets the allowed issuers for the JWT.
func WithAllowedIssuers(issuers ...string) VerifyOption {
	return func(vc *VerifyConfig) {
		vc.AllowedIssuers = issuers
	}
}

// WithAllowedAudiences sets the allowed audiences for the JWT.
func WithAllowedAudiences(audiences ...string) VerifyOption {
	return func(vc *VerifyConfig) {
		vc.AllowedAudiences = audiences
	}
}

// WithLeeway sets the clock skew tolerated for the "exp" and "nbf" claims.
func WithLeeway(d time.Duration) VerifyOption {
	return func(vc *VerifyConfig) {
		vc.Leeway = d
	}
}

// WithExpirationRequired rejects tokens without an "exp" claim.
func WithExpirationRequired() VerifyOption {
	return func(vc *VerifyConfig) {
		vc.RequireExpiration = true
	}
}

// WithClock sets the clock used for the "exp" and "nbf" claims.
func WithClock(c clock.Clock) VerifyOption {
	return func(vc *VerifyConfig) {
		vc.Clock = c
	}
}

// Verify verifies the signature with the verifier, then checks the claims.
// A signature that does not match is ErrInvalidSignature.
func (t *Token) Verify(verifier jose.Verifier, opts ...VerifyOption) error {
	config := &VerifyConfig{
		Clock: clock.New(),
	}
	for _, opt := range opts {
		opt(config)
	}

	ok, err := t.obj.Verify(verifier)
	if err != nil {
		return err
	}
	if !ok {
		return errcode.New(errcode.Crypto, errcode.TokenSignature)
	}

	return t.claims.validate(config)
}

func (c Claims) validate(config *VerifyConfig) error {
	if len(config.AllowedIssuers) > 0 {
		if iss := c.Issuer(); !slices.Contains(config.AllowedIssuers, iss) {
			return errcode.New(errcode.Policy, errcode.TokenIssuer, iss)
		}
	}

	if len(config.AllowedAudiences) > 0 {
		aud := c.Audience()
		if !slices.ContainsFunc(aud, func(a string) bool {
			return slices.Contains(config.AllowedAudiences, a)
		}) {
			return errcode.New(errcode.Policy, errcode.TokenAudience, aud)
		}
	}

	now := config.Clock.Now()

	exp, ok := c.ExpirationTime()
	switch {
	case ok && !now.Before(exp.Add(config.Leeway)):
		return errcode.New(errcode.Policy, errcode.TokenExpired, exp.UTC())
	case !ok && config.RequireExpiration:
		return errcode.New(errcode.Policy, errcode.TokenMissing, ExpirationTime)
	}

	if nbf, ok := c.NotBefore(); ok && now.Before(nbf.Add(-config.Leeway)) {
		return errcode.New(errcode.Policy, errcode.TokenNotYet, nbf.UTC())
	}

	return nil
}
