package jwt

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/jose"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// There are three classes of JWT Claim Names:
// 1. Registered Claim Names
// 2. Public Claim Names
// 3. Private Claim Names
type (
	ClaimName = string

	Registered = ClaimName
	Public     = ClaimName
	Private    = ClaimName
)

// Registered Claim Names
//
// https://datatracker.ietf.org/doc/html/rfc7519#section-4.1
const (
	Issuer         Registered = "iss"
	Subject        Registered = "sub"
	Audience       Registered = "aud"
	ExpirationTime Registered = "exp"
	NotBefore      Registered = "nbf"
	IssuedAt       Registered = "iat"
	JWTID          Registered = "jti"
)

var (
	stringClaims = []ClaimName{Issuer, Subject, JWTID}
	timeClaims   = []ClaimName{ExpirationTime, NotBefore, IssuedAt}
)

// Claims is the JSON object of claims conveyed by a JWT.
//
// A claim is a piece of information asserted about a subject, represented
// as a name/value pair consisting of a Claim Name and a Claim Value.
type Claims map[ClaimName]any

// Get returns the value of the claim.
func (c Claims) Get(name ClaimName) (any, bool) {
	value, ok := c[name]
	return value, ok
}

// Set sets the value of the claim.
func (c Claims) Set(name ClaimName, value any) {
	c[name] = value
}

// Names returns the sorted claim names.
func (c Claims) Names() []ClaimName {
	names := maps.Keys(c)
	slices.Sort(names)
	return names
}

// Issuer returns the "iss" claim.
func (c Claims) Issuer() string {
	s, _ := c[Issuer].(string)
	return s
}

// Subject returns the "sub" claim.
func (c Claims) Subject() string {
	s, _ := c[Subject].(string)
	return s
}

// JWTID returns the "jti" claim.
func (c Claims) JWTID() string {
	s, _ := c[JWTID].(string)
	return s
}

// Audience returns the "aud" claim, which may be a single string or an array
// of strings.
func (c Claims) Audience() []string {
	switch v := c[Audience].(type) {
	case string:
		return []string{v}
	case []string:
		return slices.Clone(v)
	case []any:
		aud := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				aud = append(aud, s)
			}
		}
		return aud
	default:
		return nil
	}
}

// ExpirationTime returns the "exp" claim.
func (c Claims) ExpirationTime() (time.Time, bool) {
	return c.time(ExpirationTime)
}

// NotBefore returns the "nbf" claim.
func (c Claims) NotBefore() (time.Time, bool) {
	return c.time(NotBefore)
}

// IssuedAt returns the "iat" claim.
func (c Claims) IssuedAt() (time.Time, bool) {
	return c.time(IssuedAt)
}

func (c Claims) time(name ClaimName) (time.Time, bool) {
	value, ok := c[name]
	if !ok {
		return time.Time{}, false
	}
	sec, err := numericDate(name, value)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(sec, 0), true
}

// normalize checks the types of the registered claims and returns a copy in
// which every time claim is a NumericDate, in seconds since the epoch.
func (c Claims) normalize() (Claims, error) {
	out := make(Claims, len(c))
	for name, value := range c {
		switch {
		case slices.Contains(timeClaims, name):
			sec, err := numericDate(name, value)
			if err != nil {
				return nil, err
			}
			out[name] = sec
			continue
		case slices.Contains(stringClaims, name):
			switch v := value.(type) {
			case string:
			case fmt.Stringer:
				value = v.String()
			default:
				return nil, errcode.New(errcode.Argument, errcode.TokenClaimType, name, value)
			}
		case name == Audience:
			switch v := value.(type) {
			case string, []string:
			case []any:
				for _, item := range v {
					if _, ok := item.(string); !ok {
						return nil, errcode.New(errcode.Argument, errcode.TokenClaimType, name, item)
					}
				}
			default:
				return nil, errcode.New(errcode.Argument, errcode.TokenClaimType, name, value)
			}
		}
		out[name] = value
	}
	return out, nil
}

// Payload returns the JSON encoding of the claims.
func (c Claims) Payload() (jose.Payload, error) {
	normalized, err := c.normalize()
	if err != nil {
		return jose.Payload{}, err
	}
	return jose.PayloadJSON(normalized)
}

// ParseClaims decodes the claims of a JWT payload and checks the types of
// the registered claims.
func ParseClaims(p jose.Payload) (Claims, error) {
	var c Claims
	if err := p.JSON(&c); err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.TokenClaims, err)
	}
	if c == nil {
		return nil, errcode.New(errcode.Argument, errcode.TokenClaims)
	}
	return c.normalize()
}

// maxNumericDate bounds NumericDate seconds so that time.Time arithmetic on
// them cannot overflow.
const maxNumericDate = 1 << 62

// numericDate returns the seconds of a NumericDate claim value. Fractional
// seconds are truncated. Values beyond maxNumericDate are rejected rather
// than saturated or wrapped.
//
// https://datatracker.ietf.org/doc/html/rfc7519#section-2
func numericDate(name ClaimName, value any) (int64, error) {
	var (
		sec int64
		ok  bool
	)
	switch v := value.(type) {
	case int64:
		sec, ok = v, true
	case int:
		sec, ok = int64(v), true
	case float64:
		sec, ok = secondsOf(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			sec, ok = n, true
		} else if f, err := v.Float64(); err == nil {
			sec, ok = secondsOf(f)
		}
	case time.Time:
		sec, ok = v.Unix(), true
	}
	if !ok || sec > maxNumericDate || sec < -maxNumericDate {
		return 0, errcode.New(errcode.Argument, errcode.TokenClaimType, name, value)
	}
	return sec, nil
}

func secondsOf(f float64) (int64, bool) {
	if math.IsNaN(f) || math.Abs(f) > maxNumericDate {
		return 0, false
	}
	return int64(f), true
}
