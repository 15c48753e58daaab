package jwa

import (
	"crypto/elliptic"
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/trustkit/jose/pkg/errcode"
)

// Curve is a named elliptic curve, as used by the "crv" parameter of EC and
// OKP JSON Web Keys.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-6.2.1.1
// https://datatracker.ietf.org/doc/html/rfc8037#section-2
type Curve uint8

const (
	P256 Curve = iota + 1
	P384
	P521
	Secp256k1
	Ed448
	Ed25519
	X448
	X25519
)

// CurveParams fully specifies a short Weierstrass curve y² = x³ + ax + b
// over the prime field of order P, with base point (Gx, Gy) of order N and
// cofactor H.
type CurveParams struct {
	BitSize int
	P       *big.Int
	A       *big.Int
	B       *big.Int
	Gx      *big.Int
	Gy      *big.Int
	N       *big.Int
	H       int
}

// Equal reports whether every field of p and o matches exactly.
func (p *CurveParams) Equal(o *CurveParams) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.BitSize == o.BitSize &&
		p.H == o.H &&
		bigEqual(p.P, o.P) &&
		bigEqual(p.A, o.A) &&
		bigEqual(p.B, o.B) &&
		bigEqual(p.Gx, o.Gx) &&
		bigEqual(p.Gy, o.Gy) &&
		bigEqual(p.N, o.N)
}

func bigEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

type curve struct {
	name   string
	oid    asn1.ObjectIdentifier
	params *CurveParams
}

var curves = [...]curve{
	P256:      {"P-256", asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}, nistParams(elliptic.P256())},
	P384:      {"P-384", asn1.ObjectIdentifier{1, 3, 132, 0, 34}, nistParams(elliptic.P384())},
	P521:      {"P-521", asn1.ObjectIdentifier{1, 3, 132, 0, 35}, nistParams(elliptic.P521())},
	Secp256k1: {"secp256k1", asn1.ObjectIdentifier{1, 3, 132, 0, 10}, koblitzParams()},
	Ed448:     {"Ed448", asn1.ObjectIdentifier{1, 3, 101, 113}, nil},
	Ed25519:   {"Ed25519", asn1.ObjectIdentifier{1, 3, 101, 112}, nil},
	X448:      {"X448", asn1.ObjectIdentifier{1, 3, 101, 111}, nil},
	X25519:    {"X25519", asn1.ObjectIdentifier{1, 3, 101, 110}, nil},
}

// The NIST curves all have a = -3 (mod p) and cofactor 1.
func nistParams(c elliptic.Curve) *CurveParams {
	p := c.Params()
	return &CurveParams{
		BitSize: p.BitSize,
		P:       p.P,
		A:       new(big.Int).Sub(p.P, big.NewInt(3)),
		B:       p.B,
		Gx:      p.Gx,
		Gy:      p.Gy,
		N:       p.N,
		H:       1,
	}
}

// secp256k1 is y² = x³ + 7.
func koblitzParams() *CurveParams {
	p := secp256k1.Params()
	return &CurveParams{
		BitSize: p.BitSize,
		P:       p.P,
		A:       big.NewInt(0),
		B:       big.NewInt(7),
		Gx:      p.Gx,
		Gy:      p.Gy,
		N:       p.N,
		H:       p.H,
	}
}

var byName = func() map[string]Curve {
	m := make(map[string]Curve, len(curves))
	for i := range curves {
		if curves[i].name != "" {
			m[curves[i].name] = Curve(i)
		}
	}
	return m
}()

// ParseCurve returns the curve with the given JWK name, such as "P-256".
func ParseCurve(name string) (Curve, error) {
	c, ok := byName[name]
	if !ok {
		return 0, errcode.New(errcode.Argument, errcode.UnknownCurve, name)
	}
	return c, nil
}

// CurveFromParams returns the registered curve whose parameters match p
// exactly. A curve that is not registered is not an error, ok is false.
func CurveFromParams(p *CurveParams) (Curve, bool) {
	if p == nil {
		return 0, false
	}
	for i := range curves {
		if curves[i].params != nil && curves[i].params.Equal(p) {
			return Curve(i), true
		}
	}
	return 0, false
}

// CurveForElliptic returns the registered curve for a crypto/elliptic
// implementation, such as the curve of an *ecdsa.PublicKey.
func CurveForElliptic(c elliptic.Curve) (Curve, bool) {
	if c == nil {
		return 0, false
	}
	if _, ok := c.(*secp256k1.KoblitzCurve); ok {
		return Secp256k1, true
	}
	switch c.Params().Name {
	case "P-256":
		return P256, true
	case "P-384":
		return P384, true
	case "P-521":
		return P521, true
	}
	return 0, false
}

// Elliptic returns the crypto/elliptic implementation of the curve, if
// there is one.
func (c Curve) Elliptic() (elliptic.Curve, bool) {
	switch c {
	case P256:
		return elliptic.P256(), true
	case P384:
		return elliptic.P384(), true
	case P521:
		return elliptic.P521(), true
	case Secp256k1:
		return secp256k1.S256(), true
	}
	return nil, false
}

// Valid reports whether c is a defined curve.
func (c Curve) Valid() bool {
	return int(c) < len(curves) && curves[c].name != ""
}

// String returns the JWK name of the curve.
func (c Curve) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Curve(%d)", uint8(c))
	}
	return curves[c].name
}

// OID returns the ASN.1 object identifier of the curve.
func (c Curve) OID() (asn1.ObjectIdentifier, bool) {
	if !c.Valid() {
		return nil, false
	}
	return append(asn1.ObjectIdentifier(nil), curves[c].oid...), true
}

// Params returns a copy of the curve parameters, which are only defined for
// the short Weierstrass curves P-256, P-384, P-521 and secp256k1.
func (c Curve) Params() (*CurveParams, bool) {
	if !c.Valid() || curves[c].params == nil {
		return nil, false
	}
	p := curves[c].params
	return &CurveParams{
		BitSize: p.BitSize,
		P:       new(big.Int).Set(p.P),
		A:       new(big.Int).Set(p.A),
		B:       new(big.Int).Set(p.B),
		Gx:      new(big.Int).Set(p.Gx),
		Gy:      new(big.Int).Set(p.Gy),
		N:       new(big.Int).Set(p.N),
		H:       p.H,
	}, true
}

// MarshalText implements encoding.TextMarshaler.
func (c Curve) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, errcode.New(errcode.Argument, errcode.UnknownCurve, c.String())
	}
	return []byte(curves[c].name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Curve) UnmarshalText(text []byte) error {
	v, err := ParseCurve(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
