package jwk

import (
	"bytes"
	"crypto"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"math"
	"math/big"

	"github.com/google/uuid"
	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/jwa"
)

// https://datatracker.ietf.org/doc/html/rfc7517#section-4
type ParameterName = string

const (
	KeyType              ParameterName = "kty"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.1
	PublicKeyUse         ParameterName = "use"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.2
	KeyOperations        ParameterName = "key_ops"  // https://datatracker.ietf.org/doc/html/rfc7517#section-4.3
	Algorithm            ParameterName = "alg"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.4
	KeyID                ParameterName = "kid"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.5
	X509URL              ParameterName = "x5u"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.6
	X509CertificateChain ParameterName = "x5c"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.7
	X509SHA1Thumbprint   ParameterName = "x5t"      // https://datatracker.ietf.org/doc/html/rfc7517#section-4.8
	X509SHA256Thumbprint ParameterName = "x5t#S256" // https://datatracker.ietf.org/doc/html/rfc7517#section-4.9

	// K is the symmetric key value within a JWK.
	// https://datatracker.ietf.org/doc/html/rfc7518#section-6.4.1
	K ParameterName = "k"

	// Curve is the curve value within an EC or OKP JWK, such as "P-256".
	// https://datatracker.ietf.org/doc/html/rfc7518#section-6.2.1.1
	Curve ParameterName = "crv"
	X     ParameterName = "x" // X is the x-coordinate, or the public key of an OKP.
	Y     ParameterName = "y" // Y is the y-coordinate for the elliptic curve point.

	N ParameterName = "n" // N is the RSA public modulus value.
	E ParameterName = "e" // E is the RSA public exponent value.
	D ParameterName = "d" // D is the RSA private exponent, or the EC/OKP private key.

	// RSA private key factors and CRT values.
	// https://datatracker.ietf.org/doc/html/rfc7518#section-6.3.2
	P  ParameterName = "p"
	Q  ParameterName = "q"
	DP ParameterName = "dp"
	DQ ParameterName = "dq"
	QI ParameterName = "qi"
)

// Key types.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-6.1
const (
	TypeRSA   = "RSA"
	TypeEC    = "EC"
	TypeOctet = "oct"
	TypeOKP   = "OKP"
)

// Public key uses.
const (
	UseSignature  = "sig"
	UseEncryption = "enc"
)

// Key operations.
//
// https://datatracker.ietf.org/doc/html/rfc7517#section-4.3
const (
	OperationSign       = "sign"
	OperationVerify     = "verify"
	OperationEncrypt    = "encrypt"
	OperationDecrypt    = "decrypt"
	OperationWrapKey    = "wrapKey"
	OperationUnwrapKey  = "unwrapKey"
	OperationDeriveKey  = "deriveKey"
	OperationDeriveBits = "deriveBits"
)

var operations = map[string]bool{
	OperationSign: true, OperationVerify: true,
	OperationEncrypt: true, OperationDecrypt: true,
	OperationWrapKey: true, OperationUnwrapKey: true,
	OperationDeriveKey: true, OperationDeriveBits: true,
}

// privateNames are the members holding private or secret key material.
var privateNames = []ParameterName{D, P, Q, DP, DQ, QI, K}

// Value is a JSON object containing the parameters of a key.
//
// https://datatracker.ietf.org/doc/html/rfc7517#section-4
type Value = map[ParameterName]any

// Key is a validated, immutable JSON Web Key.
type Key struct {
	value Value
}

// NewKey validates v and returns it as a key. The value is copied.
func NewKey(v Value) (*Key, error) {
	if err := Validate(v); err != nil {
		return nil, err
	}
	cp := make(Value, len(v))
	for name, value := range v {
		cp[name] = value
	}
	return &Key{value: cp}, nil
}

// ParseKey parses and validates a key from its JSON object.
func ParseKey(data []byte) (*Key, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v Value
	if err := dec.Decode(&v); err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.KeyMalformed, err)
	}
	if v == nil {
		return nil, errcode.New(errcode.Argument, errcode.KeyMalformed)
	}
	return NewKey(v)
}

// NewKeyID returns a random key ID.
func NewKeyID() string {
	return uuid.NewString()
}

// Validate checks that the required parameters are present for
// the given key type, and that the values are valid.
func Validate(v Value) error {
	kty, err := requireString(v, KeyType)
	if err != nil {
		return err
	}

	switch kty {
	case TypeEC:
		crv, err := requireString(v, Curve)
		if err != nil {
			return err
		}
		c, err := jwa.ParseCurve(crv)
		if err != nil {
			return errcode.Wrap(errcode.Argument, errcode.KeyCurve, err, crv, kty)
		}
		if _, ok := c.Elliptic(); !ok {
			return errcode.New(errcode.Argument, errcode.KeyCurve, crv, kty)
		}
		if err := requireMaterial(v, X, Y); err != nil {
			return err
		}
		if err := optionalMaterial(v, D); err != nil {
			return err
		}
	case TypeRSA:
		if err := requireMaterial(v, N, E); err != nil {
			return err
		}
		if err := optionalMaterial(v, D, P, Q, DP, DQ, QI); err != nil {
			return err
		}
	case TypeOctet:
		if err := requireMaterial(v, K); err != nil {
			return err
		}
	case TypeOKP:
		crv, err := requireString(v, Curve)
		if err != nil {
			return err
		}
		switch crv {
		case jwa.Ed25519.String(), jwa.Ed448.String(), jwa.X25519.String(), jwa.X448.String():
			// ok
		default:
			return errcode.New(errcode.Argument, errcode.KeyCurve, crv, kty)
		}
		if err := requireMaterial(v, X); err != nil {
			return err
		}
		if err := optionalMaterial(v, D); err != nil {
			return err
		}
	default:
		return errcode.New(errcode.Argument, errcode.KeyType, kty)
	}

	if use, ok, err := optionalString(v, PublicKeyUse); err != nil {
		return err
	} else if ok && use != UseSignature && use != UseEncryption {
		return errcode.New(errcode.Argument, errcode.KeyUse, use)
	}

	if ops, ok := v[KeyOperations]; ok {
		list, err := stringList(KeyOperations, ops)
		if err != nil {
			return err
		}
		for _, op := range list {
			if !operations[op] {
				return errcode.New(errcode.Argument, errcode.KeyOperation, op)
			}
		}
	}

	for _, name := range []ParameterName{Algorithm, KeyID, X509URL, X509SHA1Thumbprint, X509SHA256Thumbprint} {
		if _, _, err := optionalString(v, name); err != nil {
			return err
		}
	}

	if chain, ok := v[X509CertificateChain]; ok {
		if _, err := stringList(X509CertificateChain, chain); err != nil {
			return err
		}
	}

	return nil
}

func requireString(v Value, name ParameterName) (string, error) {
	s, ok, err := optionalString(v, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errcode.New(errcode.Argument, errcode.KeyMissing, name)
	}
	return s, nil
}

func optionalString(v Value, name ParameterName) (string, bool, error) {
	value, ok := v[name]
	if !ok {
		return "", false, nil
	}
	s, ok := value.(string)
	if !ok {
		return "", false, errcode.New(errcode.Argument, errcode.KeyParameterType, name, value)
	}
	return s, true, nil
}

// requireMaterial checks that each named member is a non-empty base64url
// value.
func requireMaterial(v Value, names ...ParameterName) error {
	for _, name := range names {
		s, err := requireString(v, name)
		if err != nil {
			return err
		}
		if len(base64.Decode(s)) == 0 {
			return errcode.New(errcode.Argument, errcode.KeyMaterial, name)
		}
	}
	return nil
}

func optionalMaterial(v Value, names ...ParameterName) error {
	for _, name := range names {
		if _, ok := v[name]; ok {
			if err := requireMaterial(v, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func stringList(name ParameterName, value any) ([]string, error) {
	switch list := value.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, errcode.New(errcode.Argument, errcode.KeyParameterType, name, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errcode.New(errcode.Argument, errcode.KeyParameterType, name, value)
	}
}

func (k *Key) str(name ParameterName) string {
	s, _ := k.value[name].(string)
	return s
}

// Type returns the "kty" parameter.
func (k *Key) Type() string {
	return k.str(KeyType)
}

// Use returns the "use" parameter.
func (k *Key) Use() string {
	return k.str(PublicKeyUse)
}

// Operations returns the "key_ops" parameter.
func (k *Key) Operations() []string {
	ops, _ := stringList(KeyOperations, k.value[KeyOperations])
	return append([]string(nil), ops...)
}

// Algorithm returns the "alg" parameter.
func (k *Key) Algorithm() string {
	return k.str(Algorithm)
}

// KeyID returns the "kid" parameter.
func (k *Key) KeyID() string {
	return k.str(KeyID)
}

// Param returns the value of any member of the key.
func (k *Key) Param(name ParameterName) (any, bool) {
	v, ok := k.value[name]
	return v, ok
}

// Value returns a copy of the members of the key.
func (k *Key) Value() Value {
	cp := make(Value, len(k.value))
	for name, value := range k.value {
		cp[name] = value
	}
	return cp
}

// IsPrivate reports whether the key contains private or secret material.
// Symmetric keys are always private.
func (k *Key) IsPrivate() bool {
	for _, name := range privateNames {
		if _, ok := k.value[name]; ok {
			return true
		}
	}
	return false
}

// Public returns the key without its private members, or nil for a
// symmetric key.
func (k *Key) Public() *Key {
	if k.Type() == TypeOctet {
		return nil
	}
	cp := k.Value()
	for _, name := range privateNames {
		delete(cp, name)
	}
	return &Key{value: cp}
}

// MarshalJSON returns the JSON object of the key, with members sorted by
// name.
func (k *Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.value)
}

// SymmetricKey returns the decoded "k" parameter of an "oct" key.
func (k *Key) SymmetricKey() ([]byte, error) {
	if k.Type() != TypeOctet {
		return nil, errcode.New(errcode.Argument, errcode.KeyMissing, K)
	}
	return base64.Decode(k.str(K)), nil
}

// PublicKey returns the public key as a *rsa.PublicKey, *ecdsa.PublicKey,
// ed25519.PublicKey or *ecdh.PublicKey (X25519).
func (k *Key) PublicKey() (crypto.PublicKey, error) {
	switch k.Type() {
	case TypeRSA:
		return k.rsaPublicKey()
	case TypeEC:
		return k.ecdsaPublicKey()
	case TypeOKP:
		x := base64.Decode(k.str(X))
		switch k.str(Curve) {
		case jwa.Ed25519.String():
			if len(x) != ed25519.PublicKeySize {
				return nil, errcode.New(errcode.Argument, errcode.KeyMaterial, X)
			}
			return ed25519.PublicKey(x), nil
		case jwa.X25519.String():
			pub, err := ecdh.X25519().NewPublicKey(x)
			if err != nil {
				return nil, errcode.Wrap(errcode.Argument, errcode.KeyMaterial, err, X)
			}
			return pub, nil
		}
	}
	return nil, errcode.New(errcode.Argument, errcode.KeyUnsupported, k.value[KeyType])
}

var (
	errRSAModulusTooSmall = errors.New("RSA modulus too small")
	errRSAExponent        = errors.New("RSA exponent out of range")
)

// minRSAModulusBits is the smallest modulus accepted for RSA keys.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-3.3
const minRSAModulusBits = 2048

func (k *Key) rsaPublicKey() (*rsa.PublicKey, error) {
	n := base64.EncodedURL(k.str(N)).BigInt()
	if n.BitLen() < minRSAModulusBits {
		return nil, errcode.Wrap(errcode.Argument, errcode.KeyMaterial, errRSAModulusTooSmall, N)
	}

	e := base64.EncodedURL(k.str(E)).BigInt()
	if e.Cmp(big.NewInt(1)) <= 0 || e.Cmp(big.NewInt(math.MaxInt32)) > 0 {
		return nil, errcode.Wrap(errcode.Argument, errcode.KeyMaterial, errRSAExponent, E)
	}

	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}

func (k *Key) ecdsaPublicKey() (*ecdsa.PublicKey, error) {
	c, err := jwa.ParseCurve(k.str(Curve))
	if err != nil {
		return nil, err
	}
	curve, ok := c.Elliptic()
	if !ok {
		return nil, errcode.New(errcode.Argument, errcode.KeyCurve, c.String(), TypeEC)
	}

	x := base64.EncodedURL(k.str(X)).BigInt()
	y := base64.EncodedURL(k.str(Y)).BigInt()
	if !curve.IsOnCurve(x, y) {
		return nil, errcode.New(errcode.Argument, errcode.KeyMaterial, X)
	}

	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// Option sets an optional member of a key created from key material.
type Option func(Value)

// WithKeyID sets the "kid" member.
func WithKeyID(kid string) Option {
	return func(v Value) { v[KeyID] = kid }
}

// WithUse sets the "use" member.
func WithUse(use string) Option {
	return func(v Value) { v[PublicKeyUse] = use }
}

// WithAlgorithm sets the "alg" member.
func WithAlgorithm(alg jwa.Algorithm) Option {
	return func(v Value) { v[Algorithm] = alg.String() }
}

// FromPublicKey returns a key for the given public key. Unless overridden by
// an option, the key is marked for signature use.
func FromPublicKey(pub crypto.PublicKey, opts ...Option) (*Key, error) {
	var v Value

	switch pub := pub.(type) {
	case *rsa.PublicKey:
		v = Value{
			KeyType: TypeRSA,
			N:       base64.EncodedURLOfInt(pub.N).String(),
			E:       base64.EncodedURLOfInt(big.NewInt(int64(pub.E))).String(),
		}
	case *ecdsa.PublicKey:
		c, ok := jwa.CurveForElliptic(pub.Curve)
		if !ok {
			return nil, errcode.New(errcode.Argument, errcode.KeyCurve, pub.Curve.Params().Name, TypeEC)
		}
		size := (pub.Curve.Params().BitSize + 7) / 8
		v = Value{
			KeyType: TypeEC,
			Curve:   c.String(),
			X:       base64.URLEncode(pub.X.FillBytes(make([]byte, size))),
			Y:       base64.URLEncode(pub.Y.FillBytes(make([]byte, size))),
		}
	case ed25519.PublicKey:
		v = Value{
			KeyType: TypeOKP,
			Curve:   jwa.Ed25519.String(),
			X:       base64.URLEncode(pub),
		}
	case *ecdh.PublicKey:
		if pub.Curve() != ecdh.X25519() {
			return nil, errcode.New(errcode.Argument, errcode.KeyUnsupported, pub)
		}
		v = Value{
			KeyType: TypeOKP,
			Curve:   jwa.X25519.String(),
			X:       base64.URLEncode(pub.Bytes()),
		}
	default:
		return nil, errcode.New(errcode.Argument, errcode.KeyUnsupported, pub)
	}

	v[PublicKeyUse] = UseSignature
	for _, opt := range opts {
		opt(v)
	}
	return NewKey(v)
}

// FromSymmetricKey returns an "oct" key for the given secret.
func FromSymmetricKey(secret []byte, opts ...Option) (*Key, error) {
	v := Value{
		KeyType: TypeOctet,
		K:       base64.URLEncode(secret),
	}
	for _, opt := range opts {
		opt(v)
	}
	return NewKey(v)
}
