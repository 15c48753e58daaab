package jwa

import (
	"crypto"
	"fmt"

	"github.com/trustkit/jose/pkg/errcode"
)

// Algorithm is a JSON Web Algorithm, identified on the wire by a case
// sensitive string such as "HS256" or "RSA-OAEP".
//
// The zero value is not a valid algorithm.
//
// https://datatracker.ietf.org/doc/html/rfc7518
type Algorithm uint8

// No digital signature or MAC performed (unsecured JWS). This algorithm is
// intended to be used to create a plain JOSE object that is not integrity
// protected.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-3.6
const None Algorithm = iota + 1

// HMAC with SHA-2 Functions
//
// These algorithms are used to construct a MAC using a shared secret
// and the Hash-based Message Authentication Code (HMAC) construction
// [RFC2104] employing SHA-2 [SHS] hash functions.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-3.2
const (
	HS256 Algorithm = iota + 2
	HS384
	HS512
)

// RSASSA-PKCS1-v1_5
//
// A key of size 2048 bits or larger MUST be used with these algorithms.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-3.3
const (
	RS256 Algorithm = iota + 5
	RS384
	RS512
)

// ECDSA
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-3.4
const (
	ES256 Algorithm = iota + 8
	ES384
	ES512
)

// Key management algorithms, used to determine the content encryption key
// of a JWE.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-4.1
const (
	RSA1_5 Algorithm = iota + 11
	RSAOAEP
	A128KW
	A256KW
	Direct
	ECDHES
	ECDHESA128KW
	ECDHESA256KW
)

// Content encryption algorithms, used as the "enc" header parameter of a
// JWE.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-5.1
const (
	A128CBCHS256 Algorithm = iota + 19
	A192CBCHS384
	A256CBCHS512
	A128GCM
	A256GCM
)

// Requirement is the implementation requirement level of an algorithm, in
// the terms of RFC 2119.
type Requirement uint8

const (
	Optional Requirement = iota
	Recommended
	Required
)

func (r Requirement) String() string {
	switch r {
	case Required:
		return "REQUIRED"
	case Recommended:
		return "RECOMMENDED"
	default:
		return "OPTIONAL"
	}
}

// Kind is the class of an algorithm, which determines the header parameter
// it may be used in.
type Kind uint8

const (
	// Signature algorithms appear in the "alg" parameter of a JWS (or a
	// plain object, in the case of None).
	Signature Kind = iota + 1

	// KeyManagement algorithms appear in the "alg" parameter of a JWE.
	KeyManagement

	// ContentEncryption algorithms appear in the "enc" parameter of a JWE.
	ContentEncryption
)

func (k Kind) String() string {
	switch k {
	case Signature:
		return "signature"
	case KeyManagement:
		return "key management"
	case ContentEncryption:
		return "content encryption"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type algorithm struct {
	id          string
	requirement Requirement
	kind        Kind
	hash        crypto.Hash
}

var algorithms = [...]algorithm{
	None: {"none", Optional, Signature, 0},

	HS256: {"HS256", Required, Signature, crypto.SHA256},
	HS384: {"HS384", Optional, Signature, crypto.SHA384},
	HS512: {"HS512", Optional, Signature, crypto.SHA512},

	RS256: {"RS256", Recommended, Signature, crypto.SHA256},
	RS384: {"RS384", Optional, Signature, crypto.SHA384},
	RS512: {"RS512", Optional, Signature, crypto.SHA512},

	ES256: {"ES256", Recommended, Signature, crypto.SHA256},
	ES384: {"ES384", Optional, Signature, crypto.SHA384},
	ES512: {"ES512", Optional, Signature, crypto.SHA512},

	RSA1_5:       {"RSA1_5", Recommended, KeyManagement, 0},
	RSAOAEP:      {"RSA-OAEP", Recommended, KeyManagement, 0},
	A128KW:       {"A128KW", Recommended, KeyManagement, 0},
	A256KW:       {"A256KW", Recommended, KeyManagement, 0},
	Direct:       {"dir", Recommended, KeyManagement, 0},
	ECDHES:       {"ECDH-ES", Recommended, KeyManagement, 0},
	ECDHESA128KW: {"ECDH-ES+A128KW", Recommended, KeyManagement, 0},
	ECDHESA256KW: {"ECDH-ES+A256KW", Recommended, KeyManagement, 0},

	A128CBCHS256: {"A128CBC-HS256", Required, ContentEncryption, crypto.SHA256},
	A192CBCHS384: {"A192CBC-HS384", Optional, ContentEncryption, crypto.SHA384},
	A256CBCHS512: {"A256CBC-HS512", Required, ContentEncryption, crypto.SHA512},
	A128GCM:      {"A128GCM", Recommended, ContentEncryption, 0},
	A256GCM:      {"A256GCM", Recommended, ContentEncryption, 0},
}

var byIdentifier = func() map[string]Algorithm {
	m := make(map[string]Algorithm, len(algorithms))
	for i := range algorithms {
		if algorithms[i].id != "" {
			m[algorithms[i].id] = Algorithm(i)
		}
	}
	return m
}()

// ParseAlgorithm returns the algorithm with the given wire identifier. The
// lookup is exact and case sensitive.
func ParseAlgorithm(id string) (Algorithm, error) {
	alg, ok := byIdentifier[id]
	if !ok {
		return 0, errcode.New(errcode.Argument, errcode.UnknownAlgorithm, id)
	}
	return alg, nil
}

// Algorithms returns every defined algorithm, in declaration order.
func Algorithms() []Algorithm {
	algs := make([]Algorithm, 0, len(algorithms))
	for i := range algorithms {
		if algorithms[i].id != "" {
			algs = append(algs, Algorithm(i))
		}
	}
	return algs
}

// Valid reports whether a is a defined algorithm.
func (a Algorithm) Valid() bool {
	return int(a) < len(algorithms) && algorithms[a].id != ""
}

// String returns the wire identifier of the algorithm.
func (a Algorithm) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Algorithm(%d)", uint8(a))
	}
	return algorithms[a].id
}

// Requirement returns the implementation requirement level of the algorithm.
func (a Algorithm) Requirement() Requirement {
	if !a.Valid() {
		return Optional
	}
	return algorithms[a].requirement
}

// Kind returns the class of the algorithm, or zero if it is not defined.
func (a Algorithm) Kind() Kind {
	if !a.Valid() {
		return 0
	}
	return algorithms[a].kind
}

// Hash returns the hash function used by HMAC, RSA, ECDSA and AES-CBC-HMAC
// algorithms, or zero if the algorithm does not use one directly.
func (a Algorithm) Hash() crypto.Hash {
	if !a.Valid() {
		return 0
	}
	return algorithms[a].hash
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, errcode.New(errcode.Argument, errcode.UnknownAlgorithm, a.String())
	}
	return []byte(algorithms[a].id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	alg, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = alg
	return nil
}

// ParseAlgorithms parses each identifier in ids, failing on the first one
// that is unknown.
func ParseAlgorithms(ids ...string) ([]Algorithm, error) {
	algs := make([]Algorithm, 0, len(ids))
	for _, id := range ids {
		alg, err := ParseAlgorithm(id)
		if err != nil {
			return nil, err
		}
		algs = append(algs, alg)
	}
	return algs, nil
}
