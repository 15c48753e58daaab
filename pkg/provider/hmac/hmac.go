// Package hmac implements the HS256, HS384 and HS512 signature algorithms
// over a shared secret.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-3.2
package hmac

import (
	"bytes"
	"crypto/hmac"
	_ "crypto/sha256"
	_ "crypto/sha512"

	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/header"
	"github.com/trustkit/jose/pkg/jose"
	"github.com/trustkit/jose/pkg/jwa"
	"golang.org/x/exp/slices"
)

// Algorithms are the algorithms a Provider can support.
var Algorithms = []jwa.Algorithm{jwa.HS256, jwa.HS384, jwa.HS512}

// Provider signs and verifies with a shared secret.
type Provider struct {
	secret    []byte
	supported []jwa.Algorithm
	filter    *jose.Filter
}

var (
	_ jose.Signer   = (*Provider)(nil)
	_ jose.Verifier = (*Provider)(nil)
)

// New returns a provider for the secret. Without algs, every HMAC algorithm
// is supported; otherwise only the given ones are.
func New(secret []byte, algs ...jwa.Algorithm) (*Provider, error) {
	if len(secret) == 0 {
		return nil, errcode.New(errcode.Argument, errcode.HMACEmptySecret)
	}

	if len(algs) == 0 {
		algs = Algorithms
	}
	for _, alg := range algs {
		if !slices.Contains(Algorithms, alg) {
			return nil, errcode.New(errcode.Argument, errcode.HMACAlgorithm, alg.String())
		}
	}

	return &Provider{
		secret:    bytes.Clone(secret),
		supported: slices.Clone(algs),
		filter:    jose.NewFilter(algs...),
	}, nil
}

// Supported returns the supported algorithms.
func (p *Provider) Supported() []jwa.Algorithm {
	return slices.Clone(p.supported)
}

// Filter returns the algorithms accepted for verification.
func (p *Provider) Filter() *jose.Filter {
	return p.filter
}

// Sign returns the MAC of the signing input.
func (p *Provider) Sign(h *header.Signature, input []byte) ([]byte, error) {
	alg := h.Algorithm()
	if !slices.Contains(p.supported, alg) {
		return nil, errcode.New(errcode.Policy, errcode.SignerUnsupported, alg.String())
	}

	mac := hmac.New(alg.Hash().New, p.secret)
	mac.Write(input)
	return mac.Sum(nil), nil
}

// Verify recomputes the MAC of the signing input and compares it with the
// signature in constant time.
func (p *Provider) Verify(h *header.Signature, input, signature []byte) (bool, error) {
	alg := h.Algorithm()
	if !p.filter.Accepts(alg) {
		return false, errcode.New(errcode.Policy, errcode.VerifierRejected, alg.String())
	}

	mac := hmac.New(alg.Hash().New, p.secret)
	mac.Write(input)
	return hmac.Equal(mac.Sum(nil), signature), nil
}
