// Package aesgcm implements direct encryption ("dir") with a shared content
// encryption key and the A128GCM or A256GCM content encryption methods.
//
// https://datatracker.ietf.org/doc/html/rfc7518#section-4.5
// https://datatracker.ietf.org/doc/html/rfc7518#section-5.3
package aesgcm

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/header"
	"github.com/trustkit/jose/pkg/jose"
	"github.com/trustkit/jose/pkg/jwa"
)

const (
	ivSize  = 12
	tagSize = 16
)

var keySizes = map[jwa.Algorithm]int{
	jwa.A128GCM: 16,
	jwa.A256GCM: 32,
}

// Provider encrypts and decrypts with a shared key for a single method.
type Provider struct {
	method jwa.Algorithm
	aead   cipher.AEAD
	rand   io.Reader

	filter       *jose.Filter
	methodFilter *jose.Filter
}

var (
	_ jose.Encrypter = (*Provider)(nil)
	_ jose.Decrypter = (*Provider)(nil)
)

// New returns a provider for the content encryption key, whose length must
// match the method: 16 bytes for A128GCM and 32 bytes for A256GCM.
func New(key []byte, method jwa.Algorithm) (*Provider, error) {
	size, ok := keySizes[method]
	if !ok {
		return nil, errcode.New(errcode.Argument, errcode.AESMethod, method.String())
	}
	if len(key) != size {
		return nil, errcode.New(errcode.Argument, errcode.AESKeySize, size, method.String(), len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errcode.Wrap(errcode.Crypto, errcode.AESCipher, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errcode.Wrap(errcode.Crypto, errcode.AESCipher, err)
	}

	return &Provider{
		method:       method,
		aead:         aead,
		rand:         rand.Reader,
		filter:       jose.NewFilter(jwa.Direct),
		methodFilter: jose.NewFilter(method),
	}, nil
}

// Supported returns "dir".
func (p *Provider) Supported() []jwa.Algorithm {
	return []jwa.Algorithm{jwa.Direct}
}

// SupportedMethods returns the method of the key.
func (p *Provider) SupportedMethods() []jwa.Algorithm {
	return []jwa.Algorithm{p.method}
}

// Filter returns the key management algorithms accepted for decryption.
func (p *Provider) Filter() *jose.Filter {
	return p.filter
}

// MethodFilter returns the methods accepted for decryption.
func (p *Provider) MethodFilter() *jose.Filter {
	return p.methodFilter
}

func (p *Provider) check(h *header.Encryption) error {
	if h.Algorithm() != jwa.Direct {
		return errcode.New(errcode.Argument, errcode.AESAlgorithm, h.Algorithm().String())
	}
	if h.Method() != p.method {
		return errcode.New(errcode.Argument, errcode.AESMethod, h.Method().String())
	}
	return nil
}

// Encrypt seals the plaintext under a random IV. The additional
// authenticated data is the encoded header, and the encrypted key is empty.
func (p *Provider) Encrypt(h *header.Encryption, plaintext []byte) (*header.Encryption, jose.Subject, error) {
	if err := p.check(h); err != nil {
		return nil, jose.Subject{}, err
	}

	aad, err := h.Encoded()
	if err != nil {
		return nil, jose.Subject{}, err
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(p.rand, iv); err != nil {
		return nil, jose.Subject{}, errcode.Wrap(errcode.Crypto, errcode.KeyGeneration, err, ivSize)
	}

	sealed := p.aead.Seal(nil, iv, plaintext, []byte(aad))
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	subject, err := jose.NewSubject(
		"",
		base64.NewEncodedURL(iv),
		base64.NewEncodedURL(ciphertext),
		base64.NewEncodedURL(tag),
	)
	if err != nil {
		return nil, jose.Subject{}, err
	}
	return h, subject, nil
}

// Decrypt opens the ciphertext. A tag that does not match the header,
// ciphertext and IV is a crypto error.
func (p *Provider) Decrypt(h *header.Encryption, s jose.Subject) ([]byte, error) {
	if err := p.check(h); err != nil {
		return nil, err
	}

	aad, err := h.Encoded()
	if err != nil {
		return nil, err
	}

	iv, tag := s.IV().Bytes(), s.Tag().Bytes()
	if len(iv) != ivSize || len(tag) != tagSize {
		return nil, errcode.New(errcode.Crypto, errcode.AESOpen)
	}

	sealed := append(s.Ciphertext().Bytes(), tag...)
	plaintext, err := p.aead.Open(nil, iv, sealed, []byte(aad))
	if err != nil {
		return nil, errcode.Wrap(errcode.Crypto, errcode.AESOpen, err)
	}
	return plaintext, nil
}
