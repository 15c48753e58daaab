// Package keyutil reads and generates the raw key material behind JSON Web
// Keys.
package keyutil

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/subtle"
	"crypto/x509"
	"encoding/pem"
	"io"

	"github.com/trustkit/jose/pkg/errcode"
)

// SymmetricKeysEqual checks if the given keys are the same, in constant
// time.
func SymmetricKeysEqual(key1 []byte, key2 []byte) bool {
	return subtle.ConstantTimeCompare(key1, key2) == 1
}

// NewSymmetricKey generates a new symmetric key of the given size.
func NewSymmetricKey(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errcode.New(errcode.Argument, errcode.KeyGeneration, size)
	}

	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return nil, errcode.Wrap(errcode.Crypto, errcode.KeyGeneration, err, size)
	}

	return key, nil
}

// ParsePublicKey parses the first PEM block read from r, which holds a
// PKIX or PKCS #1 public key or an X.509 certificate. The result is a
// *rsa.PublicKey, *ecdsa.PublicKey, ed25519.PublicKey or *ecdh.PublicKey.
func ParsePublicKey(r io.Reader) (crypto.PublicKey, error) {
	keyBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.PEMBlock, err)
	}

	block, _ := pem.Decode(keyBytes)
	if block == nil {
		return nil, errcode.New(errcode.Argument, errcode.PEMBlock)
	}

	return parsePublicKeyBlock(block)
}

// ParsePublicKeys parses every PEM block read from r, in order. It fails on
// the first block that does not hold a public key, and on any non-blank
// content after the last block.
func ParsePublicKeys(r io.Reader) ([]crypto.PublicKey, error) {
	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.PEMBlock, err)
	}

	var keys []crypto.PublicKey
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		pub, err := parsePublicKeyBlock(block)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pub)
	}

	if len(keys) == 0 || len(bytes.TrimSpace(rest)) > 0 {
		return nil, errcode.New(errcode.Argument, errcode.PEMBlock)
	}
	return keys, nil
}

func parsePublicKeyBlock(block *pem.Block) (crypto.PublicKey, error) {
	var (
		pub any
		err error
	)

	switch block.Type {
	case "CERTIFICATE":
		var cert *x509.Certificate
		cert, err = x509.ParseCertificate(block.Bytes)
		if err == nil {
			pub = cert.PublicKey
		}
	case "PUBLIC KEY":
		pub, err = x509.ParsePKIXPublicKey(block.Bytes)
	case "RSA PUBLIC KEY":
		pub, err = x509.ParsePKCS1PublicKey(block.Bytes)
	default:
		return nil, errcode.New(errcode.Argument, errcode.PEMPublicKey, block.Type)
	}

	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.PEMPublicKey, err, block.Type)
	}
	return pub, nil
}
