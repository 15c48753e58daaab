package jose

import (
	"github.com/trustkit/jose/pkg/header"
	"github.com/trustkit/jose/pkg/jwa"
)

// Provider is implemented by every cryptographic provider.
type Provider interface {
	// Supported returns the algorithms the provider can technically handle.
	Supported() []jwa.Algorithm
}

// Signer computes signatures. A signer rejects any header whose algorithm
// it does not support, but does not otherwise restrict the algorithm the
// caller selected.
type Signer interface {
	Provider

	// Sign returns the signature of the signing input, which is the
	// encoded header and payload joined by a dot.
	Sign(h *header.Signature, input []byte) ([]byte, error)
}

// Verifier checks signatures. Only algorithms accepted by its filter are
// verified.
type Verifier interface {
	Provider

	// Filter returns the algorithms the verifier accepts.
	Filter() *Filter

	// Verify reports whether signature is valid for the signing input. A
	// signature that does not match is not an error.
	Verify(h *header.Signature, input, signature []byte) (bool, error)
}

// Encrypter encrypts payloads for a key management algorithm and content
// encryption method.
type Encrypter interface {
	Provider

	// SupportedMethods returns the content encryption methods the
	// encrypter can handle.
	SupportedMethods() []jwa.Algorithm

	// Encrypt encrypts the plaintext and returns the header to serialize,
	// which may add parameters to h, together with the encrypted parts.
	Encrypt(h *header.Encryption, plaintext []byte) (*header.Encryption, Subject, error)
}

// Decrypter decrypts payloads. Only algorithms and methods accepted by its
// filters are decrypted.
type Decrypter interface {
	Provider

	// SupportedMethods returns the content encryption methods the
	// decrypter can handle.
	SupportedMethods() []jwa.Algorithm

	// Filter returns the key management algorithms the decrypter accepts.
	Filter() *Filter

	// MethodFilter returns the content encryption methods the decrypter
	// accepts.
	MethodFilter() *Filter

	// Decrypt returns the plaintext of the encrypted parts.
	Decrypt(h *header.Encryption, s Subject) ([]byte, error)
}
