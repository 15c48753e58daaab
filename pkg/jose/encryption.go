package jose

import (
	"sync"

	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/header"
	"golang.org/x/exp/slices"
)

// Subject holds the encrypted parts of a JWE. Only the ciphertext is
// required; the encrypted key, initialization vector and authentication tag
// are empty when the algorithm does not use them.
//
// https://datatracker.ietf.org/doc/html/rfc7516#section-2
type Subject struct {
	encryptedKey base64.EncodedURL
	iv           base64.EncodedURL
	ciphertext   base64.EncodedURL
	tag          base64.EncodedURL
}

// NewSubject returns the encrypted parts of a JWE. The ciphertext must not
// be empty.
func NewSubject(encryptedKey, iv, ciphertext, tag base64.EncodedURL) (Subject, error) {
	if ciphertext == "" {
		return Subject{}, errcode.New(errcode.Argument, errcode.EmptyCiphertext)
	}
	return Subject{
		encryptedKey: encryptedKey,
		iv:           iv,
		ciphertext:   ciphertext,
		tag:          tag,
	}, nil
}

// EncryptedKey returns the encrypted content encryption key.
func (s Subject) EncryptedKey() base64.EncodedURL { return s.encryptedKey }

// IV returns the initialization vector.
func (s Subject) IV() base64.EncodedURL { return s.iv }

// Ciphertext returns the ciphertext.
func (s Subject) Ciphertext() base64.EncodedURL { return s.ciphertext }

// Tag returns the authentication tag.
func (s Subject) Tag() base64.EncodedURL { return s.tag }

// EncryptionObject is a JWE. A built object starts Unencrypted and becomes
// Encrypted once encrypted; a parsed object starts Encrypted. A successful
// decryption replaces the payload with the plaintext and makes it
// Decrypted.
//
// An EncryptionObject is safe for concurrent use. Its state transitions are
// serialized per object.
//
// https://datatracker.ietf.org/doc/html/rfc7516
type EncryptionObject struct {
	mu sync.Mutex

	header   *header.Encryption
	payload  Payload
	subject  Subject
	state    State
	segments []base64.EncodedURL
}

// NewEncryptionObject returns an unencrypted JWE for the given header and
// payload.
func NewEncryptionObject(h *header.Encryption, p Payload) (*EncryptionObject, error) {
	if h == nil {
		return nil, nilArgument("header")
	}

	return &EncryptionObject{
		header:  h,
		payload: p,
		state:   Unencrypted,
	}, nil
}

// ParseEncryption parses the compact serialization of a JWE. The object is
// Encrypted and its payload is empty until it is decrypted.
func ParseEncryption(s string) (*EncryptionObject, error) {
	segments, err := Split(s)
	if err != nil {
		return nil, err
	}
	return parseEncryption(segments)
}

func parseEncryption(segments []base64.EncodedURL) (*EncryptionObject, error) {
	if err := segmentCount("encryption", 5, segments); err != nil {
		return nil, err
	}

	h, err := header.DecodeEncryption(segments[0])
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.HeaderSegment, err)
	}

	return newParsedEncryption(h, segments)
}

func newParsedEncryption(h *header.Encryption, segments []base64.EncodedURL) (*EncryptionObject, error) {
	subject, err := NewSubject(segments[1], segments[2], segments[3], segments[4])
	if err != nil {
		return nil, err
	}

	return &EncryptionObject{
		header:   h,
		subject:  subject,
		state:    Encrypted,
		segments: segments,
	}, nil
}

// Header returns the header.
func (o *EncryptionObject) Header() header.Header {
	return o.EncryptionHeader()
}

// EncryptionHeader returns the header. After encryption this is the header
// returned by the encrypter.
func (o *EncryptionObject) EncryptionHeader() *header.Encryption {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.header
}

// Payload returns the payload, which is empty for a parsed object until it
// has been decrypted.
func (o *EncryptionObject) Payload() Payload {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.payload
}

// Segments returns the parsed segments, or nil.
func (o *EncryptionObject) Segments() []base64.EncodedURL {
	return cloneSegments(o.segments)
}

// Subject returns the encrypted parts, which are empty while the object is
// Unencrypted.
func (o *EncryptionObject) Subject() Subject {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.subject
}

// State returns the current state.
func (o *EncryptionObject) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

// Encrypt encrypts the payload. The object must be Unencrypted, and the
// encrypter must support both the header algorithm and method.
func (o *EncryptionObject) Encrypt(encrypter Encrypter) error {
	if encrypter == nil {
		return nilArgument("encrypter")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Unencrypted {
		return errcode.New(errcode.State, errcode.AlreadyEncrypted, o.state)
	}

	alg, enc := o.header.Algorithm(), o.header.Method()
	if !slices.Contains(encrypter.Supported(), alg) || !slices.Contains(encrypter.SupportedMethods(), enc) {
		return errcode.New(errcode.Policy, errcode.EncrypterUnsupported, alg.String(), enc.String())
	}

	h, subject, err := encrypter.Encrypt(o.header, o.payload.Bytes())
	if err != nil {
		return errcode.Wrap(errcode.Crypto, errcode.ProviderFailed, err, "encrypt")
	}
	if subject.ciphertext == "" {
		return errcode.Wrap(errcode.Crypto, errcode.ProviderFailed, errcode.New(errcode.Argument, errcode.EmptyCiphertext), "encrypt")
	}

	if h != nil {
		o.header = h
	}
	o.subject = subject
	o.state = Encrypted

	return nil
}

// Decrypt decrypts the payload. The object must be Encrypted or Decrypted,
// and the decrypter must accept both the header algorithm and method.
func (o *EncryptionObject) Decrypt(decrypter Decrypter) error {
	if decrypter == nil {
		return nilArgument("decrypter")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Encrypted && o.state != Decrypted {
		return errcode.New(errcode.State, errcode.NotEncrypted, o.state)
	}

	alg, enc := o.header.Algorithm(), o.header.Method()
	if !decrypter.Filter().Accepts(alg) || !decrypter.MethodFilter().Accepts(enc) {
		return errcode.New(errcode.Policy, errcode.DecrypterRejected, alg.String(), enc.String())
	}

	plaintext, err := decrypter.Decrypt(o.header, o.subject)
	if err != nil {
		return errcode.Wrap(errcode.Crypto, errcode.ProviderFailed, err, "decrypt")
	}

	o.payload = Payload{b: plaintext}
	o.state = Decrypted

	return nil
}

// Serialize returns the compact serialization. The object must be Encrypted
// or Decrypted.
func (o *EncryptionObject) Serialize() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Encrypted && o.state != Decrypted {
		return "", errcode.New(errcode.State, errcode.SerializeUnencrypted, o.state)
	}

	encoded, err := o.header.Encoded()
	if err != nil {
		return "", errcode.Wrap(errcode.Argument, errcode.HeaderSegment, err)
	}

	s := o.subject
	return join(encoded, s.encryptedKey, s.iv, s.ciphertext, s.tag), nil
}
