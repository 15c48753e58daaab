package jose

import (
	"sync"

	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/header"
	"golang.org/x/exp/slices"
)

// SignatureObject is a JWS. A built object starts Unsigned and becomes Signed
// once signed; a parsed object starts Signed. A successful verification
// makes it Verified, after which it may be verified again.
//
// The signing input is computed once, when the object is built or parsed,
// and reused by every sign and verify call.
//
// A SignatureObject is safe for concurrent use. Its state transitions are
// serialized per object.
//
// https://datatracker.ietf.org/doc/html/rfc7515
type SignatureObject struct {
	mu sync.Mutex

	header    *header.Signature
	payload   Payload
	input     string
	signature base64.EncodedURL
	state     State
	segments  []base64.EncodedURL
}

// NewSignatureObject returns an unsigned JWS for the given header and
// payload.
func NewSignatureObject(h *header.Signature, p Payload) (*SignatureObject, error) {
	if h == nil {
		return nil, nilArgument("header")
	}

	encoded, err := h.Encoded()
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.HeaderSegment, err)
	}

	return &SignatureObject{
		header:  h,
		payload: p,
		input:   join(encoded, p.EncodedURL()),
		state:   Unsigned,
	}, nil
}

// ParseSignature parses the compact serialization of a JWS. The object is
// Signed; its header and payload segments are kept byte for byte.
func ParseSignature(s string) (*SignatureObject, error) {
	segments, err := Split(s)
	if err != nil {
		return nil, err
	}
	return parseSignature(segments)
}

func parseSignature(segments []base64.EncodedURL) (*SignatureObject, error) {
	if err := segmentCount("signature", 3, segments); err != nil {
		return nil, err
	}

	h, err := header.DecodeSignature(segments[0])
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.HeaderSegment, err)
	}

	return newParsedSignature(h, segments), nil
}

func newParsedSignature(h *header.Signature, segments []base64.EncodedURL) *SignatureObject {
	return &SignatureObject{
		header:    h,
		payload:   NewPayload(segments[1].Bytes()),
		input:     join(segments[0], segments[1]),
		signature: segments[2],
		state:     Signed,
		segments:  segments,
	}
}

// Header returns the header.
func (o *SignatureObject) Header() header.Header {
	return o.header
}

// SignatureHeader returns the header.
func (o *SignatureObject) SignatureHeader() *header.Signature {
	return o.header
}

// Payload returns the payload.
func (o *SignatureObject) Payload() Payload {
	return o.payload
}

// Segments returns the parsed segments, or nil.
func (o *SignatureObject) Segments() []base64.EncodedURL {
	return cloneSegments(o.segments)
}

// SigningInput returns the ASCII bytes of the encoded header and payload
// joined by a dot.
func (o *SignatureObject) SigningInput() []byte {
	return []byte(o.input)
}

// Signature returns the encoded signature, or the empty string while the
// object is Unsigned.
func (o *SignatureObject) Signature() base64.EncodedURL {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.signature
}

// State returns the current state.
func (o *SignatureObject) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

// Sign signs the object. The object must be Unsigned, and the signer must
// support the header algorithm.
func (o *SignatureObject) Sign(signer Signer) error {
	if signer == nil {
		return nilArgument("signer")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Unsigned {
		return errcode.New(errcode.State, errcode.AlreadySigned, o.state)
	}

	alg := o.header.Algorithm()
	if !slices.Contains(signer.Supported(), alg) {
		return errcode.New(errcode.Policy, errcode.SignerUnsupported, alg.String())
	}

	sig, err := signer.Sign(o.header, []byte(o.input))
	if err != nil {
		return errcode.Wrap(errcode.Crypto, errcode.ProviderFailed, err, "sign")
	}

	o.signature = base64.NewEncodedURL(sig)
	o.state = Signed

	return nil
}

// Verify verifies the signature. The object must be Signed or Verified, and
// the verifier must accept the header algorithm. A signature that does not
// match returns false and leaves the state unchanged.
func (o *SignatureObject) Verify(verifier Verifier) (bool, error) {
	if verifier == nil {
		return false, nilArgument("verifier")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Signed && o.state != Verified {
		return false, errcode.New(errcode.State, errcode.NotSigned, o.state)
	}

	alg := o.header.Algorithm()
	if !verifier.Filter().Accepts(alg) {
		return false, errcode.New(errcode.Policy, errcode.VerifierRejected, alg.String())
	}

	ok, err := verifier.Verify(o.header, []byte(o.input), o.signature.Bytes())
	if err != nil {
		return false, errcode.Wrap(errcode.Crypto, errcode.ProviderFailed, err, "verify")
	}

	if ok {
		o.state = Verified
	}

	return ok, nil
}

// Serialize returns the compact serialization. The object must be Signed or
// Verified.
func (o *SignatureObject) Serialize() (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Signed && o.state != Verified {
		return "", errcode.New(errcode.State, errcode.SerializeUnsigned, o.state)
	}

	return join(base64.EncodedURL(o.input), o.signature), nil
}
