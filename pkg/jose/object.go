package jose

import (
	"encoding/json"
	"fmt"

	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/header"
)

// Object is a plain, signed or encrypted JOSE object.
type Object interface {
	// Header returns the JOSE header.
	Header() header.Header

	// Payload returns the payload. The payload of an encrypted object is
	// empty until it has been decrypted.
	Payload() Payload

	// Serialize returns the compact serialization.
	Serialize() (string, error)

	// Segments returns the segments the object was parsed from, or nil if
	// it was built.
	Segments() []base64.EncodedURL
}

var (
	_ Object = (*PlainObject)(nil)
	_ Object = (*SignatureObject)(nil)
	_ Object = (*EncryptionObject)(nil)
)

// State is the state of a signature or encryption object. States only ever
// advance.
type State int

const (
	Unsigned State = iota + 1
	Signed
	Verified

	Unencrypted
	Encrypted
	Decrypted
)

func (s State) String() string {
	switch s {
	case Unsigned:
		return "UNSIGNED"
	case Signed:
		return "SIGNED"
	case Verified:
		return "VERIFIED"
	case Unencrypted:
		return "UNENCRYPTED"
	case Encrypted:
		return "ENCRYPTED"
	case Decrypted:
		return "DECRYPTED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Parse parses a compact serialization into the object kind its header
// declares. A "typ" of "JWS" or "JWE" selects the kind directly. Without a
// "typ", or with a "typ" of "JWT" or "JOSE", the kind follows from the
// algorithm: "none" is a plain object, a signature algorithm a JWS and a key
// management algorithm a JWE. Any other "typ" is rejected.
//
// Only the header segment is decoded to choose the kind.
func Parse(s string) (Object, error) {
	segments, err := Split(s)
	if err != nil {
		return nil, err
	}

	var probe struct {
		Type *string `json:"typ"`
	}
	if err := json.Unmarshal(segments[0].Bytes(), &probe); err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.HeaderSegment, err)
	}

	if probe.Type != nil {
		switch header.Type(*probe.Type) {
		case header.TypeJWS:
			return parseSignature(segments)
		case header.TypeJWE:
			return parseEncryption(segments)
		case header.TypeJWT, "JOSE":
		default:
			return nil, errcode.New(errcode.Argument, errcode.UnknownObjectType, *probe.Type)
		}
	}

	h, err := header.Decode(segments[0])
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.HeaderSegment, err)
	}

	switch h := h.(type) {
	case *header.Plain:
		if err := segmentCount("plain", 3, segments); err != nil {
			return nil, err
		}
		return newParsedPlain(h, segments)
	case *header.Signature:
		if err := segmentCount("signature", 3, segments); err != nil {
			return nil, err
		}
		return newParsedSignature(h, segments), nil
	case *header.Encryption:
		if err := segmentCount("encryption", 5, segments); err != nil {
			return nil, err
		}
		return newParsedEncryption(h, segments)
	default:
		return nil, errcode.New(errcode.Argument, errcode.UnknownObjectType, fmt.Sprintf("%T", h))
	}
}

func segmentCount(kind string, want int, segments []base64.EncodedURL) error {
	if len(segments) != want {
		return errcode.New(errcode.Argument, errcode.SegmentCount, kind, want, len(segments))
	}
	return nil
}

func nilArgument(name string) error {
	return errcode.New(errcode.Argument, errcode.NilArgument, name)
}
