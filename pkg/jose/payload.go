package jose

import (
	"bytes"
	"encoding/json"

	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
)

// Payload is the content carried by a JOSE object. The bytes are copied in
// and out, so a Payload is immutable and safe to share.
type Payload struct {
	b []byte
}

// NewPayload returns a payload holding a copy of b.
func NewPayload(b []byte) Payload {
	return Payload{b: bytes.Clone(b)}
}

// PayloadString returns a payload holding the UTF-8 bytes of s.
func PayloadString(s string) Payload {
	return Payload{b: []byte(s)}
}

// PayloadJSON returns a payload holding the JSON encoding of v.
func PayloadJSON(v any) (Payload, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Payload{}, errcode.Wrap(errcode.Argument, errcode.PayloadJSON, err)
	}
	return Payload{b: b}, nil
}

// Bytes returns a copy of the payload bytes.
func (p Payload) Bytes() []byte {
	return bytes.Clone(p.b)
}

// String returns the payload as a UTF-8 string.
func (p Payload) String() string {
	return string(p.b)
}

// Len returns the number of bytes in the payload.
func (p Payload) Len() int {
	return len(p.b)
}

// JSON decodes the payload into v. Numbers are decoded as json.Number when
// v is an interface or map.
func (p Payload) JSON(v any) error {
	dec := json.NewDecoder(bytes.NewReader(p.b))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errcode.Wrap(errcode.Argument, errcode.PayloadJSON, err)
	}
	return nil
}

// EncodedURL returns the base64url encoding of the payload.
func (p Payload) EncodedURL() base64.EncodedURL {
	return base64.NewEncodedURL(p.b)
}
