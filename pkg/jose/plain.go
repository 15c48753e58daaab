package jose

import (
	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/header"
)

// PlainObject is an unsecured JOSE object, with algorithm "none". It has no
// state machine and may be serialized at any time, as the header, the
// payload and an empty third segment.
//
// https://datatracker.ietf.org/doc/html/rfc7519#section-6
type PlainObject struct {
	header   *header.Plain
	payload  Payload
	input    string
	segments []base64.EncodedURL
}

// NewPlainObject returns a plain object for the given header and payload.
func NewPlainObject(h *header.Plain, p Payload) (*PlainObject, error) {
	if h == nil {
		return nil, nilArgument("header")
	}

	encoded, err := h.Encoded()
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.HeaderSegment, err)
	}

	return &PlainObject{
		header:  h,
		payload: p,
		input:   join(encoded, p.EncodedURL()),
	}, nil
}

// ParsePlain parses the compact serialization of a plain object.
func ParsePlain(s string) (*PlainObject, error) {
	segments, err := Split(s)
	if err != nil {
		return nil, err
	}
	if err := segmentCount("plain", 3, segments); err != nil {
		return nil, err
	}

	h, err := header.DecodePlain(segments[0])
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.HeaderSegment, err)
	}

	return newParsedPlain(h, segments)
}

func newParsedPlain(h *header.Plain, segments []base64.EncodedURL) (*PlainObject, error) {
	if segments[2] != "" {
		return nil, errcode.New(errcode.Argument, errcode.PlainSignature)
	}

	return &PlainObject{
		header:   h,
		payload:  NewPayload(segments[1].Bytes()),
		input:    join(segments[0], segments[1]),
		segments: segments,
	}, nil
}

// Header returns the header.
func (o *PlainObject) Header() header.Header {
	return o.header
}

// PlainHeader returns the header.
func (o *PlainObject) PlainHeader() *header.Plain {
	return o.header
}

// Payload returns the payload.
func (o *PlainObject) Payload() Payload {
	return o.payload
}

// Segments returns the parsed segments, or nil.
func (o *PlainObject) Segments() []base64.EncodedURL {
	return cloneSegments(o.segments)
}

// Serialize returns "header.payload." and never fails.
func (o *PlainObject) Serialize() (string, error) {
	return o.input + ".", nil
}

func cloneSegments(segments []base64.EncodedURL) []base64.EncodedURL {
	if segments == nil {
		return nil
	}
	return append([]base64.EncodedURL(nil), segments...)
}
