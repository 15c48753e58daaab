package header

import (
	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/jwa"
)

// Plain is the header of an unsecured JOSE object, whose algorithm is
// always "none".
type Plain struct {
	common
}

var _ Header = (*Plain)(nil)

func (h *Plain) members() []member {
	ms := h.algorithmMember()
	ms = h.typeMembers(ms)
	return h.customMembers(ms)
}

func (h *Plain) Parameter(name ParameterName) (any, bool) {
	return lookup(h.members(), name)
}

func (h *Plain) Parameters() map[ParameterName]any {
	return parameters(h.members())
}

func (h *Plain) Included() []ParameterName {
	return included(h.members())
}

func (h *Plain) MarshalJSON() ([]byte, error) {
	return marshalMembers(h.members())
}

func (h *Plain) Encoded() (base64.EncodedURL, error) {
	return encoded(h.origin, h.members())
}

// Builder returns a builder initialized with the parameters of h.
func (h *Plain) Builder() *PlainBuilder {
	return &PlainBuilder{
		h: Plain{common: h.clone()},
		v: validator{reserved: commonNames},
	}
}

// PlainBuilder builds a *Plain header.
type PlainBuilder struct {
	h Plain
	v validator
}

// NewPlainBuilder returns a builder for a plain header.
func NewPlainBuilder() *PlainBuilder {
	return &PlainBuilder{
		h: Plain{common: common{
			alg:    jwa.None,
			custom: map[ParameterName]any{},
		}},
		v: validator{reserved: commonNames},
	}
}

// Type sets the "typ" parameter.
func (b *PlainBuilder) Type(typ Type) *PlainBuilder {
	b.h.typ = typ
	return b
}

// ContentType sets the "cty" parameter.
func (b *PlainBuilder) ContentType(cty string) *PlainBuilder {
	b.h.cty = cty
	return b
}

// Custom sets a custom parameter. Build fails if name is reserved.
func (b *PlainBuilder) Custom(name ParameterName, value any) *PlainBuilder {
	b.v.custom(b.h.custom, name, value)
	return b
}

func (b *PlainBuilder) parseCustom(r rawMembers, name string) error {
	value, err := r.value(name)
	if err != nil {
		return err
	}
	b.Custom(name, value)
	return nil
}

// Build returns the header, or the first error recorded by a setter.
func (b *PlainBuilder) Build() (*Plain, error) {
	if b.v.err != nil {
		return nil, b.v.err
	}
	return &Plain{common: b.h.clone()}, nil
}

// parseMember sets a common parameter from its JSON member, reporting
// whether name is one.
func (c *common) parseMember(r rawMembers, name string) (bool, error) {
	switch name {
	case ParamAlgorithm:
		// The algorithm is fixed when the builder is created.
		return true, nil
	case ParamType:
		s, err := r.string(name)
		if err != nil {
			return true, err
		}
		c.typ = Type(s)
	case ParamContentType:
		s, err := r.string(name)
		if err != nil {
			return true, err
		}
		c.cty = s
	default:
		return false, nil
	}
	return true, nil
}
