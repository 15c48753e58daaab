package header

import (
	"net/url"

	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/jwa"
	"github.com/trustkit/jose/pkg/jwk"
	"golang.org/x/exp/slices"
)

// Encryption is the JOSE header of a JWE.
//
// https://www.rfc-editor.org/rfc/rfc7516.html#section-4
type Encryption struct {
	secure

	enc    jwa.Algorithm
	epk    *jwk.Key
	zip    string
	apu    base64.EncodedURL
	apv    base64.EncodedURL
	p2s    base64.EncodedURL
	p2c    int
	hasP2C bool
	iv     base64.EncodedURL
	skid   string
}

var _ Header = (*Encryption)(nil)

// Method returns the "enc" parameter, the content encryption algorithm.
func (h *Encryption) Method() jwa.Algorithm {
	return h.enc
}

// EphemeralPublicKey returns the "epk" parameter, or nil.
func (h *Encryption) EphemeralPublicKey() *jwk.Key {
	return h.epk
}

// Compression returns the "zip" parameter.
func (h *Encryption) Compression() string {
	return h.zip
}

// AgreementPartyUInfo returns the "apu" parameter.
func (h *Encryption) AgreementPartyUInfo() base64.EncodedURL {
	return h.apu
}

// AgreementPartyVInfo returns the "apv" parameter.
func (h *Encryption) AgreementPartyVInfo() base64.EncodedURL {
	return h.apv
}

// PBES2Salt returns the "p2s" parameter.
func (h *Encryption) PBES2Salt() base64.EncodedURL {
	return h.p2s
}

// PBES2Count returns the "p2c" parameter, if present.
func (h *Encryption) PBES2Count() (int, bool) {
	return h.p2c, h.hasP2C
}

// IV returns the "iv" parameter used by AES GCM key wrapping.
func (h *Encryption) IV() base64.EncodedURL {
	return h.iv
}

// SenderKeyID returns the "skid" parameter.
func (h *Encryption) SenderKeyID() string {
	return h.skid
}

func (h *Encryption) members() []member {
	ms := h.algorithmMember()
	ms = append(ms, member{ParamEncryption, h.enc.String()})
	ms = h.typeMembers(ms)
	ms = h.secureMembers(ms)
	if h.epk != nil {
		ms = append(ms, member{ParamEphemeralPublicKey, h.epk})
	}
	if h.zip != "" {
		ms = append(ms, member{ParamCompression, h.zip})
	}
	if h.apu != "" {
		ms = append(ms, member{ParamAgreementPartyUInfo, h.apu.String()})
	}
	if h.apv != "" {
		ms = append(ms, member{ParamAgreementPartyVInfo, h.apv.String()})
	}
	if h.p2s != "" {
		ms = append(ms, member{ParamPBES2SaltInput, h.p2s.String()})
	}
	if h.hasP2C {
		ms = append(ms, member{ParamPBES2Count, h.p2c})
	}
	if h.iv != "" {
		ms = append(ms, member{ParamInitializationVector, h.iv.String()})
	}
	if h.skid != "" {
		ms = append(ms, member{ParamSenderKeyID, h.skid})
	}
	return h.customMembers(ms)
}

func (h *Encryption) Parameter(name ParameterName) (any, bool) {
	return lookup(h.members(), name)
}

func (h *Encryption) Parameters() map[ParameterName]any {
	return parameters(h.members())
}

func (h *Encryption) Included() []ParameterName {
	return included(h.members())
}

func (h *Encryption) MarshalJSON() ([]byte, error) {
	return marshalMembers(h.members())
}

func (h *Encryption) Encoded() (base64.EncodedURL, error) {
	return encoded(h.origin, h.members())
}

func (h *Encryption) clone() Encryption {
	cp := *h
	cp.secure = h.secure.clone()
	return cp
}

func (h *Encryption) parseMember(r rawMembers, name string) (bool, error) {
	if ok, err := h.secure.parseMember(r, name); ok {
		return true, err
	}

	var err error
	switch name {
	case ParamEncryption:
		// The method is fixed when the builder is created.
	case ParamEphemeralPublicKey:
		h.epk, err = r.key(name)
	case ParamCompression:
		h.zip, err = r.string(name)
	case ParamAgreementPartyUInfo:
		h.apu, err = r.encodedURL(name)
	case ParamAgreementPartyVInfo:
		h.apv, err = r.encodedURL(name)
	case ParamPBES2SaltInput:
		h.p2s, err = r.encodedURL(name)
	case ParamPBES2Count:
		h.p2c, err = r.int(name)
		h.hasP2C = err == nil
	case ParamInitializationVector:
		h.iv, err = r.encodedURL(name)
	case ParamSenderKeyID:
		h.skid, err = r.string(name)
	default:
		return false, nil
	}
	return true, err
}

// Builder returns a builder initialized with the parameters of h. The
// origin is not carried over.
func (h *Encryption) Builder() *EncryptionBuilder {
	return &EncryptionBuilder{
		h: h.clone(),
		v: validator{reserved: encryptionNames},
	}
}

// EncryptionBuilder builds an *Encryption header.
type EncryptionBuilder struct {
	h Encryption
	v validator
}

// NewEncryptionBuilder returns a builder for an encryption header with the
// given key management algorithm and content encryption method.
func NewEncryptionBuilder(alg, enc jwa.Algorithm) *EncryptionBuilder {
	b := &EncryptionBuilder{
		h: Encryption{
			secure: secure{common: common{
				alg:    alg,
				custom: map[ParameterName]any{},
			}},
			enc: enc,
		},
		v: validator{reserved: encryptionNames},
	}
	b.v.algorithm(alg, alg.Kind() == jwa.KeyManagement, "encryption")
	b.v.algorithm(enc, enc.Kind() == jwa.ContentEncryption, "encryption")
	return b
}

// Type sets the "typ" parameter.
func (b *EncryptionBuilder) Type(typ Type) *EncryptionBuilder {
	b.h.typ = typ
	return b
}

// ContentType sets the "cty" parameter.
func (b *EncryptionBuilder) ContentType(cty string) *EncryptionBuilder {
	b.h.cty = cty
	return b
}

// JWKSetURL sets the "jku" parameter.
func (b *EncryptionBuilder) JWKSetURL(u *url.URL) *EncryptionBuilder {
	b.h.jku = cloneURL(u)
	return b
}

// JWK sets the "jwk" parameter.
func (b *EncryptionBuilder) JWK(key *jwk.Key) *EncryptionBuilder {
	b.h.jwk = key
	return b
}

// X509URL sets the "x5u" parameter.
func (b *EncryptionBuilder) X509URL(u *url.URL) *EncryptionBuilder {
	b.h.x5u = cloneURL(u)
	return b
}

// X509Thumbprint sets the "x5t" parameter.
func (b *EncryptionBuilder) X509Thumbprint(t base64.EncodedURL) *EncryptionBuilder {
	b.h.x5t = t
	return b
}

// X509ThumbprintS256 sets the "x5t#S256" parameter.
func (b *EncryptionBuilder) X509ThumbprintS256(t base64.EncodedURL) *EncryptionBuilder {
	b.h.x5tS256 = t
	return b
}

// X509Chain sets the "x5c" parameter.
func (b *EncryptionBuilder) X509Chain(chain ...base64.Encoded) *EncryptionBuilder {
	b.h.x5c = slices.Clone(chain)
	return b
}

// KeyID sets the "kid" parameter.
func (b *EncryptionBuilder) KeyID(kid string) *EncryptionBuilder {
	b.h.kid = kid
	return b
}

// Critical sets the "crit" parameter.
func (b *EncryptionBuilder) Critical(names ...string) *EncryptionBuilder {
	b.h.critical = slices.Clone(names)
	return b
}

// EphemeralPublicKey sets the "epk" parameter. Build fails if key is a
// private key.
func (b *EncryptionBuilder) EphemeralPublicKey(key *jwk.Key) *EncryptionBuilder {
	b.h.epk = key
	return b
}

// Compression sets the "zip" parameter, see CompressionDeflate.
func (b *EncryptionBuilder) Compression(zip string) *EncryptionBuilder {
	b.h.zip = zip
	return b
}

// AgreementPartyUInfo sets the "apu" parameter.
func (b *EncryptionBuilder) AgreementPartyUInfo(apu base64.EncodedURL) *EncryptionBuilder {
	b.h.apu = apu
	return b
}

// AgreementPartyVInfo sets the "apv" parameter.
func (b *EncryptionBuilder) AgreementPartyVInfo(apv base64.EncodedURL) *EncryptionBuilder {
	b.h.apv = apv
	return b
}

// PBES2Salt sets the "p2s" parameter.
func (b *EncryptionBuilder) PBES2Salt(p2s base64.EncodedURL) *EncryptionBuilder {
	b.h.p2s = p2s
	return b
}

// PBES2Count sets the "p2c" parameter. Build fails if count is negative.
func (b *EncryptionBuilder) PBES2Count(count int) *EncryptionBuilder {
	b.h.p2c = count
	b.h.hasP2C = true
	return b
}

// IV sets the "iv" parameter.
func (b *EncryptionBuilder) IV(iv base64.EncodedURL) *EncryptionBuilder {
	b.h.iv = iv
	return b
}

// SenderKeyID sets the "skid" parameter.
func (b *EncryptionBuilder) SenderKeyID(skid string) *EncryptionBuilder {
	b.h.skid = skid
	return b
}

// Custom sets a custom parameter. Build fails if name is reserved.
func (b *EncryptionBuilder) Custom(name ParameterName, value any) *EncryptionBuilder {
	b.v.custom(b.h.custom, name, value)
	return b
}

func (b *EncryptionBuilder) parseCustom(r rawMembers, name string) error {
	value, err := r.value(name)
	if err != nil {
		return err
	}
	b.Custom(name, value)
	return nil
}

// Build returns the header, or the first error recorded while building.
func (b *EncryptionBuilder) Build() (*Encryption, error) {
	if b.v.err != nil {
		return nil, b.v.err
	}
	if b.h.epk != nil && b.h.epk.IsPrivate() {
		return nil, errcode.New(errcode.Argument, errcode.HeaderEphemeralKey)
	}
	if b.h.hasP2C && b.h.p2c < 0 {
		return nil, errcode.New(errcode.Argument, errcode.HeaderNegativeCount, b.h.p2c)
	}
	h := b.h.clone()
	return &h, nil
}
