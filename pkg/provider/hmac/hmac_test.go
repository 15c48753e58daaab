package hmac_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/header"
	"github.com/trustkit/jose/pkg/jwa"
	"github.com/trustkit/jose/pkg/provider/hmac"
)

func signatureHeader(t *testing.T, alg jwa.Algorithm) *header.Signature {
	t.Helper()

	h, err := header.NewSignatureBuilder(alg).Build()
	require.NoError(t, err)
	return h
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		secret []byte
		algs   []jwa.Algorithm
		want   []jwa.Algorithm
		code   errcode.Code
	}{
		{
			name:   "all algorithms by default",
			secret: []byte("secret"),
			want:   []jwa.Algorithm{jwa.HS256, jwa.HS384, jwa.HS512},
		},
		{
			name:   "subset",
			secret: []byte("secret"),
			algs:   []jwa.Algorithm{jwa.HS512},
			want:   []jwa.Algorithm{jwa.HS512},
		},
		{
			name: "empty secret",
			code: errcode.HMACEmptySecret,
		},
		{
			name:   "not an hmac algorithm",
			secret: []byte("secret"),
			algs:   []jwa.Algorithm{jwa.HS256, jwa.RS256},
			code:   errcode.HMACAlgorithm,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p, err := hmac.New(test.secret, test.algs...)
			if test.code != "" {
				require.Error(t, err)
				require.Equal(t, test.code, errcode.CodeOf(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.want, p.Supported())
			require.Equal(t, test.want, p.Filter().Accepted())
		})
	}
}

func TestSignVerify(t *testing.T) {
	p, err := hmac.New([]byte("secret"))
	require.NoError(t, err)

	input := []byte("eyJhbGciOiJIUzI1NiJ9.aGVsbG8")

	for _, test := range []struct {
		alg  jwa.Algorithm
		size int
	}{
		{jwa.HS256, 32},
		{jwa.HS384, 48},
		{jwa.HS512, 64},
	} {
		t.Run(test.alg.String(), func(t *testing.T) {
			h := signatureHeader(t, test.alg)

			sig, err := p.Sign(h, input)
			require.NoError(t, err)
			require.Len(t, sig, test.size)

			ok, err := p.Verify(h, input, sig)
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = p.Verify(h, []byte("eyJhbGciOiJIUzI1NiJ9.aGVsbG9"), sig)
			require.NoError(t, err)
			require.False(t, ok)

			sig[0] ^= 0xff
			ok, err = p.Verify(h, input, sig)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestSecretIsCopied(t *testing.T) {
	secret := []byte("secret")
	p, err := hmac.New(secret)
	require.NoError(t, err)

	h := signatureHeader(t, jwa.HS256)
	sig, err := p.Sign(h, []byte("input"))
	require.NoError(t, err)

	secret[0] = 'S'

	ok, err := p.Verify(h, []byte("input"), sig)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSignUnsupported(t *testing.T) {
	p, err := hmac.New([]byte("secret"), jwa.HS256)
	require.NoError(t, err)

	_, err = p.Sign(signatureHeader(t, jwa.HS512), []byte("input"))
	require.ErrorIs(t, err, errcode.ErrPolicy)
	require.Equal(t, errcode.SignerUnsupported, errcode.CodeOf(err))
}

func TestVerifyNarrowedFilter(t *testing.T) {
	p, err := hmac.New([]byte("secret"))
	require.NoError(t, err)

	h := signatureHeader(t, jwa.HS256)
	sig, err := p.Sign(h, []byte("input"))
	require.NoError(t, err)

	require.NoError(t, p.Filter().SetAccepted(jwa.HS512))

	_, err = p.Verify(h, []byte("input"), sig)
	require.ErrorIs(t, err, errcode.ErrPolicy)
	require.Equal(t, errcode.VerifierRejected, errcode.CodeOf(err))

	err = p.Filter().SetAccepted(jwa.RS256)
	require.Equal(t, errcode.FilterNotSupported, errcode.CodeOf(err))
	require.Equal(t, []jwa.Algorithm{jwa.HS512}, p.Filter().Accepted())
}
