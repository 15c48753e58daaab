package jose_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/header"
	"github.com/trustkit/jose/pkg/jose"
	"github.com/trustkit/jose/pkg/jwa"
	"github.com/trustkit/jose/pkg/provider/hmac"
)

const (
	helloJWS = "eyJhbGciOiJIUzI1NiJ9.aGVsbG8.UYmO_lPAY5V0Wf4KZsfhiYs1SxqXPhxvjuYqellDV5A"

	// https://datatracker.ietf.org/doc/html/rfc7515#appendix-A.1
	rfcJWS = "eyJ0eXAiOiJKV1QiLA0KICJhbGciOiJIUzI1NiJ9" +
		".eyJpc3MiOiJqb2UiLA0KICJleHAiOjEzMDA4MTkzODAsDQogImh0dHA6Ly9leGFtcGxlLmNvbS9pc19yb290Ijp0cnVlfQ" +
		".dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	rfcKey = "AyM1SysPpbyDfgZld3umj1qzKObwVMkoqQ-EstJQLr_T-1qS0gZH75aKtMN3Yj0iPS4hcgUuTwjAzZr1Z9CAow"
)

func newHMAC(t *testing.T, secret string, algs ...jwa.Algorithm) *hmac.Provider {
	t.Helper()

	p, err := hmac.New([]byte(secret), algs...)
	require.NoError(t, err)
	return p
}

func newSignatureObject(t *testing.T, alg jwa.Algorithm, payload string) *jose.SignatureObject {
	t.Helper()

	h, err := header.NewSignatureBuilder(alg).Build()
	require.NoError(t, err)

	obj, err := jose.NewSignatureObject(h, jose.PayloadString(payload))
	require.NoError(t, err)
	return obj
}

// replaceAt returns s with the byte at i replaced by c.
func replaceAt(s string, i int, c byte) string {
	return s[:i] + string(c) + s[i+1:]
}

func TestSignatureLifecycle(t *testing.T) {
	p := newHMAC(t, "secret")

	obj := newSignatureObject(t, jwa.HS256, "hello")
	require.Equal(t, jose.Unsigned, obj.State())
	require.Empty(t, obj.Signature())
	require.Nil(t, obj.Segments())
	require.Equal(t, "eyJhbGciOiJIUzI1NiJ9.aGVsbG8", string(obj.SigningInput()))

	_, err := obj.Serialize()
	require.ErrorIs(t, err, errcode.ErrState)
	require.Equal(t, errcode.SerializeUnsigned, errcode.CodeOf(err))

	_, err = obj.Verify(p)
	require.ErrorIs(t, err, errcode.ErrState)
	require.Equal(t, errcode.NotSigned, errcode.CodeOf(err))

	require.NoError(t, obj.Sign(p))
	require.Equal(t, jose.Signed, obj.State())

	err = obj.Sign(p)
	require.ErrorIs(t, err, errcode.ErrState)
	require.Equal(t, errcode.AlreadySigned, errcode.CodeOf(err))

	s, err := obj.Serialize()
	require.NoError(t, err)
	require.Equal(t, helloJWS, s)

	parsed, err := jose.ParseSignature(s)
	require.NoError(t, err)
	require.Equal(t, jose.Signed, parsed.State())
	require.Equal(t, "hello", parsed.Payload().String())
	require.Equal(t, jwa.HS256, parsed.SignatureHeader().Algorithm())

	ok, err := parsed.Verify(p)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, jose.Verified, parsed.State())

	ok, err = parsed.Verify(p)
	require.NoError(t, err)
	require.True(t, ok)

	s, err = parsed.Serialize()
	require.NoError(t, err)
	require.Equal(t, helloJWS, s)
}

func TestSignatureRFCExample(t *testing.T) {
	p, err := hmac.New(base64.EncodedURL(rfcKey).Bytes())
	require.NoError(t, err)

	obj, err := jose.ParseSignature(rfcJWS)
	require.NoError(t, err)
	require.Equal(t, header.TypeJWT, obj.SignatureHeader().Type())

	ok, err := obj.Verify(p)
	require.NoError(t, err)
	require.True(t, ok)

	var claims map[string]any
	require.NoError(t, obj.Payload().JSON(&claims))
	require.Equal(t, "joe", claims["iss"])

	s, err := obj.Serialize()
	require.NoError(t, err)
	require.Equal(t, rfcJWS, s)

	segments := strings.Split(rfcJWS, ".")
	require.Equal(t, segments[0]+"."+segments[1], string(obj.SigningInput()))
	require.Len(t, obj.Segments(), 3)
}

func TestSignatureTampered(t *testing.T) {
	p := newHMAC(t, "secret")
	dot := strings.LastIndexByte(helloJWS, '.')

	tests := map[string]string{
		"signature": replaceAt(helloJWS, dot+1, 'V'),
		"payload":   strings.Replace(helloJWS, "aGVsbG8", "aGVsbG9", 1),
		"truncated": helloJWS[:dot+5],
		"empty":     helloJWS[:dot+1],
	}

	for name, s := range tests {
		t.Run(name, func(t *testing.T) {
			obj, err := jose.ParseSignature(s)
			require.NoError(t, err)

			ok, err := obj.Verify(p)
			require.NoError(t, err)
			require.False(t, ok)
			require.Equal(t, jose.Signed, obj.State())
		})
	}
}

func TestSignatureWrongSecret(t *testing.T) {
	obj, err := jose.ParseSignature(helloJWS)
	require.NoError(t, err)

	ok, err := obj.Verify(newHMAC(t, "terces"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSignaturePolicy(t *testing.T) {
	t.Run("signer does not support the algorithm", func(t *testing.T) {
		obj := newSignatureObject(t, jwa.HS256, "hello")

		err := obj.Sign(newHMAC(t, "secret", jwa.HS512))
		require.ErrorIs(t, err, errcode.ErrPolicy)
		require.Equal(t, errcode.SignerUnsupported, errcode.CodeOf(err))
		require.Equal(t, jose.Unsigned, obj.State())
	})

	t.Run("verifier does not accept the algorithm", func(t *testing.T) {
		p := newHMAC(t, "secret")
		require.NoError(t, p.Filter().SetAccepted(jwa.HS384, jwa.HS512))

		obj, err := jose.ParseSignature(helloJWS)
		require.NoError(t, err)

		ok, err := obj.Verify(p)
		require.False(t, ok)
		require.ErrorIs(t, err, errcode.ErrPolicy)
		require.Equal(t, errcode.VerifierRejected, errcode.CodeOf(err))
		require.Equal(t, jose.Signed, obj.State())
	})
}

func TestSignatureNilArguments(t *testing.T) {
	_, err := jose.NewSignatureObject(nil, jose.PayloadString("hello"))
	require.Equal(t, errcode.NilArgument, errcode.CodeOf(err))

	obj := newSignatureObject(t, jwa.HS256, "hello")
	require.Equal(t, errcode.NilArgument, errcode.CodeOf(obj.Sign(nil)))

	_, err = obj.Verify(nil)
	require.Equal(t, errcode.NilArgument, errcode.CodeOf(err))
}

var errBroken = errors.New("broken")

type brokenSigner struct{}

func (brokenSigner) Supported() []jwa.Algorithm { return []jwa.Algorithm{jwa.HS256} }

func (brokenSigner) Sign(*header.Signature, []byte) ([]byte, error) { return nil, errBroken }

func TestSignatureProviderFailure(t *testing.T) {
	obj := newSignatureObject(t, jwa.HS256, "hello")

	err := obj.Sign(brokenSigner{})
	require.ErrorIs(t, err, errcode.ErrCrypto)
	require.ErrorIs(t, err, errBroken)
	require.Equal(t, errcode.ProviderFailed, errcode.CodeOf(err))
	require.Equal(t, jose.Unsigned, obj.State())
}

func TestParseSignatureErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errcode.Code
	}{
		{name: "one segment", input: "eyJhbGciOiJIUzI1NiJ9", code: errcode.MissingFirstDelimiter},
		{name: "five segments", input: "eyJhbGciOiJIUzI1NiJ9.a.b.c.d", code: errcode.SegmentCount},
		{name: "header is not json", input: "aGVsbG8.aGVsbG8.c2ln", code: errcode.HeaderSegment},
		{name: "plain header", input: "eyJhbGciOiJub25lIn0.aGVsbG8.", code: errcode.HeaderSegment},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := jose.ParseSignature(test.input)
			require.ErrorIs(t, err, errcode.ErrArgument)
			require.Equal(t, test.code, errcode.CodeOf(err))
		})
	}
}

func TestSignatureConcurrentVerify(t *testing.T) {
	p := newHMAC(t, "secret")

	obj, err := jose.ParseSignature(helloJWS)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]bool, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := obj.Verify(p)
			if err != nil {
				t.Error(err)
			}
			results[i] = ok
		}(i)
	}
	wg.Wait()

	for _, ok := range results {
		require.True(t, ok)
	}
	require.Equal(t, jose.Verified, obj.State())
}

func TestSignatureConcurrentSign(t *testing.T) {
	p := newHMAC(t, "secret")
	obj := newSignatureObject(t, jwa.HS256, "hello")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		signed int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if obj.Sign(p) == nil {
				mu.Lock()
				signed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, signed)
	require.Equal(t, jose.Signed, obj.State())
}
