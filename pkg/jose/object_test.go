package jose_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/jose"
)

func encodeHeader(json string) string {
	return base64.URLEncode([]byte(json))
}

func TestParse(t *testing.T) {
	var (
		dir    = encodeHeader(`{"alg":"dir","enc":"A128GCM"}`)
		dirJWE = encodeHeader(`{"alg":"dir","enc":"A128GCM","typ":"JWE"}`)
	)

	tests := []struct {
		name  string
		input string
		want  any
		code  errcode.Code
	}{
		{name: "signature", input: helloJWS, want: &jose.SignatureObject{}},
		{name: "plain", input: helloPlain, want: &jose.PlainObject{}},
		{name: "plain typ JWT", input: encodeHeader(`{"alg":"none","typ":"JWT"}`) + ".aGVsbG8.", want: &jose.PlainObject{}},
		{name: "signature typ JOSE", input: encodeHeader(`{"alg":"HS256","typ":"JOSE"}`) + ".aGVsbG8.c2ln", want: &jose.SignatureObject{}},
		{name: "signature typ JWS", input: encodeHeader(`{"alg":"HS256","typ":"JWS"}`) + ".aGVsbG8.c2ln", want: &jose.SignatureObject{}},
		{name: "encryption", input: dir + "..aXY.Y3Q.dGFn", want: &jose.EncryptionObject{}},
		{name: "encryption typ JWE", input: dirJWE + "..aXY.Y3Q.dGFn", want: &jose.EncryptionObject{}},
		{name: "unknown typ", input: encodeHeader(`{"alg":"HS256","typ":"foo"}`) + ".aGVsbG8.c2ln", code: errcode.UnknownObjectType},
		{name: "typ is not a string", input: encodeHeader(`{"typ":7}`) + ".aGVsbG8.c2ln", code: errcode.HeaderSegment},
		{name: "header is not json", input: "aGVsbG8.aGVsbG8.c2ln", code: errcode.HeaderSegment},
		{name: "typ JWS with none", input: encodeHeader(`{"alg":"none","typ":"JWS"}`) + ".aGVsbG8.", code: errcode.HeaderSegment},
		{name: "signature with five segments", input: helloJWS + ".a.b", code: errcode.SegmentCount},
		{name: "encryption with three segments", input: dir + ".aXY.Y3Q", code: errcode.SegmentCount},
		{name: "typ JWE with three segments", input: dirJWE + ".aXY.Y3Q", code: errcode.SegmentCount},
		{name: "encryption without ciphertext", input: dir + "..aXY..dGFn", code: errcode.EmptyCiphertext},
		{name: "missing delimiter", input: "abc", code: errcode.MissingFirstDelimiter},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			obj, err := jose.Parse(test.input)
			if test.code != "" {
				require.ErrorIs(t, err, errcode.ErrArgument)
				require.Equal(t, test.code, errcode.CodeOf(err))
				return
			}
			require.NoError(t, err)
			require.IsType(t, test.want, obj)
			require.Len(t, obj.Segments(), len(mustSplit(t, test.input)))
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{helloJWS, helloPlain, rfcJWS} {
		obj, err := jose.Parse(s)
		require.NoError(t, err)

		out, err := obj.Serialize()
		require.NoError(t, err)
		require.Equal(t, s, out)
	}
}

func TestStateString(t *testing.T) {
	tests := map[jose.State]string{
		jose.Unsigned:    "UNSIGNED",
		jose.Signed:      "SIGNED",
		jose.Verified:    "VERIFIED",
		jose.Unencrypted: "UNENCRYPTED",
		jose.Encrypted:   "ENCRYPTED",
		jose.Decrypted:   "DECRYPTED",
		jose.State(0):    "State(0)",
	}
	for state, want := range tests {
		require.Equal(t, want, state.String())
	}
}

func mustSplit(t *testing.T, s string) []base64.EncodedURL {
	t.Helper()

	segments, err := jose.Split(s)
	require.NoError(t, err)
	return segments
}
