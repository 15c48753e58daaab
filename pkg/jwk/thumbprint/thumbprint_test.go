package thumbprint

import (
	"crypto"
	_ "crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/jwk"
)

func TestGenerate_EC(t *testing.T) {
	key, err := jwk.NewKey(jwk.Value{
		"kty": "EC",
		"crv": "P-256",
		"x":   "MKBCTNIcKUSDii11ySs3526iDZ8AiTo7Tu6KPAqv7D4",
		"y":   "4Etl6SRW2YiLUrN5vfvVHuhp7x8PxltmWWlbbM4IFyM",
		"use": "enc",
		"kid": "1",
	})
	require.NoError(t, err)

	// {"crv":"P-256","kty":"EC","x":"MKBCTNIcKUSDii11ySs3526iDZ8AiTo7Tu6KPAqv7D4","y":"4Etl6SRW2YiLUrN5vfvVHuhp7x8PxltmWWlbbM4IFyM"}

	thumbprint, err := Generate(key, crypto.SHA256)
	require.NoError(t, err)

	require.Equal(t, "cn-I_WNMClehiVp51i_0VpOENW1upEerA8sEam5hn-s", base64.URLEncode(thumbprint))
}

func TestGenerate_RSA(t *testing.T) {
	key, err := jwk.NewKey(jwk.Value{
		"kty": "RSA",
		"n":   "0vx7agoebGcQSuuPiLJXZptN9nndrQmbXEps2aiAFbWhM78LhWx4cbbfAAtVT86zwu1RK7aPFFxuhDR1L6tSoc_BJECPebWKRXjBZCiFV4n3oknjhMstn64tZ_2W-5JsGY4Hc5n9yBXArwl93lqt7_RN5w6Cf0h4QyQ5v-65YGjQR0_FDW2QvzqY368QQMicAtaSqzs8KJZgnYb9c7d0zgdAZHzu6qMQvRL5hajrn1n91CbOpbISD08qNLyrdkt-bFTWhAI4vMQFh6WeZu0fM4lFd2NcRwr3XPksINHaQ-G_xBniIqbw0Ls1jF44-csFCur-kEgU8awapJzKnqDKgw",
		"e":   "AQAB",
		"alg": "RS256",
		"kid": "2011-04-29",
	})
	require.NoError(t, err)

	// {"e":"AQAB","kty":"RSA","n":"0vx7agoebGcQSuuPiLJXZptN9nndrQmbXEps2aiAFbWhM78LhWx4cbbfAAtVT86zwu1RK7aPFFxuhDR1L6tSoc_BJECPebWKRXjBZCiFV4n3oknjhMstn64tZ_2W-5JsGY4Hc5n9yBXArwl93lqt7_RN5w6Cf0h4QyQ5v-65YGjQR0_FDW2QvzqY368QQMicAtaSqzs8KJZgnYb9c7d0zgdAZHzu6qMQvRL5hajrn1n91CbOpbISD08qNLyrdkt-bFTWhAI4vMQFh6WeZu0fM4lFd2NcRwr3XPksINHaQ-G_xBniIqbw0Ls1jF44-csFCur-kEgU8awapJzKnqDKgw"}

	thumbprint, err := GenerateString(key, crypto.SHA256)
	require.NoError(t, err)

	require.Equal(t, "NzbLsXh8uDCcd-6MNwXF4W_7noWXFZAfHkxZsRGC9Xs", thumbprint)
}

func TestGenerate_IgnoresOptionalMembers(t *testing.T) {
	bare, err := jwk.FromSymmetricKey([]byte("secret"))
	require.NoError(t, err)

	labeled, err := jwk.FromSymmetricKey([]byte("secret"), jwk.WithKeyID("a"), jwk.WithUse(jwk.UseSignature))
	require.NoError(t, err)

	a, err := Generate(bare, 0)
	require.NoError(t, err)

	b, err := Generate(labeled, crypto.SHA256)
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Len(t, a, 32)
}
