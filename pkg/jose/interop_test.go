package jose_test

import (
	"bytes"
	"testing"

	gojose "github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/require"
	"github.com/trustkit/jose/pkg/header"
	"github.com/trustkit/jose/pkg/jose"
	"github.com/trustkit/jose/pkg/jwa"
	"github.com/trustkit/jose/pkg/provider/aesgcm"
	"github.com/trustkit/jose/pkg/provider/hmac"
)

// go-jose rejects HMAC keys shorter than the hash output.
var interopSecret = []byte("0123456789abcdef0123456789abcdef")

func TestInteropSignatureFromGoJOSE(t *testing.T) {
	signer, err := gojose.NewSigner(gojose.SigningKey{Algorithm: gojose.HS256, Key: interopSecret}, nil)
	require.NoError(t, err)

	jws, err := signer.Sign([]byte(`{"sub":"alice"}`))
	require.NoError(t, err)
	s, err := jws.CompactSerialize()
	require.NoError(t, err)

	obj, err := jose.Parse(s)
	require.NoError(t, err)
	require.IsType(t, &jose.SignatureObject{}, obj)

	p, err := hmac.New(interopSecret)
	require.NoError(t, err)

	ok, err := obj.(*jose.SignatureObject).Verify(p)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"sub":"alice"}`, obj.Payload().String())
}

func TestInteropSignatureToGoJOSE(t *testing.T) {
	p, err := hmac.New(interopSecret)
	require.NoError(t, err)

	h, err := header.NewSignatureBuilder(jwa.HS256).Type(header.TypeJWT).KeyID("k1").Build()
	require.NoError(t, err)
	obj, err := jose.NewSignatureObject(h, jose.PayloadString(`{"sub":"alice"}`))
	require.NoError(t, err)
	require.NoError(t, obj.Sign(p))

	s, err := obj.Serialize()
	require.NoError(t, err)

	jws, err := gojose.ParseSigned(s, []gojose.SignatureAlgorithm{gojose.HS256})
	require.NoError(t, err)
	require.Equal(t, "k1", jws.Signatures[0].Header.KeyID)

	payload, err := jws.Verify(interopSecret)
	require.NoError(t, err)
	require.Equal(t, `{"sub":"alice"}`, string(payload))
}

func TestInteropEncryptionFromGoJOSE(t *testing.T) {
	key := bytes.Repeat([]byte{0x2a}, 16)

	encrypter, err := gojose.NewEncrypter(gojose.A128GCM, gojose.Recipient{Algorithm: gojose.DIRECT, Key: key}, nil)
	require.NoError(t, err)
	jwe, err := encrypter.Encrypt([]byte("attack at dawn"))
	require.NoError(t, err)
	s, err := jwe.CompactSerialize()
	require.NoError(t, err)

	obj, err := jose.ParseEncryption(s)
	require.NoError(t, err)

	p, err := aesgcm.New(key, jwa.A128GCM)
	require.NoError(t, err)
	require.NoError(t, obj.Decrypt(p))
	require.Equal(t, "attack at dawn", obj.Payload().String())
}

func TestInteropEncryptionToGoJOSE(t *testing.T) {
	key := bytes.Repeat([]byte{0x2a}, 32)

	p, err := aesgcm.New(key, jwa.A256GCM)
	require.NoError(t, err)

	h, err := header.NewEncryptionBuilder(jwa.Direct, jwa.A256GCM).ContentType("text/plain").Build()
	require.NoError(t, err)
	obj, err := jose.NewEncryptionObject(h, jose.PayloadString("attack at dawn"))
	require.NoError(t, err)
	require.NoError(t, obj.Encrypt(p))

	s, err := obj.Serialize()
	require.NoError(t, err)

	jwe, err := gojose.ParseEncrypted(s, []gojose.KeyAlgorithm{gojose.DIRECT}, []gojose.ContentEncryption{gojose.A256GCM})
	require.NoError(t, err)

	plaintext, err := jwe.Decrypt(key)
	require.NoError(t, err)
	require.Equal(t, "attack at dawn", string(plaintext))
}
