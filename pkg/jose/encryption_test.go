package jose_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/header"
	"github.com/trustkit/jose/pkg/jose"
	"github.com/trustkit/jose/pkg/jwa"
	"github.com/trustkit/jose/pkg/provider/aesgcm"
)

func newAESGCM(t *testing.T, method jwa.Algorithm) *aesgcm.Provider {
	t.Helper()

	size := 16
	if method == jwa.A256GCM {
		size = 32
	}
	p, err := aesgcm.New(bytes.Repeat([]byte{0x2a}, size), method)
	require.NoError(t, err)
	return p
}

func newEncryptionObject(t *testing.T, enc jwa.Algorithm, payload string) *jose.EncryptionObject {
	t.Helper()

	h, err := header.NewEncryptionBuilder(jwa.Direct, enc).Build()
	require.NoError(t, err)

	obj, err := jose.NewEncryptionObject(h, jose.PayloadString(payload))
	require.NoError(t, err)
	return obj
}

func TestEncryptionLifecycle(t *testing.T) {
	p := newAESGCM(t, jwa.A128GCM)

	obj := newEncryptionObject(t, jwa.A128GCM, "hello")
	require.Equal(t, jose.Unencrypted, obj.State())
	require.Equal(t, jose.Subject{}, obj.Subject())

	_, err := obj.Serialize()
	require.ErrorIs(t, err, errcode.ErrState)
	require.Equal(t, errcode.SerializeUnencrypted, errcode.CodeOf(err))

	err = obj.Decrypt(p)
	require.ErrorIs(t, err, errcode.ErrState)
	require.Equal(t, errcode.NotEncrypted, errcode.CodeOf(err))

	require.NoError(t, obj.Encrypt(p))
	require.Equal(t, jose.Encrypted, obj.State())

	err = obj.Encrypt(p)
	require.ErrorIs(t, err, errcode.ErrState)
	require.Equal(t, errcode.AlreadyEncrypted, errcode.CodeOf(err))

	s, err := obj.Serialize()
	require.NoError(t, err)
	require.Len(t, strings.Split(s, "."), 5)
	require.NotContains(t, s, base64.URLEncode([]byte("hello")))

	parsed, err := jose.ParseEncryption(s)
	require.NoError(t, err)
	require.Equal(t, jose.Encrypted, parsed.State())
	require.Equal(t, obj.Subject(), parsed.Subject())

	require.NoError(t, parsed.Decrypt(p))
	require.Equal(t, jose.Decrypted, parsed.State())
	require.Equal(t, "hello", parsed.Payload().String())

	require.NoError(t, parsed.Decrypt(p))
	require.Equal(t, jose.Decrypted, parsed.State())

	out, err := parsed.Serialize()
	require.NoError(t, err)
	require.Equal(t, s, out)
}

func TestEncryptionPolicy(t *testing.T) {
	t.Run("encrypter does not support the method", func(t *testing.T) {
		obj := newEncryptionObject(t, jwa.A256GCM, "hello")

		err := obj.Encrypt(newAESGCM(t, jwa.A128GCM))
		require.ErrorIs(t, err, errcode.ErrPolicy)
		require.Equal(t, errcode.EncrypterUnsupported, errcode.CodeOf(err))
		require.Equal(t, jose.Unencrypted, obj.State())
	})

	t.Run("decrypter does not accept the method", func(t *testing.T) {
		p := newAESGCM(t, jwa.A128GCM)

		obj := newEncryptionObject(t, jwa.A128GCM, "hello")
		require.NoError(t, obj.Encrypt(p))

		require.NoError(t, p.MethodFilter().SetAccepted())

		err := obj.Decrypt(p)
		require.ErrorIs(t, err, errcode.ErrPolicy)
		require.Equal(t, errcode.DecrypterRejected, errcode.CodeOf(err))
		require.Equal(t, jose.Encrypted, obj.State())
	})

	t.Run("decrypter does not accept the algorithm", func(t *testing.T) {
		p := newAESGCM(t, jwa.A128GCM)

		obj := newEncryptionObject(t, jwa.A128GCM, "hello")
		require.NoError(t, obj.Encrypt(p))

		require.NoError(t, p.Filter().SetAccepted())

		err := obj.Decrypt(p)
		require.Equal(t, errcode.DecrypterRejected, errcode.CodeOf(err))
	})
}

func TestEncryptionTampered(t *testing.T) {
	p := newAESGCM(t, jwa.A128GCM)

	obj := newEncryptionObject(t, jwa.A128GCM, "hello world")
	require.NoError(t, obj.Encrypt(p))

	s, err := obj.Serialize()
	require.NoError(t, err)

	segments := strings.Split(s, ".")
	ciphertext := segments[3]
	if ciphertext[0] == 'A' {
		segments[3] = replaceAt(ciphertext, 0, 'B')
	} else {
		segments[3] = replaceAt(ciphertext, 0, 'A')
	}

	parsed, err := jose.ParseEncryption(strings.Join(segments, "."))
	require.NoError(t, err)

	err = parsed.Decrypt(p)
	require.ErrorIs(t, err, errcode.ErrCrypto)
	require.ErrorIs(t, err, &errcode.Error{Code: errcode.AESOpen})
	require.Equal(t, errcode.ProviderFailed, errcode.CodeOf(err))
	require.Equal(t, jose.Encrypted, parsed.State())
	require.Zero(t, parsed.Payload().Len())
}

// keyIDEncrypter adds a "kid" to the header before encrypting.
type keyIDEncrypter struct {
	*aesgcm.Provider
	kid string
}

func (e keyIDEncrypter) Encrypt(h *header.Encryption, plaintext []byte) (*header.Encryption, jose.Subject, error) {
	h, err := h.Builder().KeyID(e.kid).Build()
	if err != nil {
		return nil, jose.Subject{}, err
	}
	return e.Provider.Encrypt(h, plaintext)
}

func TestEncrypterReplacesHeader(t *testing.T) {
	p := newAESGCM(t, jwa.A128GCM)

	obj := newEncryptionObject(t, jwa.A128GCM, "hello")
	require.NoError(t, obj.Encrypt(keyIDEncrypter{Provider: p, kid: "k1"}))
	require.Equal(t, "k1", obj.EncryptionHeader().KeyID())

	s, err := obj.Serialize()
	require.NoError(t, err)

	parsed, err := jose.ParseEncryption(s)
	require.NoError(t, err)
	require.Equal(t, "k1", parsed.EncryptionHeader().KeyID())
	require.NoError(t, parsed.Decrypt(p))
	require.Equal(t, "hello", parsed.Payload().String())
}

func TestNewSubject(t *testing.T) {
	_, err := jose.NewSubject("", "aXY", "", "dGFn")
	require.ErrorIs(t, err, errcode.ErrArgument)
	require.Equal(t, errcode.EmptyCiphertext, errcode.CodeOf(err))

	s, err := jose.NewSubject("a2V5", "aXY", "Y3Q", "dGFn")
	require.NoError(t, err)
	require.Equal(t, base64.EncodedURL("a2V5"), s.EncryptedKey())
	require.Equal(t, base64.EncodedURL("aXY"), s.IV())
	require.Equal(t, base64.EncodedURL("Y3Q"), s.Ciphertext())
	require.Equal(t, base64.EncodedURL("dGFn"), s.Tag())
}

func TestEncryptionNilArguments(t *testing.T) {
	_, err := jose.NewEncryptionObject(nil, jose.PayloadString("hello"))
	require.Equal(t, errcode.NilArgument, errcode.CodeOf(err))

	obj := newEncryptionObject(t, jwa.A128GCM, "hello")
	require.Equal(t, errcode.NilArgument, errcode.CodeOf(obj.Encrypt(nil)))
	require.Equal(t, errcode.NilArgument, errcode.CodeOf(obj.Decrypt(nil)))
}
