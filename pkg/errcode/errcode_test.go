package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		sent error
	}{
		{
			name: "argument",
			err:  New(Argument, UnknownAlgorithm, "HS1"),
			kind: Argument,
			sent: ErrArgument,
		},
		{
			name: "state",
			err:  New(State, AlreadySigned, "SIGNED"),
			kind: State,
			sent: ErrState,
		},
		{
			name: "policy",
			err:  New(Policy, VerifierRejected, "RS256"),
			kind: Policy,
			sent: ErrPolicy,
		},
		{
			name: "crypto",
			err:  Wrap(Crypto, ProviderFailed, errors.New("boom"), "sign"),
			kind: Crypto,
			sent: ErrCrypto,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.True(t, Is(test.err, test.kind))
			require.ErrorIs(t, test.err, test.sent)

			wrapped := fmt.Errorf("outer: %w", test.err)
			require.True(t, Is(wrapped, test.kind))
			require.ErrorIs(t, wrapped, test.sent)

			for _, other := range []error{ErrArgument, ErrState, ErrPolicy, ErrCrypto} {
				if other == test.sent {
					continue
				}
				require.NotErrorIs(t, test.err, other)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := New(Argument, UnknownAlgorithm, "HS1")
	require.Equal(t, `JWA-00001: unexpected algorithm "HS1"`, err.Error())
	require.Equal(t, UnknownAlgorithm, CodeOf(err))
	require.ErrorIs(t, err, &Error{Code: UnknownAlgorithm})
	require.NotErrorIs(t, err, &Error{Code: UnknownCurve})
}

func TestErrorWrapKeepsInner(t *testing.T) {
	inner := errors.New("key too short")
	err := Wrap(Crypto, ProviderFailed, inner, "sign")
	require.ErrorIs(t, err, inner)
	require.Equal(t, "JOSE-00030: the cryptographic sign operation failed: key too short", err.Error())
}

func TestMessageLocalized(t *testing.T) {
	err := New(Argument, UnknownCurve, "P-999")

	require.Equal(t, `JWA-00002: unexpected curve "P-999"`, Message(err, language.English))
	require.Equal(t, `JWA-00002: unerwartete Kurve "P-999"`, Message(err, language.German))

	require.Equal(t, "plain", Message(errors.New("plain"), language.German))
}

func TestMessageArgumentOrder(t *testing.T) {
	err := New(Argument, AESKeySize, 16, "A128GCM", 3)
	require.Equal(t, "AES-00001: the content encryption key must be 16 bytes for A128GCM, got 3", err.Error())
	require.Equal(t, "AES-00001: der Inhaltsschlüssel muss für A128GCM 16 Bytes lang sein, erhalten 3", Message(err, language.German))
}

func TestEveryCodeHasTemplates(t *testing.T) {
	for code, tmpl := range templates {
		require.NotEmpty(t, tmpl.en, "english template for %s", code)
		require.NotEmpty(t, tmpl.de, "german template for %s", code)
	}
	require.Contains(t, Languages(), language.English)
	require.Contains(t, Languages(), language.German)
}
