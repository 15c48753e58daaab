package jose_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/jose"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		input string
		want  []base64.EncodedURL
		code  errcode.Code
	}{
		{input: "a.b.c", want: []base64.EncodedURL{"a", "b", "c"}},
		{input: "a.b.", want: []base64.EncodedURL{"a", "b", ""}},
		{input: "..", want: []base64.EncodedURL{"", "", ""}},
		{input: "a.b.c.d.e", want: []base64.EncodedURL{"a", "b", "c", "d", "e"}},
		{input: "a..c.d.e", want: []base64.EncodedURL{"a", "", "c", "d", "e"}},
		{input: "....", want: []base64.EncodedURL{"", "", "", "", ""}},
		{input: "", code: errcode.MissingFirstDelimiter},
		{input: "abc", code: errcode.MissingFirstDelimiter},
		{input: "a.b", code: errcode.MissingSecondDelimiter},
		{input: "a.b.c.d", code: errcode.MissingFourthDelimiter},
		{input: "a.b.c.d.e.f", code: errcode.TooManyDelimiters},
		{input: "a.b.c.d.e.", code: errcode.TooManyDelimiters},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			segments, err := jose.Split(test.input)
			if test.code != "" {
				require.ErrorIs(t, err, errcode.ErrArgument)
				require.Equal(t, test.code, errcode.CodeOf(err))
				require.Nil(t, segments)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.want, segments)
		})
	}
}
