package jose

import (
	"strings"

	"github.com/trustkit/jose/pkg/base64"
	"github.com/trustkit/jose/pkg/errcode"
)

// Media types of the two JOSE serializations.
//
// https://datatracker.ietf.org/doc/html/rfc7515#section-9.2
const (
	MIMECompact = "application/jose; charset=UTF-8"
	MIMEJSON    = "application/jose+json; charset=UTF-8"
)

// Split splits a compact serialization into its segments, in order. The
// serialization must have exactly three segments (plain objects and JWS) or
// five segments (JWE). Segments may be empty.
//
// https://datatracker.ietf.org/doc/html/rfc7515#section-7.1
// https://datatracker.ietf.org/doc/html/rfc7516#section-7.1
func Split(s string) ([]base64.EncodedURL, error) {
	dot1 := strings.IndexByte(s, '.')
	if dot1 < 0 {
		return nil, errcode.New(errcode.Argument, errcode.MissingFirstDelimiter)
	}

	dot2 := indexFrom(s, dot1+1)
	if dot2 < 0 {
		return nil, errcode.New(errcode.Argument, errcode.MissingSecondDelimiter)
	}

	dot3 := indexFrom(s, dot2+1)
	if dot3 < 0 {
		return []base64.EncodedURL{
			base64.EncodedURL(s[:dot1]),
			base64.EncodedURL(s[dot1+1 : dot2]),
			base64.EncodedURL(s[dot2+1:]),
		}, nil
	}

	dot4 := indexFrom(s, dot3+1)
	if dot4 < 0 {
		return nil, errcode.New(errcode.Argument, errcode.MissingFourthDelimiter)
	}

	if indexFrom(s, dot4+1) >= 0 {
		return nil, errcode.New(errcode.Argument, errcode.TooManyDelimiters)
	}

	return []base64.EncodedURL{
		base64.EncodedURL(s[:dot1]),
		base64.EncodedURL(s[dot1+1 : dot2]),
		base64.EncodedURL(s[dot2+1 : dot3]),
		base64.EncodedURL(s[dot3+1 : dot4]),
		base64.EncodedURL(s[dot4+1:]),
	}, nil
}

func indexFrom(s string, from int) int {
	i := strings.IndexByte(s[from:], '.')
	if i < 0 {
		return -1
	}
	return from + i
}

func join(segments ...base64.EncodedURL) string {
	var b strings.Builder
	for i, segment := range segments {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(string(segment))
	}
	return b.String()
}
