package jwt

import (
	"net/http"
	"strings"

	"github.com/trustkit/jose/pkg/errcode"
)

// FromHTTPAuthorizationHeader extracts a JWT string from the Authorization
// header of an HTTP request, which must use the "Bearer" scheme.
//
// # Warning
//
// This value needs to be parsed and verified before it can be used safely.
//
// https://datatracker.ietf.org/doc/html/rfc6750#section-2.1
func FromHTTPAuthorizationHeader(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", errcode.New(errcode.Argument, errcode.TokenAuthHeader)
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", errcode.New(errcode.Argument, errcode.TokenAuthHeader)
	}

	return token, nil
}

// HTTPHeaderValue is a type that can be used as a value when setting
// an HTTP request header.
type HTTPHeaderValue interface {
	string | *Token
}

// SetHTTPAuthorizationHeader sets the Authorization header of an HTTP request
// to the given JWT, prefixed with "Bearer ".
func SetHTTPAuthorizationHeader[T HTTPHeaderValue](r *http.Request, jwt T) {
	var s string
	switch v := any(jwt).(type) {
	case string:
		s = v
	case *Token:
		s = v.String()
	}
	r.Header.Set("Authorization", "Bearer "+s)
}
