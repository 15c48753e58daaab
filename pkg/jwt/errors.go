package jwt

import "github.com/trustkit/jose/pkg/errcode"

// Sentinels for errors.Is. Each matches any error carrying the same code,
// whatever its arguments.
var (
	ErrInvalidSignature = &errcode.Error{Kind: errcode.Crypto, Code: errcode.TokenSignature}
	ErrIssuer           = &errcode.Error{Kind: errcode.Policy, Code: errcode.TokenIssuer}
	ErrAudience         = &errcode.Error{Kind: errcode.Policy, Code: errcode.TokenAudience}
	ErrExpired          = &errcode.Error{Kind: errcode.Policy, Code: errcode.TokenExpired}
	ErrNotYetValid      = &errcode.Error{Kind: errcode.Policy, Code: errcode.TokenNotYet}
	ErrAuthHeader       = &errcode.Error{Kind: errcode.Argument, Code: errcode.TokenAuthHeader}
)
