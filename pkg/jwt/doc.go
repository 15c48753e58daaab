// Package jwt implements JSON Web Tokens (JWTs) as signed JOSE objects.
//
// A token is signed with any jose.Signer and verified with any
// jose.Verifier. Verification checks the signature first, then the issuer,
// audience, expiration and not-before claims, each with an optional leeway
// and a clock that tests can control.
//
// https://datatracker.ietf.org/doc/html/rfc7519
package jwt
