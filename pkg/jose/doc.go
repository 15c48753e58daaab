// Package jose implements the JavaScript Object Signing and Encryption (JOSE)
// envelope: plain objects, signed objects (JWS) and encrypted objects (JWE)
// in the compact serialization, and the contracts of the providers that sign,
// verify, encrypt and decrypt them.
//
// Signed and encrypted objects are state machines. A JWS moves from Unsigned
// to Signed to Verified, a JWE from Unencrypted to Encrypted to Decrypted,
// and each transition is checked against the algorithms the provider
// supports or, for verifiers and decrypters, currently accepts.
//
// Related RFCs:
//   - RFC7515 https://datatracker.ietf.org/doc/html/rfc7515 JWS, JSON Web Signature
//   - RFC7516 https://datatracker.ietf.org/doc/html/rfc7516 JWE, JSON Web Encryption
//   - RFC7517 https://datatracker.ietf.org/doc/html/rfc7517 JWK, JSON Web Key
//   - RFC7518 https://datatracker.ietf.org/doc/html/rfc7518 JWA, JSON Web Algorithms
//   - RFC7519 https://datatracker.ietf.org/doc/html/rfc7519 JWT, JSON Web Token
//
// Related Information:
//   - https://datatracker.ietf.org/wg/jose/charter/
package jose
