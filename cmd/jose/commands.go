package main

import (
	"bytes"
	"crypto"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/header"
	"github.com/trustkit/jose/pkg/jose"
	"github.com/trustkit/jose/pkg/jwa"
	"github.com/trustkit/jose/pkg/jwk"
	"github.com/trustkit/jose/pkg/jwk/thumbprint"
	"github.com/trustkit/jose/pkg/jwt"
	"github.com/trustkit/jose/pkg/keyutil"
	"github.com/trustkit/jose/pkg/provider/aesgcm"
	"github.com/trustkit/jose/pkg/provider/hmac"
	"golang.org/x/exp/slices"
)

// errInvalidSignature is returned by verify for a signature that does not
// match.
var errInvalidSignature = errors.New("signature is invalid")

var signCommand = command{
	usage: "sign a payload, or a JWT claims set with --jwt",
	flags: func(flags *pflag.FlagSet) {
		flags.String("alg", jwa.HS256.String(), "HMAC signature algorithm")
		flags.String("kid", "", "key ID, also used to look the key up in the key set")
		flags.String("typ", "", "\"typ\" header parameter")
		flags.String("cty", "", "\"cty\" header parameter")
		flags.Bool("jwt", false, "sign the payload as a JWT claims set")
	},
	run: func(e *env) error {
		alg, err := algorithmFlag(e.flags, "alg")
		if err != nil {
			return err
		}
		kid, _ := e.flags.GetString("kid")
		typ, _ := e.flags.GetString("typ")
		cty, _ := e.flags.GetString("cty")
		asJWT, _ := e.flags.GetBool("jwt")

		payload, err := e.input()
		if err != nil {
			return err
		}

		key, err := e.config.Key(e.ctx, kid)
		if err != nil {
			return err
		}
		p, err := hmac.New(key, alg)
		if err != nil {
			return err
		}

		b := header.NewSignatureBuilder(alg)
		if kid != "" {
			b = b.KeyID(kid)
		}
		if typ != "" {
			b = b.Type(header.Type(typ))
		}
		if cty != "" {
			b = b.ContentType(cty)
		}
		h, err := b.Build()
		if err != nil {
			return err
		}

		var s string
		if asJWT {
			claims, err := jwt.ParseClaims(jose.PayloadString(payload))
			if err != nil {
				return err
			}
			token, err := jwt.Sign(h, claims, p)
			if err != nil {
				return err
			}
			s, err = token.Serialize()
			if err != nil {
				return err
			}
		} else {
			obj, err := jose.NewSignatureObject(h, jose.PayloadString(payload))
			if err != nil {
				return err
			}
			if err := obj.Sign(p); err != nil {
				return err
			}
			s, err = obj.Serialize()
			if err != nil {
				return err
			}
		}

		e.logger.Debug("signed", "alg", alg, "kid", kid, "jwt", asJWT)
		_, err = fmt.Fprintln(e.stdout, s)
		return err
	},
}

var verifyCommand = command{
	usage: "verify a JWS and print its payload, or its claims with --jwt",
	flags: func(flags *pflag.FlagSet) {
		flags.Bool("jwt", false, "verify the object as a JWT and check its claims")
		flags.StringSlice("iss", nil, "allowed issuers")
		flags.StringSlice("aud", nil, "allowed audiences")
		flags.Duration("leeway", 0, "clock skew tolerance for \"exp\" and \"nbf\"")
		flags.Bool("require-exp", false, "reject a JWT without an \"exp\" claim")
	},
	run: func(e *env) error {
		asJWT, _ := e.flags.GetBool("jwt")

		s, err := e.input()
		if err != nil {
			return err
		}

		obj, err := jose.ParseSignature(s)
		if err != nil {
			return err
		}
		h := obj.SignatureHeader()

		p, err := e.verifier(h)
		if err != nil {
			return err
		}

		if asJWT {
			issuers, _ := e.flags.GetStringSlice("iss")
			audiences, _ := e.flags.GetStringSlice("aud")
			leeway, _ := e.flags.GetDuration("leeway")
			requireExp, _ := e.flags.GetBool("require-exp")

			opts := []jwt.VerifyOption{
				jwt.WithAllowedIssuers(issuers...),
				jwt.WithAllowedAudiences(audiences...),
				jwt.WithLeeway(leeway),
			}
			if requireExp {
				opts = append(opts, jwt.WithExpirationRequired())
			}

			token, err := jwt.ParseAndVerify(s, p, opts...)
			if err != nil {
				return err
			}
			e.logger.Debug("verified token", "alg", h.Algorithm(), "kid", h.KeyID(), "sub", token.Claims().Subject())
			return writeJSON(e, token.Claims())
		}

		ok, err := obj.Verify(p)
		if err != nil {
			return err
		}
		if !ok {
			return errInvalidSignature
		}

		e.logger.Debug("verified", "alg", h.Algorithm(), "kid", h.KeyID())
		_, err = fmt.Fprintln(e.stdout, obj.Payload())
		return err
	},
}

// verifier returns an HMAC verifier for the key of the header, narrowed to
// the accepted algorithms.
func (e *env) verifier(h *header.Signature) (*hmac.Provider, error) {
	key, err := e.config.Key(e.ctx, h.KeyID())
	if err != nil {
		return nil, err
	}
	p, err := hmac.New(key)
	if err != nil {
		return nil, err
	}

	accepted, err := e.config.Accepted()
	if err != nil {
		return nil, err
	}
	if err := narrow(p.Filter(), accepted); err != nil {
		return nil, err
	}
	return p, nil
}

var encryptCommand = command{
	usage: "encrypt a payload with \"dir\" and AES-GCM",
	flags: func(flags *pflag.FlagSet) {
		flags.String("enc", jwa.A256GCM.String(), "content encryption method")
		flags.String("kid", "", "key ID, also used to look the key up in the key set")
		flags.String("cty", "", "\"cty\" header parameter")
	},
	run: func(e *env) error {
		enc, err := algorithmFlag(e.flags, "enc")
		if err != nil {
			return err
		}
		kid, _ := e.flags.GetString("kid")
		cty, _ := e.flags.GetString("cty")

		plaintext, err := e.input()
		if err != nil {
			return err
		}

		key, err := e.config.Key(e.ctx, kid)
		if err != nil {
			return err
		}
		p, err := aesgcm.New(key, enc)
		if err != nil {
			return err
		}

		b := header.NewEncryptionBuilder(jwa.Direct, enc)
		if kid != "" {
			b = b.KeyID(kid)
		}
		if cty != "" {
			b = b.ContentType(cty)
		}
		h, err := b.Build()
		if err != nil {
			return err
		}

		obj, err := jose.NewEncryptionObject(h, jose.PayloadString(plaintext))
		if err != nil {
			return err
		}
		if err := obj.Encrypt(p); err != nil {
			return err
		}
		s, err := obj.Serialize()
		if err != nil {
			return err
		}

		e.logger.Debug("encrypted", "enc", enc, "kid", kid)
		_, err = fmt.Fprintln(e.stdout, s)
		return err
	},
}

var decryptCommand = command{
	usage: "decrypt a \"dir\" AES-GCM JWE and print its payload",
	run: func(e *env) error {
		s, err := e.input()
		if err != nil {
			return err
		}

		obj, err := jose.ParseEncryption(s)
		if err != nil {
			return err
		}
		h := obj.EncryptionHeader()

		key, err := e.config.Key(e.ctx, h.KeyID())
		if err != nil {
			return err
		}
		p, err := aesgcm.New(key, h.Method())
		if err != nil {
			return err
		}

		accepted, err := e.config.Accepted()
		if err != nil {
			return err
		}
		if err := narrow(p.Filter(), accepted); err != nil {
			return err
		}
		if err := narrow(p.MethodFilter(), accepted); err != nil {
			return err
		}

		if err := obj.Decrypt(p); err != nil {
			return err
		}

		e.logger.Debug("decrypted", "enc", h.Method(), "kid", h.KeyID())
		_, err = fmt.Fprintln(e.stdout, obj.Payload())
		return err
	},
}

// inspection is the JSON document printed by inspect.
type inspection struct {
	Kind     string          `json:"kind"`
	State    string          `json:"state,omitempty"`
	Header   json.RawMessage `json:"header"`
	Payload  any             `json:"payload,omitempty"`
	Segments int             `json:"segments"`
}

var inspectCommand = command{
	usage: "print the header and payload of any compact object without verifying it",
	run: func(e *env) error {
		s, err := e.input()
		if err != nil {
			return err
		}

		obj, err := jose.Parse(s)
		if err != nil {
			return err
		}

		h, err := obj.Header().MarshalJSON()
		if err != nil {
			return err
		}
		out := inspection{
			Header:   h,
			Segments: len(obj.Segments()),
		}

		switch obj := obj.(type) {
		case *jose.PlainObject:
			out.Kind = "plain"
		case *jose.SignatureObject:
			out.Kind = "signature"
			out.State = obj.State().String()
		case *jose.EncryptionObject:
			out.Kind = "encryption"
			out.State = obj.State().String()
		}

		if p := obj.Payload(); p.Len() > 0 {
			out.Payload = p.String()
			if json.Valid(p.Bytes()) {
				out.Payload = json.RawMessage(p.Bytes())
			}
		}

		return writeJSON(e, out)
	},
}

var hashes = map[string]crypto.Hash{
	"SHA-256": crypto.SHA256,
	"SHA-384": crypto.SHA384,
	"SHA-512": crypto.SHA512,
}

var thumbprintCommand = command{
	usage: "print the RFC 7638 thumbprint of a JWK",
	flags: func(flags *pflag.FlagSet) {
		flags.String("hash", "SHA-256", "hash function, SHA-256, SHA-384 or SHA-512")
	},
	run: func(e *env) error {
		name, _ := e.flags.GetString("hash")
		h, ok := hashes[strings.ToUpper(name)]
		if !ok {
			return errcode.New(errcode.Argument, errcode.ThumbprintHash, name)
		}

		b, err := e.file()
		if err != nil {
			return err
		}
		key, err := jwk.ParseKey(b)
		if err != nil {
			return err
		}

		tp, err := thumbprint.GenerateString(key, h)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(e.stdout, tp)
		return err
	},
}

var keysetCommand = command{
	usage: "merge JWKs, JWK sets, PEM public keys and key set URLs into one JWK set",
	flags: func(flags *pflag.FlagSet) {
		flags.Bool("public", false, "only keep the public parts of the keys")
	},
	run: func(e *env) error {
		public, _ := e.flags.GetBool("public")

		sources := e.flags.Args()
		if len(sources) == 0 {
			sources = []string{"-"}
		}

		set := jwk.NewSet()
		for _, source := range sources {
			keys, err := e.readKeys(source)
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}
			for _, key := range keys {
				set.Add(key)
			}
			e.logger.Debug("read keys", "source", source, "count", len(keys))
		}
		if err := set.Validate(); err != nil {
			return err
		}
		if public {
			set = set.Public()
		}

		return writeJSON(e, set)
	},
}

// readKeys reads the keys of a key set URL, or of a file holding a JWK, a
// JWK set or PEM public keys. PEM keys are identified by their thumbprint.
func (e *env) readKeys(source string) ([]*jwk.Key, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		set, err := (&Config{KeySet: source}).LoadKeySet(e.ctx)
		if err != nil {
			return nil, err
		}
		return set.Keys(), nil
	}

	b, err := e.readSource(source)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(b)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, err
		}
		if _, ok := probe["keys"]; ok {
			set, err := jwk.ParseSet(trimmed)
			if err != nil {
				return nil, err
			}
			return set.Keys(), nil
		}
		key, err := jwk.ParseKey(trimmed)
		if err != nil {
			return nil, err
		}
		return []*jwk.Key{key}, nil
	}

	pubs, err := keyutil.ParsePublicKeys(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	keys := make([]*jwk.Key, 0, len(pubs))
	for _, pub := range pubs {
		key, err := jwk.FromPublicKey(pub)
		if err != nil {
			return nil, err
		}
		kid, err := thumbprint.GenerateString(key, crypto.SHA256)
		if err != nil {
			return nil, err
		}
		if key, err = jwk.FromPublicKey(pub, jwk.WithKeyID(kid)); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// keySizes is the secret length generated for each algorithm.
var keySizes = map[jwa.Algorithm]int{
	jwa.HS256:   32,
	jwa.HS384:   48,
	jwa.HS512:   64,
	jwa.A128GCM: 16,
	jwa.A256GCM: 32,
}

var keygenCommand = command{
	usage: "generate a random \"oct\" JWK for an HMAC or AES-GCM algorithm",
	flags: func(flags *pflag.FlagSet) {
		flags.String("alg", jwa.HS256.String(), "algorithm the key is for")
		flags.String("kid", "", "key ID (default a random UUID)")
		flags.Bool("set", false, "print the key wrapped in a JWK set")
	},
	run: func(e *env) error {
		alg, err := algorithmFlag(e.flags, "alg")
		if err != nil {
			return err
		}
		size, ok := keySizes[alg]
		if !ok {
			return fmt.Errorf("cannot generate a key for %s", alg)
		}
		kid, _ := e.flags.GetString("kid")
		if kid == "" {
			kid = jwk.NewKeyID()
		}
		asSet, _ := e.flags.GetBool("set")

		secret, err := keyutil.NewSymmetricKey(size)
		if err != nil {
			return err
		}

		use := jwk.UseSignature
		if alg.Kind() == jwa.ContentEncryption {
			use = jwk.UseEncryption
		}
		key, err := jwk.FromSymmetricKey(secret,
			jwk.WithKeyID(kid),
			jwk.WithUse(use),
			jwk.WithAlgorithm(alg),
		)
		if err != nil {
			return err
		}

		e.logger.Debug("generated key", "alg", alg, "kid", kid, "bytes", size)
		if asSet {
			return writeJSON(e, jwk.NewSet(key))
		}
		return writeJSON(e, key)
	},
}

func algorithmFlag(flags *pflag.FlagSet, name string) (jwa.Algorithm, error) {
	s, _ := flags.GetString(name)
	return jwa.ParseAlgorithm(s)
}

// narrow restricts f to the accepted algorithms of the same kind as the
// ones it supports. Accepted algorithms of another kind leave f unchanged.
func narrow(f *jose.Filter, accepted []jwa.Algorithm) error {
	supported := f.Supported()
	if len(supported) == 0 {
		return nil
	}
	kind := supported[0].Kind()

	var (
		keep       []jwa.Algorithm
		restricted bool
	)
	for _, alg := range accepted {
		if alg.Kind() != kind {
			continue
		}
		restricted = true
		if slices.Contains(supported, alg) {
			keep = append(keep, alg)
		}
	}
	if !restricted {
		return nil
	}
	return f.SetAccepted(keep...)
}

// file reads the file named by the first positional argument, or standard
// input.
func (e *env) file() ([]byte, error) {
	source := e.flags.Arg(0)
	if source == "" {
		source = "-"
	}
	return e.readSource(source)
}

func (e *env) readSource(source string) ([]byte, error) {
	if source == "-" {
		return io.ReadAll(e.stdin)
	}
	return os.ReadFile(source)
}

func writeJSON(e *env, v any) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
