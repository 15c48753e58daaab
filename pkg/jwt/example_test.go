package jwt_test

import (
	"fmt"
	"time"

	"github.com/jmhodges/clock"
	"github.com/trustkit/jose/pkg/header"
	"github.com/trustkit/jose/pkg/jwa"
	"github.com/trustkit/jose/pkg/jwt"
	"github.com/trustkit/jose/pkg/provider/hmac"
)

func ExampleSign() {
	// Use a 32 byte secret for HS256.
	p, err := hmac.New([]byte("a-string-secret-at-least-256-bits-long"), jwa.HS256)
	if err != nil {
		panic(err)
	}

	h, err := header.NewSignatureBuilder(jwa.HS256).Build()
	if err != nil {
		panic(err)
	}

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	token, err := jwt.Sign(h, jwt.Claims{
		jwt.Issuer:         "example",
		jwt.Subject:        "1234567890",
		jwt.Audience:       "api",
		jwt.IssuedAt:       issued,
		jwt.ExpirationTime: issued.Add(time.Hour),
	}, p)
	if err != nil {
		panic(err)
	}

	s, err := token.Serialize()
	if err != nil {
		panic(err)
	}

	c := clock.NewFake()
	c.Set(issued.Add(time.Minute))

	parsed, err := jwt.ParseAndVerify(s, p,
		jwt.WithAllowedIssuers("example"),
		jwt.WithAllowedAudiences("api"),
		jwt.WithClock(c),
	)
	if err != nil {
		panic(err)
	}

	exp, _ := parsed.Claims().ExpirationTime()
	fmt.Println(parsed.Header().Type(), parsed.Claims().Subject(), exp.UTC())

	c.Add(2 * time.Hour)
	fmt.Println(parsed.Verify(p, jwt.WithClock(c)))
	// Output:
	// JWT 1234567890 2024-01-01 01:00:00 +0000 UTC
	// JWT-00004: the token expired at 2024-01-01 01:00:00 +0000 UTC
}
