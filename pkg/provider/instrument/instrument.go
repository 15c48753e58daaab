// Package instrument wraps signers and verifiers with Prometheus metrics.
// Operations are counted by algorithm and result, and their latency is
// observed.
package instrument

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/trustkit/jose/pkg/header"
	"github.com/trustkit/jose/pkg/jose"
)

// Result label values.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

type metrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer, op string) *metrics {
	m := &metrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jose_" + op + "_total",
			Help: "Number of " + op + " operations, by algorithm and result.",
		}, []string{"alg", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jose_" + op + "_duration_seconds",
			Help:    "Latency of " + op + " operations, by algorithm.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"alg"}),
	}
	m.total = register(reg, m.total)
	m.duration = register(reg, m.duration)
	return m
}

// register registers c, or returns the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	are := prometheus.AlreadyRegisteredError{}
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

func (m *metrics) observe(alg, result string, start time.Time) {
	m.total.WithLabelValues(alg, result).Inc()
	m.duration.WithLabelValues(alg).Observe(time.Since(start).Seconds())
}

// Signer is a jose.Signer that records jose_sign_total and
// jose_sign_duration_seconds.
type Signer struct {
	jose.Signer
	m *metrics
}

// NewSigner wraps s. The metrics are registered with reg, which may be
// shared by several wrapped signers.
func NewSigner(s jose.Signer, reg prometheus.Registerer) *Signer {
	return &Signer{Signer: s, m: newMetrics(reg, "sign")}
}

// Sign signs with the wrapped signer.
func (s *Signer) Sign(h *header.Signature, input []byte) ([]byte, error) {
	start := time.Now()
	sig, err := s.Signer.Sign(h, input)

	result := ResultOK
	if err != nil {
		result = ResultError
	}
	s.m.observe(h.Algorithm().String(), result, start)

	return sig, err
}

// Verifier is a jose.Verifier that records jose_verify_total and
// jose_verify_duration_seconds.
type Verifier struct {
	jose.Verifier
	m *metrics
}

// NewVerifier wraps v. The metrics are registered with reg, which may be
// shared by several wrapped verifiers.
func NewVerifier(v jose.Verifier, reg prometheus.Registerer) *Verifier {
	return &Verifier{Verifier: v, m: newMetrics(reg, "verify")}
}

// Verify verifies with the wrapped verifier. A signature that does not
// match is counted as invalid.
func (v *Verifier) Verify(h *header.Signature, input, signature []byte) (bool, error) {
	start := time.Now()
	ok, err := v.Verifier.Verify(h, input, signature)

	result := ResultOK
	switch {
	case err != nil:
		result = ResultError
	case !ok:
		result = ResultInvalid
	}
	v.m.observe(h.Algorithm().String(), result, start)

	return ok, err
}
