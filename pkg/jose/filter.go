package jose

import (
	"sync"

	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/jwa"
	"golang.org/x/exp/slices"
)

// Filter narrows the algorithms a provider supports to the ones it currently
// accepts. The accepted set is always a subset of the supported set.
//
// A Filter is safe for concurrent use.
type Filter struct {
	mu        sync.RWMutex
	supported []jwa.Algorithm
	accepted  []jwa.Algorithm
}

// NewFilter returns a filter accepting every supported algorithm.
func NewFilter(supported ...jwa.Algorithm) *Filter {
	return &Filter{
		supported: slices.Clone(supported),
		accepted:  slices.Clone(supported),
	}
}

// Supported returns the supported algorithms.
func (f *Filter) Supported() []jwa.Algorithm {
	return slices.Clone(f.supported)
}

// Accepted returns the accepted algorithms.
func (f *Filter) Accepted() []jwa.Algorithm {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return slices.Clone(f.accepted)
}

// Accepts reports whether alg is accepted.
func (f *Filter) Accepts(alg jwa.Algorithm) bool {
	if f == nil {
		return false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return slices.Contains(f.accepted, alg)
}

// SetAccepted replaces the accepted algorithms. Every algorithm must be
// supported; otherwise the accepted set is left unchanged.
func (f *Filter) SetAccepted(algs ...jwa.Algorithm) error {
	for _, alg := range algs {
		if !slices.Contains(f.supported, alg) {
			return errcode.New(errcode.Argument, errcode.FilterNotSupported, alg.String())
		}
	}

	f.mu.Lock()
	f.accepted = slices.Clone(algs)
	f.mu.Unlock()

	return nil
}
