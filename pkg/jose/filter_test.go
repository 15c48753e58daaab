package jose_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustkit/jose/pkg/errcode"
	"github.com/trustkit/jose/pkg/jose"
	"github.com/trustkit/jose/pkg/jwa"
)

func TestFilter(t *testing.T) {
	f := jose.NewFilter(jwa.HS256, jwa.HS384)
	require.Equal(t, []jwa.Algorithm{jwa.HS256, jwa.HS384}, f.Supported())
	require.Equal(t, []jwa.Algorithm{jwa.HS256, jwa.HS384}, f.Accepted())
	require.True(t, f.Accepts(jwa.HS384))
	require.False(t, f.Accepts(jwa.HS512))

	require.NoError(t, f.SetAccepted(jwa.HS384))
	require.False(t, f.Accepts(jwa.HS256))
	require.Equal(t, []jwa.Algorithm{jwa.HS256, jwa.HS384}, f.Supported())

	err := f.SetAccepted(jwa.HS256, jwa.RS256)
	require.ErrorIs(t, err, errcode.ErrArgument)
	require.Equal(t, errcode.FilterNotSupported, errcode.CodeOf(err))
	require.Equal(t, []jwa.Algorithm{jwa.HS384}, f.Accepted())

	require.NoError(t, f.SetAccepted())
	require.Empty(t, f.Accepted())
	require.False(t, f.Accepts(jwa.HS384))
}

func TestFilterNil(t *testing.T) {
	var f *jose.Filter
	require.False(t, f.Accepts(jwa.HS256))
}

func TestFilterAcceptedIsCopy(t *testing.T) {
	f := jose.NewFilter(jwa.HS256, jwa.HS384)

	accepted := f.Accepted()
	accepted[0] = jwa.RS256
	require.True(t, f.Accepts(jwa.HS256))
}

func TestFilterConcurrent(t *testing.T) {
	f := jose.NewFilter(jwa.HS256, jwa.HS384, jwa.HS512)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = f.Accepts(jwa.HS256)
				_ = f.Accepted()
			}
		}()
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := f.SetAccepted(jwa.Algorithms()[1+(i+j)%3]); err != nil {
					t.Error(err)
				}
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, f.Accepted(), 1)
}
