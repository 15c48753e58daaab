package jwk

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/require"
	"github.com/trustkit/jose/pkg/errcode"
)

func newSetServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.Equal(t, MIMESet, r.Header.Get("Accept"))
		w.Header().Set("Content-Type", MIMESet)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func TestFetchSet(t *testing.T) {
	srv, _ := newSetServer(t, `{"keys":[{"kty":"oct","k":"c2VjcmV0","kid":"a"}]}`)

	set, err := FetchSet(context.Background(), srv.URL, srv.Client())
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
}

func TestFetchSetErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"keys":`)
			},
		},
		{
			name: "empty",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"keys":[]}`)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv := httptest.NewServer(test.handler)
			defer srv.Close()

			_, err := FetchSet(context.Background(), srv.URL, srv.Client())
			require.Error(t, err)
			require.Equal(t, errcode.SetFetch, errcode.CodeOf(err))
		})
	}
}

func TestURLSetCacheExpiry(t *testing.T) {
	srv, hits := newSetServer(t, `{"keys":[{"kty":"oct","k":"c2VjcmV0","kid":"a"}]}`)

	clk := clock.NewFake()
	cache := NewURLSetCacheWithClock(srv.Client(), clk, time.Minute, 10*time.Minute)

	ctx := context.Background()

	key, err := cache.GetKey(ctx, srv.URL, "a")
	require.NoError(t, err)
	require.Equal(t, "a", key.KeyID())
	require.EqualValues(t, 1, hits.Load())

	clk.Add(5 * time.Minute)
	_, err = cache.Get(ctx, srv.URL)
	require.NoError(t, err)
	require.EqualValues(t, 1, hits.Load())

	clk.Add(5 * time.Minute)
	_, err = cache.Get(ctx, srv.URL)
	require.NoError(t, err)
	require.EqualValues(t, 2, hits.Load())

	_, err = cache.GetKey(ctx, srv.URL, "missing")
	require.Equal(t, errcode.SetKeyNotFound, errcode.CodeOf(err))
}

func TestURLSetCacheRange(t *testing.T) {
	srv, _ := newSetServer(t, `{"keys":[{"kty":"oct","k":"YQ","kid":"a"},{"kty":"oct","k":"Yg","kid":"b"}]}`)

	cache := NewURLSetCacheWithClock(srv.Client(), clock.NewFake(), time.Minute, time.Minute)
	_, err := cache.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	var kids []string
	cache.Range(func(url string, key *Key) bool {
		require.Equal(t, srv.URL, url)
		kids = append(kids, key.KeyID())
		return true
	})
	require.Equal(t, []string{"a", "b"}, kids)

	var visited int
	cache.Range(func(string, *Key) bool {
		visited++
		return false
	})
	require.Equal(t, 1, visited)

	require.NoError(t, cache.RefreshAll(context.Background()))
}

func TestURLSetCacheStartStops(t *testing.T) {
	cache := NewURLSetCache(nil, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, cache.Start(ctx))
}
