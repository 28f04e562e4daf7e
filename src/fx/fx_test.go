package fx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratesServer(t *testing.T, fail *atomic.Bool, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":0.5,"inr":80,"ZZZ":0}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConvert(t *testing.T) {
	var fail atomic.Bool
	var hits atomic.Int32
	srv := ratesServer(t, &fail, &hits)

	c, err := NewConverter("usd", srv.URL, time.Hour, srv.Client())
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	assert.Equal(t, "USD", c.Base())
	assert.True(t, c.Convert(ctx, decimal.NewFromInt(10), "EUR").Equal(decimal.NewFromInt(20)))
	assert.True(t, c.Convert(ctx, decimal.NewFromInt(160), "INR").Equal(decimal.NewFromInt(2)))
	assert.True(t, c.Convert(ctx, decimal.NewFromInt(7), "usd").Equal(decimal.NewFromInt(7)))
	assert.True(t, c.Convert(ctx, decimal.NewFromInt(7), "XYZ").Equal(decimal.NewFromInt(7)))
	assert.True(t, c.Convert(ctx, decimal.NewFromInt(7), "ZZZ").Equal(decimal.NewFromInt(7)))

	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchFailureKeepsPreviousRates(t *testing.T) {
	var fail atomic.Bool
	var hits atomic.Int32
	srv := ratesServer(t, &fail, &hits)

	c, err := NewConverter("USD", srv.URL, 20*time.Millisecond, srv.Client())
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	assert.True(t, c.Convert(ctx, decimal.NewFromInt(10), "EUR").Equal(decimal.NewFromInt(20)))

	fail.Store(true)
	time.Sleep(50 * time.Millisecond)
	assert.True(t, c.Convert(ctx, decimal.NewFromInt(10), "EUR").Equal(decimal.NewFromInt(20)))
	assert.GreaterOrEqual(t, hits.Load(), int32(2))
}

func TestUnreachableServerConvertsOneToOne(t *testing.T) {
	c, err := NewConverter("USD", "http://127.0.0.1:1/latest", time.Hour, nil)
	require.NoError(t, err)
	defer c.Close()

	got := c.Convert(context.Background(), decimal.RequireFromString("12.34"), "EUR")
	assert.True(t, got.Equal(decimal.RequireFromString("12.34")))
}

func TestFailedFetchIsNotRetriedPerCall(t *testing.T) {
	var fail atomic.Bool
	var hits atomic.Int32
	fail.Store(true)
	srv := ratesServer(t, &fail, &hits)

	c, err := NewConverter("USD", srv.URL, time.Hour, srv.Client())
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		got := c.Convert(ctx, decimal.NewFromInt(10), "EUR")
		assert.True(t, got.Equal(decimal.NewFromInt(10)))
	}
	assert.Equal(t, int32(1), hits.Load())
}
