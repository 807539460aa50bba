package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/explorepe/explorepe-api/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocode_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Cusco, Perú", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "pe", r.URL.Query().Get("region"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Cusco, Peru","geometry":{"location":{"lat":-13.53195,"lng":-71.96746}}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Region: "pe"}, httpclient.NewStandardClient())

	loc, err := client.Geocode(context.Background(), "  Cusco, Perú ")
	require.NoError(t, err)
	assert.InDelta(t, -13.53195, loc.Lat, 1e-9)
	assert.InDelta(t, -71.96746, loc.Lng, 1e-9)
	assert.Equal(t, "Cusco, Peru", loc.FormattedAddress)
}

func TestGeocode_ZeroResultsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL}, httpclient.NewStandardClient())

	_, err := client.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNoResults)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGeocode_Disabled(t *testing.T) {
	client := NewClient(Config{}, httpclient.NewStandardClient())
	assert.False(t, client.Enabled())

	_, err := client.Geocode(context.Background(), "Lima")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestGeocode_EmptyAddress(t *testing.T) {
	client := NewClient(Config{APIKey: "k"}, httpclient.NewStandardClient())
	_, err := client.Geocode(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNoResults)
}
