package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/explorepe/explorepe-api/pkg/circuitbreaker"
	"github.com/explorepe/explorepe-api/pkg/httpclient"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"github.com/explorepe/explorepe-api/pkg/retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

var (
	// ErrNoResults is returned when the address could not be located
	ErrNoResults = errors.New("no geocoding results")
	// ErrDisabled is returned when no API key is configured
	ErrDisabled = errors.New("geocoding disabled")
)

// Location is a resolved coordinate pair
type Location struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address"`
}

// Config configures the geocoding client
type Config struct {
	APIKey  string
	BaseURL string
	// Region biases results, e.g. "pe"
	Region string
}

// Client resolves free-text locations with the Google Geocoding API
type Client struct {
	cfg        Config
	httpClient httpclient.Client
	breaker    *gobreaker.CircuitBreaker
}

type apiResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// NewClient creates a geocoding client
func NewClient(cfg Config, httpClient httpclient.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	// Unknown addresses are a normal answer, not an upstream failure
	breaker := circuitbreaker.New("geocoding", circuitbreaker.WithSuccessPredicate(func(err error) bool {
		return err == nil || errors.Is(err, ErrNoResults)
	}))

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		breaker:    breaker,
	}
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

// Geocode resolves address to coordinates
func (c *Client) Geocode(ctx context.Context, address string) (*Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoResults
	}
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	start := time.Now()
	loc, err := retry.DoWithResult(ctx, retry.GeocodingConfig(), "geocoding.geocode", func() (*Location, error) {
		return circuitbreaker.Execute(c.breaker, func() (*Location, error) {
			return c.geocodeOnce(ctx, address)
		})
	})

	status := "success"
	if err != nil {
		status = "error"
		if errors.Is(err, ErrNoResults) {
			status = "not_found"
		}
	}
	duration := metrics.MeasureDuration(start)
	metrics.ExternalRequestDuration.WithLabelValues("geocoding", status).Observe(duration)
	logger.LogAPICall(ctx, "geocoding", "geocode", status, duration, zap.String("address", address))

	return loc, err
}

func (c *Client) geocodeOnce(ctx context.Context, address string) (*Location, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.cfg.APIKey)
	if c.cfg.Region != "" {
		params.Set("region", c.cfg.Region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("build geocoding request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, retry.Permanent(fmt.Errorf("geocoding returned status %d", resp.StatusCode))
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, retry.Permanent(fmt.Errorf("decode geocoding response: %w", err))
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, retry.Permanent(ErrNoResults)
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return nil, fmt.Errorf("geocoding status %s: %s", body.Status, body.ErrorMessage)
	default:
		return nil, retry.Permanent(fmt.Errorf("geocoding status %s: %s", body.Status, body.ErrorMessage))
	}

	if len(body.Results) == 0 {
		return nil, retry.Permanent(ErrNoResults)
	}

	first := body.Results[0]
	return &Location{
		Lat:              first.Geometry.Location.Lat,
		Lng:              first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}, nil
}
