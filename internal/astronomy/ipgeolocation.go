package astronomy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/saaga0h/daylight-platform/internal/span"
)

// DefaultIPGeolocationURL is the astronomy endpoint of ipgeolocation.io
const DefaultIPGeolocationURL = "https://api.ipgeolocation.io/astronomy"

// absentEvent is what the API reports for events that do not occur
const absentEvent = "-:-"

// IPGeolocationClient fetches solar times from the ipgeolocation.io astronomy API
type IPGeolocationClient struct {
	endpoint string
	apiKey   string
	lat, lon float64
	client   *http.Client
}

func NewIPGeolocationClient(endpoint, apiKey string, lat, lon float64) *IPGeolocationClient {
	if endpoint == "" {
		endpoint = DefaultIPGeolocationURL
	}
	return &IPGeolocationClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		lat:      lat,
		lon:      lon,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type astronomyResponse struct {
	Date      string `json:"date"`
	Sunrise   string `json:"sunrise"`
	SolarNoon string `json:"solar_noon"`
	Sunset    string `json:"sunset"`
	Message   string `json:"message"`
}

func (c *IPGeolocationClient) Fetch(ctx context.Context, date time.Time) (*Times, error) {
	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("ipgeolocation url: %w", err)
	}

	query := url.Values{}
	query.Set("apiKey", c.apiKey)
	query.Set("lat", strconv.FormatFloat(c.lat, 'f', 6, 64))
	query.Set("long", strconv.FormatFloat(c.lon, 'f', 6, 64))
	query.Set("date", date.Format(time.DateOnly))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("ipgeolocation request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ipgeolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload astronomyResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && payload.Message != "" {
			return nil, fmt.Errorf("ipgeolocation bad status: %s: %s", resp.Status, payload.Message)
		}
		return nil, fmt.Errorf("ipgeolocation bad status: %s", resp.Status)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("ipgeolocation decode: %w", decodeErr)
	}

	times := &Times{Date: date, Source: "ipgeolocation"}
	fields := []struct {
		name  string
		value string
		dst   *span.ClockTime
	}{
		{"sunrise", payload.Sunrise, &times.Sunrise},
		{"solar_noon", payload.SolarNoon, &times.SolarNoon},
		{"sunset", payload.Sunset, &times.Sunset},
	}
	for _, f := range fields {
		if f.value == absentEvent {
			return nil, fmt.Errorf("ipgeolocation %s: %w", f.name, ErrNoDaylight)
		}
		ct, err := span.ParseClockTime(f.value)
		if err != nil {
			return nil, fmt.Errorf("ipgeolocation %s: %w", f.name, err)
		}
		*f.dst = ct
	}

	return times, nil
}
