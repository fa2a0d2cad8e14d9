// Package soiltemp fetches hourly soil-temperature series from an
// open-meteo-compatible archive API.
package soiltemp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"feedstockcore/pkg/domain"
)

const (
	// DefaultBaseURL is the public open-meteo historical weather endpoint.
	DefaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

	temperatureVariable = "soil_temperature_7_to_28cm"
	temperatureUnit     = "fahrenheit"
	timezone            = "America/Chicago"

	// hourlyTimeLayout is the local-time format the API returns when a
	// timezone parameter is given.
	hourlyTimeLayout = "2006-01-02T15:04"
)

// Client fetches soil-temperature series over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

var _ domain.SoilTemperatureProvider = (*Client)(nil)

// NewClient returns a client against the given base URL, falling back to the
// public open-meteo archive endpoint.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{BaseURL: baseURL, HTTP: httpClient}
}

type hourlyPayload struct {
	Hourly struct {
		Time        []string   `json:"time"`
		Temperature []*float64 `json:"soil_temperature_7_to_28cm"`
	} `json:"hourly"`
}

// HourlySeries fetches the hourly series for [start, end] at a point. Hours
// the archive has no reading for are omitted from the result.
func (c *Client) HourlySeries(ctx context.Context, start, end time.Time, lat, long float64) ([]domain.TemperatureSample, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%g", lat))
	q.Set("longitude", fmt.Sprintf("%g", long))
	q.Set("start_date", start.Format("2006-01-02"))
	q.Set("end_date", end.Format("2006-01-02"))
	q.Set("hourly", temperatureVariable)
	q.Set("timezone", timezone)
	q.Set("temperature_unit", temperatureUnit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build soil temperature request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch soil temperatures: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("soil temperature API returned %d: %s", resp.StatusCode, body)
	}

	var payload hourlyPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode soil temperature response: %w", err)
	}
	if len(payload.Hourly.Time) != len(payload.Hourly.Temperature) {
		return nil, fmt.Errorf("soil temperature response misaligned: %d timestamps, %d values",
			len(payload.Hourly.Time), len(payload.Hourly.Temperature))
	}

	samples := make([]domain.TemperatureSample, 0, len(payload.Hourly.Time))
	for i, raw := range payload.Hourly.Time {
		if payload.Hourly.Temperature[i] == nil {
			continue
		}
		ts, err := time.Parse(hourlyTimeLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("parse hourly timestamp %q: %w", raw, err)
		}
		samples = append(samples, domain.TemperatureSample{
			Timestamp:   ts,
			Temperature: *payload.Hourly.Temperature[i],
		})
	}
	return samples, nil
}
