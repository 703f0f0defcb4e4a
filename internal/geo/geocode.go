package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// GeocodeClient resolves free-text addresses to coordinates.
type GeocodeClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewGeocodeClient(httpClient *http.Client, baseURL, apiKey string) *GeocodeClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &GeocodeClient{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

// Geocode returns the first candidate for the given query. The API returns
// zero or more candidates; zero candidates is an error.
func (c *GeocodeClient) Geocode(ctx context.Context, query string) (Point, error) {
	if strings.TrimSpace(query) == "" {
		return Point{}, errors.New("geocode: empty query")
	}

	ctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.apiKey)

	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Point{}, fmt.Errorf("geocode: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("geocode: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Point{}, fmt.Errorf("geocode: http %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	var candidates []struct {
		Lat json.Number `json:"lat"`
		Lon json.Number `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return Point{}, fmt.Errorf("geocode: decode: %w", err)
	}
	if len(candidates) == 0 {
		return Point{}, fmt.Errorf("geocode: no results for %q", query)
	}

	lat, err1 := strconv.ParseFloat(candidates[0].Lat.String(), 64)
	lon, err2 := strconv.ParseFloat(candidates[0].Lon.String(), 64)
	if err1 != nil || err2 != nil {
		return Point{}, errors.New("geocode: malformed coordinates in response")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Point{}, errors.New("geocode: coordinates out of range")
	}
	return Point{Lat: lat, Lon: lon}, nil
}
