package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MetersPerMile converts OSRM meters into the miles stored on listings.
const MetersToMiles = 0.000621371

// RouteClient computes driving routes against an OSRM-compatible endpoint.
type RouteClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewRouteClient(httpClient *http.Client, baseURL string) *RouteClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &RouteClient{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// DrivingDistance returns the driving distance in meters and duration in
// seconds between two points.
func (c *RouteClient) DrivingDistance(ctx context.Context, from, to Point) (float64, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		c.baseURL, from.Lon, from.Lat, to.Lon, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("route: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("route: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return 0, 0, fmt.Errorf("route: http %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	var out struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, 0, fmt.Errorf("route: decode: %w", err)
	}
	if out.Code != "" && !strings.EqualFold(out.Code, "Ok") {
		return 0, 0, fmt.Errorf("route: status=%s", out.Code)
	}
	if len(out.Routes) == 0 {
		return 0, 0, errors.New("route: no route found")
	}
	return out.Routes[0].Distance, out.Routes[0].Duration, nil
}
