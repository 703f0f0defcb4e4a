package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeocodeClient(t *testing.T) {
	tests := []struct {
		name        string
		handler     func(t *testing.T, w http.ResponseWriter, r *http.Request)
		query       string
		wantLat     float64
		wantLon     float64
		wantErr     bool
		errContains string
	}{
		{
			name: "ok first candidate taken",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("q"); got != "2410 Shakespeare St, Houston" {
					t.Fatalf("unexpected q param: %q", got)
				}
				if got := r.URL.Query().Get("api_key"); got != "test-key" {
					t.Fatalf("unexpected api_key param: %q", got)
				}
				w.Write([]byte(`[{"lat":"29.7101","lon":"-95.4123"},{"lat":"30.0","lon":"-96.0"}]`))
			},
			query:   "2410 Shakespeare St, Houston",
			wantLat: 29.7101,
			wantLon: -95.4123,
		},
		{
			name: "numeric coordinates accepted",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"lat":29.7101,"lon":-95.4123}]`))
			},
			query:   "somewhere",
			wantLat: 29.7101,
			wantLon: -95.4123,
		},
		{
			name: "zero candidates",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[]`))
			},
			query:       "nowhere at all",
			wantErr:     true,
			errContains: "no results",
		},
		{
			name: "http error",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
			},
			query:       "anywhere",
			wantErr:     true,
			errContains: "429",
		},
		{
			name: "out of range coordinates",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"lat":"95.0","lon":"-200.0"}]`))
			},
			query:       "bad data",
			wantErr:     true,
			errContains: "out of range",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tc.handler(t, w, r)
			}))
			defer server.Close()

			client := NewGeocodeClient(server.Client(), server.URL, "test-key")
			point, err := client.Geocode(context.Background(), tc.query)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got point %+v", point)
				}
				if tc.errContains != "" && !strings.Contains(err.Error(), tc.errContains) {
					t.Fatalf("error %q does not contain %q", err.Error(), tc.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("Geocode returned error: %v", err)
			}
			if point.Lat != tc.wantLat || point.Lon != tc.wantLon {
				t.Fatalf("got point %+v, want lat=%v lon=%v", point, tc.wantLat, tc.wantLon)
			}
		})
	}
}

func TestGeocodeClientEmptyQuery(t *testing.T) {
	client := NewGeocodeClient(nil, "http://unused", "key")
	if _, err := client.Geocode(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestRouteClientDrivingDistance(t *testing.T) {
	tests := []struct {
		name        string
		handler     func(t *testing.T, w http.ResponseWriter, r *http.Request)
		wantDist    float64
		wantDur     float64
		wantErr     bool
		errContains string
	}{
		{
			name: "ok",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				if !strings.HasPrefix(r.URL.Path, "/route/v1/driving/") {
					t.Fatalf("unexpected path: %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("overview"); got != "false" {
					t.Fatalf("unexpected overview param: %q", got)
				}
				// Coordinates are lon,lat;lon,lat.
				coords := strings.TrimPrefix(r.URL.Path, "/route/v1/driving/")
				if !strings.HasPrefix(coords, "-95.401800,29.717400;") {
					t.Fatalf("unexpected coordinate order: %s", coords)
				}
				w.Write([]byte(`{"code":"Ok","routes":[{"distance":3621.5,"duration":412.2}]}`))
			},
			wantDist: 3621.5,
			wantDur:  412.2,
		},
		{
			name: "no route",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"code":"Ok","routes":[]}`))
			},
			wantErr:     true,
			errContains: "no route",
		},
		{
			name: "error code",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"code":"NoSegment","routes":[]}`))
			},
			wantErr:     true,
			errContains: "NoSegment",
		},
		{
			name: "http error",
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			wantErr:     true,
			errContains: "502",
		},
	}

	from := Point{Lat: 29.7174, Lon: -95.4018}
	to := Point{Lat: 29.7101, Lon: -95.4123}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tc.handler(t, w, r)
			}))
			defer server.Close()

			client := NewRouteClient(server.Client(), server.URL)
			dist, dur, err := client.DrivingDistance(context.Background(), from, to)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got dist=%v dur=%v", dist, dur)
				}
				if tc.errContains != "" && !strings.Contains(err.Error(), tc.errContains) {
					t.Fatalf("error %q does not contain %q", err.Error(), tc.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("DrivingDistance returned error: %v", err)
			}
			if dist != tc.wantDist || dur != tc.wantDur {
				t.Fatalf("got dist=%v dur=%v, want dist=%v dur=%v", dist, dur, tc.wantDist, tc.wantDur)
			}
		})
	}
}
