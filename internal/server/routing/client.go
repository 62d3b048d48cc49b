// Package routing wraps the optional OpenRouteService directions endpoint.
// The route estimator treats every failure here as a signal to fall back to
// a straight line, so errors carry no extra classification.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/runjourney/api/internal/logging"
	"github.com/runjourney/api/internal/metrics"
)

// Route is a computed road route: total distance in meters and the
// geometry as [longitude, latitude] pairs, as reported by the service.
type Route struct {
	DistanceMeters float64
	Coordinates    [][]float64
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
		} `json:"summary"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  logging.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, l logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  l.With("module", "routing"),
	}
}

// Configured reports whether an API key is present. Without one the
// estimator never attempts a call.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Directions computes a driving route between two coordinate pairs
// (latitude/longitude in, service order [lon, lat] on the wire).
func (c *Client) Directions(ctx context.Context, originLat, originLon, destLat, destLon float64) (*Route, error) {
	body, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{{originLon, originLat}, {destLon, destLat}},
	})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/v2/directions/driving-car"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordExternal("routing", "error")
		c.logger.Warn(ctx, "routing request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordExternal("routing", "error")
		return nil, fmt.Errorf("routing service returned status %d", resp.StatusCode)
	}

	var payload directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.RecordExternal("routing", "error")
		return nil, err
	}
	if len(payload.Routes) == 0 {
		metrics.RecordExternal("routing", "error")
		return nil, fmt.Errorf("routing service returned no routes")
	}

	metrics.RecordExternal("routing", "ok")
	return &Route{
		DistanceMeters: payload.Routes[0].Summary.Distance,
		Coordinates:    payload.Routes[0].Geometry.Coordinates,
	}, nil
}
