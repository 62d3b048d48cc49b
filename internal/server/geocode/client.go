// Package geocode resolves a city name to coordinates through a
// Nominatim-compatible endpoint. Lookup failures never propagate: the
// caller always gets usable coordinates, falling back to the documented
// center-of-country default.
package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/runjourney/api/internal/logging"
	"github.com/runjourney/api/internal/metrics"
	"github.com/runjourney/api/internal/server/cache"
)

// Default coordinates used when the geocoder is unavailable or finds
// nothing (geographic center of Brazil).
const (
	DefaultLatitude  = -15.7939
	DefaultLongitude = -47.8828
)

const userAgent = "RunningJourneyAPI/1.0"

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Cache
	logger  logging.Logger
}

func NewClient(baseURL string, timeout time.Duration, c *cache.Cache, l logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cache:   c,
		logger:  l.With("module", "geocode"),
	}
}

// Lookup returns the coordinates for a city. Any failure (network, status,
// decode, empty result) degrades to the default coordinates.
func (c *Client) Lookup(ctx context.Context, cityName, stateName string) Coordinates {
	cacheKey := "geocode:" + strings.ToLower(stateName) + ":" + strings.ToLower(cityName)
	var cached Coordinates
	if c.cache.GetJSON(ctx, cacheKey, &cached) {
		return cached
	}

	coords, ok := c.search(ctx, cityName, stateName)
	if !ok {
		metrics.RecordExternal("geocoder", "fallback")
		return Coordinates{Latitude: DefaultLatitude, Longitude: DefaultLongitude}
	}

	metrics.RecordExternal("geocoder", "ok")
	c.cache.SetJSON(ctx, cacheKey, coords)
	return coords
}

func (c *Client) search(ctx context.Context, cityName, stateName string) (Coordinates, bool) {
	q := url.Values{}
	q.Set("city", cityName)
	q.Set("state", stateName)
	q.Set("country", "Brazil")
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return Coordinates{}, false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "geocoder request failed", "city", cityName, "error", err)
		return Coordinates{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn(ctx, "geocoder returned non-OK status", "city", cityName, "status", resp.StatusCode)
		return Coordinates{}, false
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil || len(results) == 0 {
		return Coordinates{}, false
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return Coordinates{}, false
	}

	return Coordinates{Latitude: lat, Longitude: lon}, true
}
