// Package geodir wraps the public municipality directory (IBGE localidades
// API). It is the authority for which cities exist in a state; coordinates
// come from the geocode package.
package geodir

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/runjourney/api/internal/common"
	"github.com/runjourney/api/internal/logging"
	"github.com/runjourney/api/internal/metrics"
	"github.com/runjourney/api/internal/server/cache"
)

// Municipality is a directory entry; it carries no coordinates.
type Municipality struct {
	Name      string `json:"name"`
	StateName string `json:"stateName"`
	StateCode string `json:"stateCode"`
}

// municipalityPayload mirrors the directory's wire format.
type municipalityPayload struct {
	ID           int64  `json:"id"`
	Nome         string `json:"nome"`
	Microrregiao struct {
		Mesorregiao struct {
			UF struct {
				Sigla string `json:"sigla"`
				Nome  string `json:"nome"`
			} `json:"UF"`
		} `json:"mesorregiao"`
	} `json:"microrregiao"`
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
		logger:  l.With("module", "geodir"),
	}
}

// ListByState returns every municipality of a state. Listings are static
// enough to cache aggressively.
func (c *Client) ListByState(ctx context.Context, stateCode string) ([]Municipality, error) {
	stateCode = strings.ToUpper(stateCode)

	cacheKey := "geodir:state:" + stateCode
	var cached []Municipality
	if c.cache.GetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	url := fmt.Sprintf("%s/estados/%s/municipios", c.baseURL, stateCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordExternal("directory", "error")
		c.logger.Error(ctx, "directory request failed", "state", stateCode, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordExternal("directory", "error")
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	var payload []municipalityPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.RecordExternal("directory", "error")
		return nil, err
	}
	metrics.RecordExternal("directory", "ok")

	out := make([]Municipality, 0, len(payload))
	for _, m := range payload {
		out = append(out, Municipality{
			Name:      m.Nome,
			StateName: m.Microrregiao.Mesorregiao.UF.Nome,
			StateCode: m.Microrregiao.Mesorregiao.UF.Sigla,
		})
	}

	c.cache.SetJSON(ctx, cacheKey, out)
	return out, nil
}

// Find looks a municipality up by case-insensitive name within a state.
// Returns common.ErrNotFound when the directory does not know the city.
func (c *Client) Find(ctx context.Context, name, stateCode string) (*Municipality, error) {
	list, err := c.ListByState(ctx, stateCode)
	if err != nil {
		return nil, err
	}

	for i := range list {
		if strings.EqualFold(list[i].Name, name) {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("municipality %s-%s: %w", name, strings.ToUpper(stateCode), common.ErrNotFound)
}
