package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/randevuhq/randevu/internal/pkg/cache"
	"github.com/randevuhq/randevu/internal/pkg/env"
)

const (
	defaultLookupBaseURL = "http://ip-api.com/json"

	// Fixed fallback region used for location pricing when lookup fails.
	DefaultCity    = "Istanbul"
	DefaultCountry = "Turkey"

	cacheKeyPrefix = "geoip:"
	cacheTTL       = 24 * time.Hour
)

// Location is the resolved region used for location-based plan pricing.
type Location struct {
	City    string `json:"city"`
	State   string `json:"regionName"`
	Country string `json:"country"`
}

// DefaultLocation returns the fixed fallback region.
func DefaultLocation() Location {
	return Location{City: DefaultCity, Country: DefaultCountry}
}

// Client resolves an IP address to a coarse location via the external lookup
// collaborator. Results are cached in Redis; failures fall back to the default
// region rather than surfacing an error to pricing.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClientFromEnv builds a lookup client from environment configuration.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL: strings.TrimRight(env.GetEnv("GEOIP_BASE_URL", defaultLookupBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Lookup resolves ip to a location. Never returns an empty location: lookup or
// decode failures yield the Istanbul/Turkey default.
func (c *Client) Lookup(ctx context.Context, ip string) Location {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return DefaultLocation()
	}

	if cached, err := cache.Get(cacheKeyPrefix + ip); err == nil {
		var loc Location
		if json.Unmarshal([]byte(cached), &loc) == nil && loc.Country != "" {
			return loc
		}
	}

	loc, err := c.fetch(ctx, ip)
	if err != nil {
		return DefaultLocation()
	}

	if raw, err := json.Marshal(loc); err == nil {
		_ = cache.Set(cacheKeyPrefix+ip, string(raw), cacheTTL)
	}
	return loc
}

func (c *Client) fetch(ctx context.Context, ip string) (Location, error) {
	url := fmt.Sprintf("%s/%s?fields=city,regionName,country", c.BaseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Location{}, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geoip lookup returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return Location{}, err
	}

	var loc Location
	if err := json.Unmarshal(body, &loc); err != nil {
		return Location{}, err
	}
	if loc.Country == "" {
		return Location{}, fmt.Errorf("geoip lookup returned no country for %s", ip)
	}
	return loc, nil
}
