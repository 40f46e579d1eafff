package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/httpclient"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Config struct {
	SearchURL   string
	UserAgent   string
	CountryCode string
	Viewbox     domain.Viewbox
	Timeout     time.Duration
	MaxAttempts int
	// MinInterval spaces every outbound request; zero disables it.
	MinInterval time.Duration
	Logger      *zap.Logger
}

// Client is a ports.Geocoder backed by a Nominatim /search endpoint.
type Client struct {
	http        *httpclient.Client
	searchURL   string
	countryCode string
	viewbox     string
	maxAttempts int
	limiter     *rate.Limiter
	logger      *zap.Logger
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SearchURL) == "" {
		return nil, fmt.Errorf("new nominatim client: search url is required")
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return nil, fmt.Errorf("new nominatim client: user agent is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}

	vb := cfg.Viewbox
	return &Client{
		http:        httpclient.New(cfg.Timeout, cfg.UserAgent),
		searchURL:   cfg.SearchURL,
		countryCode: cfg.CountryCode,
		viewbox:     formatViewbox(vb),
		maxAttempts: cfg.MaxAttempts,
		limiter:     limiter,
		logger:      logger,
	}, nil
}

// Search runs one free-form or structured query and returns the first hit.
func (c *Client) Search(ctx context.Context, q ports.GeocodeQuery) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, c.logger, "nominatim.search")(&err)

	params := c.params(q)
	endpoint := c.searchURL + "?" + params.Encode()

	resp, err := c.http.DoWithRetry(ctx, c.maxAttempts, func() (*http.Request, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		return c.http.NewRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim search: %w", err)
	}
	defer resp.Body.Close()

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim search: decode response: %w", err)
	}
	if len(places) == 0 {
		return domain.Coordinates{}, false, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim search: parse lat %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim search: parse lon %q: %w", places[0].Lon, err)
	}

	return domain.Coordinates{Lat: lat, Lon: lon}, true, nil
}

func (c *Client) params(q ports.GeocodeQuery) url.Values {
	v := url.Values{}
	v.Set("format", "jsonv2")
	v.Set("limit", "1")

	if q.Structured {
		v.Set("street", q.Street)
		v.Set("city", q.City)
		v.Set("county", q.County)
		v.Set("country", q.Country)
		return v
	}

	v.Set("q", q.Text)
	if c.countryCode != "" {
		v.Set("countrycodes", c.countryCode)
	}
	if c.viewbox != "" {
		v.Set("viewbox", c.viewbox)
	}
	if q.Bounded {
		v.Set("bounded", "1")
	} else {
		v.Set("bounded", "0")
	}
	return v
}

func formatViewbox(vb domain.Viewbox) string {
	if vb == (domain.Viewbox{}) {
		return ""
	}
	f := func(x float64) string { return strconv.FormatFloat(x, 'f', -1, 64) }
	return strings.Join([]string{f(vb.MinLon), f(vb.MinLat), f(vb.MaxLon), f(vb.MaxLat)}, ",")
}
