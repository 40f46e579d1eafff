package osrm

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
)

type Config struct {
	BaseURL string
	Profile string
	Timeout time.Duration
	// Probe is the pair of points routed by Ping.
	Probe  [2]domain.Coordinates
	Logger *zap.Logger
}

// Client is a ports.RoadRouter backed by the OSRM route service.
type Client struct {
	http    *httpclient.Client
	baseURL string
	profile string
	probe   [2]domain.Coordinates
	logger  *zap.Logger
}

type maneuver struct {
	Type     string    `json:"type"`
	Modifier string    `json:"modifier"`
	Location []float64 `json:"location"`
}

type step struct {
	Name     string   `json:"name"`
	Distance float64  `json:"distance"`
	Maneuver maneuver `json:"maneuver"`
}

type leg struct {
	Steps []step `json:"steps"`
}

type route struct {
	Geometry domain.Geometry `json:"geometry"`
	Legs     []leg           `json:"legs"`
	Distance float64         `json:"distance"`
	Duration float64         `json:"duration"`
}

type response struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Routes  []route `json:"routes"`
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("new osrm client: base url is required")
	}

	profile := cfg.Profile
	if profile == "" {
		profile = "driving"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:    httpclient.New(cfg.Timeout, ""),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		profile: profile,
		probe:   cfg.Probe,
		logger:  logger,
	}, nil
}

// Route fetches full GeoJSON geometry through coords in order. Every failure
// wraps domain.ErrRouteEngineUnavailable.
func (c *Client) Route(
	ctx context.Context,
	coords []domain.Coordinates,
	withSteps bool,
) (_ *ports.RoadRoute, err error) {
	defer obs.Time(ctx, c.logger, "osrm.route")(&err)

	if len(coords) < 2 {
		return nil, fmt.Errorf("osrm route: need at least 2 coordinates, got %d", len(coords))
	}

	endpoint := c.routeURL(coords, withSteps)
	req, err := c.http.NewRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("osrm route: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osrm route: %w: %w", domain.ErrRouteEngineUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("osrm route: %w: decode response: %w", domain.ErrRouteEngineUnavailable, err)
	}
	if decoded.Code != "Ok" {
		return nil, fmt.Errorf("osrm route: %w: %s: %s", domain.ErrRouteEngineUnavailable, decoded.Code, decoded.Message)
	}
	if len(decoded.Routes) == 0 {
		return nil, fmt.Errorf("osrm route: %w: no routes returned", domain.ErrRouteEngineUnavailable)
	}

	return toRoadRoute(decoded.Routes[0]), nil
}

func (c *Client) routeURL(coords []domain.Coordinates, withSteps bool) string {
	parts := make([]string, 0, len(coords))
	for _, co := range coords {
		parts = append(parts, formatFloat(co.Lon)+","+formatFloat(co.Lat))
	}

	q := url.Values{}
	q.Set("overview", "full")
	q.Set("geometries", "geojson")
	if withSteps {
		q.Set("steps", "true")
	}

	return fmt.Sprintf("%s/route/v1/%s/%s?%s", c.baseURL, c.profile, strings.Join(parts, ";"), q.Encode())
}

func toRoadRoute(r route) *ports.RoadRoute {
	out := &ports.RoadRoute{
		Geometry: r.Geometry,
		Distance: r.Distance,
		Duration: r.Duration,
		Legs:     make([]ports.RoadLeg, 0, len(r.Legs)),
	}

	for _, l := range r.Legs {
		rl := ports.RoadLeg{Steps: make([]ports.RoadStep, 0, len(l.Steps))}
		for _, s := range l.Steps {
			m := ports.Maneuver{Type: s.Maneuver.Type, Modifier: s.Maneuver.Modifier}
			if len(s.Maneuver.Location) >= 2 {
				m.Location = &domain.Coordinates{Lat: s.Maneuver.Location[1], Lon: s.Maneuver.Location[0]}
			}
			rl.Steps = append(rl.Steps, ports.RoadStep{Maneuver: m, Name: s.Name, Distance: s.Distance})
		}
		out.Legs = append(out.Legs, rl)
	}

	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (c *Client) Name() string { return "osrm" }

func (c *Client) URL() string { return c.baseURL }

// Ping routes between the probe points without overview or steps.
func (c *Client) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/route/v1/%s/%s,%s;%s,%s?overview=false",
		c.baseURL, c.profile,
		formatFloat(c.probe[0].Lon), formatFloat(c.probe[0].Lat),
		formatFloat(c.probe[1].Lon), formatFloat(c.probe[1].Lat),
	)
	req, err := c.http.NewRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("osrm ping: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("osrm ping: %w", err)
	}
	resp.Body.Close()
	return nil
}
