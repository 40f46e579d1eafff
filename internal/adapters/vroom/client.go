package vroom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/httpclient"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultProfile = "car"

type Config struct {
	URL     string
	Profile string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client is a ports.Solver backed by a vroom-express endpoint.
type Client struct {
	http    *httpclient.Client
	url     string
	profile string
	logger  *zap.Logger
}

type vehicle struct {
	ID      int       `json:"id"`
	Profile string    `json:"profile"`
	Start   []float64 `json:"start"`
	// No end location: every vehicle runs an open trip.
	Capacity []int `json:"capacity,omitempty"`
}

type job struct {
	ID       int       `json:"id"`
	Location []float64 `json:"location"`
	Amount   []int     `json:"amount,omitempty"`
}

type options struct {
	G bool `json:"g"`
}

type request struct {
	Vehicles []vehicle `json:"vehicles"`
	Jobs     []job     `json:"jobs"`
	Options  options   `json:"options"`
}

type step struct {
	Type     string  `json:"type"`
	ID       *int    `json:"id,omitempty"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

type route struct {
	Vehicle  int     `json:"vehicle"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Steps    []step  `json:"steps"`
}

type response struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Summary struct {
		ComputingTimes struct {
			Solving float64 `json:"solving"`
		} `json:"computing_times"`
	} `json:"summary"`
	Routes []route `json:"routes"`
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("new vroom client: url is required")
	}

	profile := cfg.Profile
	if profile == "" {
		profile = defaultProfile
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:    httpclient.New(cfg.Timeout, ""),
		url:     strings.TrimRight(cfg.URL, "/"),
		profile: profile,
		logger:  logger,
	}, nil
}

// Solve posts the problem once. Any transport error, non-zero solver code or
// empty solution is reported wrapping domain.ErrSolverUnavailable.
func (c *Client) Solve(ctx context.Context, p ports.SolverProblem) (_ *ports.SolverSolution, err error) {
	defer obs.Time(ctx, c.logger, "vroom.solve")(&err)

	body, err := json.Marshal(c.buildRequest(p))
	if err != nil {
		return nil, fmt.Errorf("vroom solve: encode request: %w", err)
	}

	req, err := c.http.NewRequest(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vroom solve: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vroom solve: %w: %w", domain.ErrSolverUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("vroom solve: %w: decode response: %w", domain.ErrSolverUnavailable, err)
	}

	if decoded.Code != 0 {
		return nil, fmt.Errorf("vroom solve: %w: code %d: %s", domain.ErrSolverUnavailable, decoded.Code, decoded.Error)
	}
	if len(decoded.Routes) == 0 {
		return nil, fmt.Errorf("vroom solve: %w: no routes returned", domain.ErrSolverUnavailable)
	}

	return toSolution(decoded)
}

func (c *Client) buildRequest(p ports.SolverProblem) request {
	r := request{
		Vehicles: make([]vehicle, 0, len(p.Vehicles)),
		Jobs:     make([]job, 0, len(p.Jobs)),
		Options:  options{G: true},
	}

	for _, v := range p.Vehicles {
		r.Vehicles = append(r.Vehicles, vehicle{
			ID:       v.ID,
			Profile:  c.profile,
			Start:    v.Start.CoordsToList(),
			Capacity: v.Capacity,
		})
	}
	for _, j := range p.Jobs {
		r.Jobs = append(r.Jobs, job{
			ID:       j.ID,
			Location: j.Location.CoordsToList(),
			Amount:   j.Amount,
		})
	}

	return r
}

func toSolution(r response) (*ports.SolverSolution, error) {
	out := &ports.SolverSolution{
		Routes:          make([]ports.SolverRoute, 0, len(r.Routes)),
		ComputingTimeMs: r.Summary.ComputingTimes.Solving,
	}

	for _, rt := range r.Routes {
		sr := ports.SolverRoute{
			VehicleID: rt.Vehicle,
			Distance:  rt.Distance,
			Duration:  rt.Duration,
			Steps:     make([]ports.SolverStep, 0, len(rt.Steps)),
		}

		for _, s := range rt.Steps {
			st := ports.SolverStep{Distance: s.Distance, Duration: s.Duration}
			switch s.Type {
			case "start":
				st.Kind = ports.SolverStepStart
			case "end":
				st.Kind = ports.SolverStepEnd
			case "job", "delivery", "pickup":
				if s.ID == nil {
					return nil, fmt.Errorf("vroom solve: %w: job step without id", domain.ErrSolverUnavailable)
				}
				st.Kind = ports.SolverStepJob
				st.JobID = *s.ID
			default:
				// break and other step kinds carry no stop.
				continue
			}
			sr.Steps = append(sr.Steps, st)
		}

		out.Routes = append(out.Routes, sr)
	}

	return out, nil
}

func (c *Client) Name() string { return "vroom" }

func (c *Client) URL() string { return c.url }

// Ping checks the vroom-express health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.http.NewRequest(ctx, http.MethodGet, c.url+"/health", nil)
	if err != nil {
		return fmt.Errorf("vroom ping: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("vroom ping: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
