package services

import (
	"context"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"

	"go.uber.org/zap"
)

// RouteDetail is the road-following rendering of an ordered coordinate list.
type RouteDetail struct {
	Geometry        domain.Geometry
	Steps           []domain.NavigationStep
	DistanceMeters  float64
	DurationSeconds float64
}

// Assembler fetches road geometry and Spanish turn-by-turn instructions.
type Assembler struct {
	router ports.RoadRouter
	logger *zap.Logger
}

func NewAssembler(router ports.RoadRouter, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{router: router, logger: logger}
}

// Assemble routes through coords in the given order. Zero-length steps are
// dropped except arrivals. Failures wrap domain.ErrRouteEngineUnavailable.
func (a *Assembler) Assemble(ctx context.Context, coords []domain.Coordinates) (_ *RouteDetail, err error) {
	defer obs.Time(ctx, a.logger, "services.assemble_route")(&err)

	if len(coords) < 2 {
		return nil, fmt.Errorf("assemble route: %w: need at least 2 points, got %d",
			domain.ErrRouteEngineUnavailable, len(coords))
	}

	rr, err := a.router.Route(ctx, coords, true)
	if err != nil {
		if errors.Is(err, domain.ErrRouteEngineUnavailable) {
			return nil, fmt.Errorf("assemble route: %w", err)
		}
		return nil, fmt.Errorf("assemble route: %w: %w", domain.ErrRouteEngineUnavailable, err)
	}

	detail := &RouteDetail{
		Geometry:        rr.Geometry,
		DistanceMeters:  domain.RoundMeters(rr.Distance),
		DurationSeconds: domain.RoundMeters(rr.Duration),
	}

	for _, leg := range rr.Legs {
		for _, s := range leg.Steps {
			if s.Distance <= 0 && s.Maneuver.Type != "arrive" {
				continue
			}
			step := domain.NavigationStep{
				Text:           StepText(s.Maneuver.Type, s.Maneuver.Modifier, s.Name),
				DistanceMeters: domain.RoundMeters(s.Distance),
			}
			if s.Maneuver.Location != nil {
				loc := *s.Maneuver.Location
				step.Location = &loc
			}
			detail.Steps = append(detail.Steps, step)
		}
	}

	return detail, nil
}
