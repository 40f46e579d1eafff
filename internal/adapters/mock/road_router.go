package mock

import (
	"context"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"sync"
)

// RoadRouter returns a straight-line geometry through the given points with
// one depart step, one turn per leg and a final arrive step.
type RoadRouter struct {
	LegMeters float64
	// Fail, when set, decides per call whether to return an error.
	Fail func(coords []domain.Coordinates) bool

	mu    sync.Mutex
	calls int
}

func NewRoadRouter(legMeters float64) *RoadRouter {
	return &RoadRouter{LegMeters: legMeters}
}

func (r *RoadRouter) Route(ctx context.Context, coords []domain.Coordinates, withSteps bool) (*ports.RoadRoute, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Fail != nil && r.Fail(coords) {
		return nil, fmt.Errorf("mock road router: %w", domain.ErrRouteEngineUnavailable)
	}
	if len(coords) < 2 {
		return nil, fmt.Errorf("mock road router: need at least 2 points, got %d", len(coords))
	}

	out := &ports.RoadRoute{Geometry: domain.Geometry{Type: "LineString"}}
	for _, c := range coords {
		out.Geometry.Coordinates = append(out.Geometry.Coordinates, c.CoordsToList())
	}

	for i := 1; i < len(coords); i++ {
		leg := ports.RoadLeg{}
		if withSteps {
			from := coords[i-1]
			to := coords[i]
			if i == 1 {
				leg.Steps = append(leg.Steps, ports.RoadStep{
					Maneuver: ports.Maneuver{Type: "depart", Location: &from},
					Name:     "Calle Real",
					Distance: r.LegMeters / 2,
				})
			}
			leg.Steps = append(leg.Steps,
				ports.RoadStep{
					Maneuver: ports.Maneuver{Type: "turn", Modifier: "left", Location: &from},
					Distance: r.LegMeters / 2,
				},
				ports.RoadStep{
					Maneuver: ports.Maneuver{Type: "arrive", Location: &to},
				},
			)
		}
		out.Legs = append(out.Legs, leg)
		out.Distance += r.LegMeters
		out.Duration += r.LegMeters / 10
	}

	return out, nil
}

func (r *RoadRouter) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
