package services

import (
	"context"
	"errors"
	"route-planner-service/internal/adapters/mock"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"testing"
)

type fixedRouter struct {
	route *ports.RoadRoute
	err   error
}

func (f fixedRouter) Route(ctx context.Context, coords []domain.Coordinates, withSteps bool) (*ports.RoadRoute, error) {
	return f.route, f.err
}

func TestAssembleFiltersStepsAndRoundsDistance(t *testing.T) {
	loc := domain.Coordinates{Lat: 37.8, Lon: -5.1}
	router := fixedRouter{route: &ports.RoadRoute{
		Geometry: domain.Geometry{Type: "LineString", Coordinates: [][]float64{{-5.1, 37.8}, {-5.2, 37.9}}},
		Distance: 1234.6,
		Duration: 99.4,
		Legs: []ports.RoadLeg{{Steps: []ports.RoadStep{
			{Maneuver: ports.Maneuver{Type: "depart", Location: &loc}, Name: "Calle Real", Distance: 100.4},
			{Maneuver: ports.Maneuver{Type: "new name"}, Distance: 0},
			{Maneuver: ports.Maneuver{Type: "turn", Modifier: "right"}, Distance: 50.6},
			{Maneuver: ports.Maneuver{Type: "arrive", Location: &loc}, Distance: 0},
		}}},
	}}

	detail, err := NewAssembler(router, nil).Assemble(context.Background(), testStops(2))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if detail.DistanceMeters != 1235 {
		t.Fatalf("distance = %v, want 1235", detail.DistanceMeters)
	}
	if len(detail.Steps) != 3 {
		t.Fatalf("steps = %d, want 3: %+v", len(detail.Steps), detail.Steps)
	}

	first := detail.Steps[0]
	if first.Text != "Salir por Calle Real" || first.DistanceMeters != 100 {
		t.Fatalf("first step = %+v", first)
	}
	if first.Location == nil || *first.Location != loc {
		t.Fatalf("first step location = %v, want %v", first.Location, loc)
	}
	if detail.Steps[1].DistanceMeters != 51 || detail.Steps[1].Location != nil {
		t.Fatalf("second step = %+v", detail.Steps[1])
	}
	if detail.Steps[2].Text != "Llegar al destino" {
		t.Fatalf("last step = %+v, want arrival", detail.Steps[2])
	}
	if detail.Geometry.Type != "LineString" || len(detail.Geometry.Coordinates) != 2 {
		t.Fatalf("geometry = %+v", detail.Geometry)
	}
}

func TestAssembleFailureIsRouteEngineUnavailable(t *testing.T) {
	cases := map[string]ports.RoadRouter{
		"plain error": fixedRouter{err: errors.New("dial tcp: refused")},
		"mock":        &mock.RoadRouter{LegMeters: 1, Fail: func([]domain.Coordinates) bool { return true }},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewAssembler(r, nil).Assemble(context.Background(), testStops(3))
			if !errors.Is(err, domain.ErrRouteEngineUnavailable) {
				t.Fatalf("err = %v, want ErrRouteEngineUnavailable", err)
			}
		})
	}
}

func TestAssembleNeedsTwoPoints(t *testing.T) {
	r := mock.NewRoadRouter(10)
	_, err := NewAssembler(r, nil).Assemble(context.Background(), testStops(1))
	if !errors.Is(err, domain.ErrRouteEngineUnavailable) {
		t.Fatalf("err = %v, want ErrRouteEngineUnavailable", err)
	}
	if r.CallCount() != 0 {
		t.Fatalf("router calls = %d, want 0", r.CallCount())
	}
}
