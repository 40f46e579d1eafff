package services

import (
	"context"
	"errors"
	"route-planner-service/internal/adapters/mock"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/geocoding"
	"sync"
	"testing"
)

var testCenter = domain.Coordinates{Lat: 37.802, Lon: -5.105}

// fakeResolver answers from a fixed table; unknown addresses are unresolved.
type fakeResolver struct {
	mu      sync.Mutex
	coords  map[string]domain.Coordinates
	batched [][]string
}

func newFakeResolver(addresses ...string) *fakeResolver {
	f := &fakeResolver{coords: make(map[string]domain.Coordinates)}
	f.coords["Origen 1"] = testOrigin
	for i, a := range addresses {
		f.coords[a] = domain.Coordinates{Lat: 37.80 + float64(i+1)/1000, Lon: -5.10}
	}
	return f
}

func (f *fakeResolver) Resolve(ctx context.Context, address string) (domain.Coordinates, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, false, err
	}
	c, ok := f.coords[address]
	return c, ok, nil
}

func (f *fakeResolver) ResolveBatch(ctx context.Context, addresses []string) ([]geocoding.Result, error) {
	f.mu.Lock()
	f.batched = append(f.batched, append([]string(nil), addresses...))
	f.mu.Unlock()

	out := make([]geocoding.Result, len(addresses))
	for i, a := range addresses {
		c, ok, err := f.Resolve(ctx, a)
		if err != nil {
			return nil, err
		}
		out[i] = geocoding.Result{Address: a, Coord: c, Resolved: ok}
	}
	return out, nil
}

func newTestPlanner(res AddressResolver, solver *mock.Solver, router *mock.RoadRouter) *Planner {
	return NewPlanner(
		res,
		NewOptimizer(solver, nil),
		NewAssembler(router, nil),
		PlannerConfig{
			StartAddress: "Origen 1",
			MaxStops:     5,
			MaxVehicles:  2,
			TownCenter:   testCenter,
		},
		nil,
	)
}

func rows(pairs ...string) []domain.RawDeliveryRow {
	out := make([]domain.RawDeliveryRow, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.RawDeliveryRow{ClientName: pairs[i], Address: pairs[i+1]})
	}
	return out
}

func TestPlanSingleVehicle(t *testing.T) {
	res := newFakeResolver("Calle Mayor 1", "Calle Nueva 2")
	p := newTestPlanner(res, mock.NewSolver(100), mock.NewRoadRouter(100))

	plan, err := p.Plan(context.Background(), PlanRequest{
		Rows: rows("Ana", "Calle Mayor 1", "", "calle mayor, 1", "", "Calle Nueva 2"),
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if plan.Multi || len(plan.Routes) != 1 || plan.PlannedRoutes != 1 {
		t.Fatalf("plan = %+v, want one single-vehicle route", plan)
	}
	r := plan.Routes[0]

	if len(r.Stops) != 3 {
		t.Fatalf("stops = %d, want origin + 2", len(r.Stops))
	}
	origin := r.Stops[0]
	if origin.Type != domain.StopTypeOrigin || origin.Label != "🏠 Origen" || origin.PackageCount != 0 || origin.Address != "Origen 1" {
		t.Fatalf("origin stop = %+v", origin)
	}

	first := r.Stops[1]
	if first.Address != "Calle Mayor 1" || first.PackageCount != 2 || first.Label != "📍 Ana" {
		t.Fatalf("first stop = %+v", first)
	}
	if len(first.ClientNames) != 1 || first.ClientNames[0] != "Ana" {
		t.Fatalf("client names = %v, want [Ana]", first.ClientNames)
	}
	if first.DistanceMeters != 100 || r.Stops[2].DistanceMeters != 200 {
		t.Fatalf("arrival distances = %v, %v", first.DistanceMeters, r.Stops[2].DistanceMeters)
	}
	if r.Stops[2].Label != "📍 Calle Nueva 2" {
		t.Fatalf("unnamed label = %q", r.Stops[2].Label)
	}

	if r.TotalPackages != 3 || r.DeliveryStops() != 2 {
		t.Fatalf("packages = %d stops = %d, want 3 and 2", r.TotalPackages, r.DeliveryStops())
	}
	if r.TotalDistanceMeters != 200 {
		t.Fatalf("distance = %v, want 200", r.TotalDistanceMeters)
	}
	if len(r.Steps) == 0 || len(r.Geometry.Coordinates) != 3 {
		t.Fatalf("detail missing: steps=%d geometry=%d", len(r.Steps), len(r.Geometry.Coordinates))
	}
}

func TestPlanFailedAddressesAppendedAtTownCenter(t *testing.T) {
	res := newFakeResolver("Calle Mayor 1")
	p := newTestPlanner(res, mock.NewSolver(100), mock.NewRoadRouter(100))

	long := "Calle Inexistente Con Nombre Muy Largo 99"
	plan, err := p.Plan(context.Background(), PlanRequest{
		Rows: rows("", "Calle Mayor 1", "", long, "Pepe", "Nowhere 3"),
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if len(plan.Failed) != 2 {
		t.Fatalf("failed = %d, want 2", len(plan.Failed))
	}
	r := plan.Routes[0]
	if len(r.Stops) != 4 {
		t.Fatalf("stops = %d, want 4", len(r.Stops))
	}

	f := r.Stops[2]
	if !f.GeocodeFailed || f.Coordinates != testCenter || f.DistanceMeters != 0 || f.Order != 2 {
		t.Fatalf("failed stop = %+v", f)
	}
	want := "⚠️ " + string([]rune(long)[:30]) + "…"
	if f.Label != want {
		t.Fatalf("label = %q, want %q", f.Label, want)
	}
	if r.Stops[3].Label != "⚠️ Pepe" {
		t.Fatalf("label = %q, want named failed label", r.Stops[3].Label)
	}
	if r.DeliveryStops() != 3 || r.TotalPackages != 3 {
		t.Fatalf("stops = %d packages = %d, want 3 and 3", r.DeliveryStops(), r.TotalPackages)
	}
}

func TestPlanPreGroupedBypassesGrouping(t *testing.T) {
	res := newFakeResolver("Calle Mayor 1", "calle mayor 1")
	p := newTestPlanner(res, mock.NewSolver(10), mock.NewRoadRouter(10))

	pre := domain.Coordinates{Lat: 37.81, Lon: -5.11}
	plan, err := p.Plan(context.Background(), PlanRequest{
		Groups: []domain.AddressGroup{
			{Address: "Calle Mayor 1", ClientNames: []string{"Ana", "Eva"}, PackageCount: 4, Coordinates: &pre},
			{Address: "calle mayor 1", ClientNames: []string{""}, PackageCount: 1},
		},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	r := plan.Routes[0]
	if r.DeliveryStops() != 2 {
		t.Fatalf("stops = %d, want colliding pre-grouped entries kept distinct", r.DeliveryStops())
	}
	if r.Stops[1].Coordinates != pre || r.Stops[1].PackageCount != 4 || len(r.Stops[1].ClientNames) != 2 {
		t.Fatalf("pre-grouped stop = %+v", r.Stops[1])
	}
	if r.TotalPackages != 5 {
		t.Fatalf("packages = %d, want 5", r.TotalPackages)
	}

	if len(res.batched) != 1 || len(res.batched[0]) != 1 || res.batched[0][0] != "calle mayor 1" {
		t.Fatalf("geocoded = %v, want only the group without coordinates", res.batched)
	}
}

func TestPlanMultiVehicleSplitsStops(t *testing.T) {
	addrs := []string{"A 1", "B 2", "C 3", "D 4", "E 5"}
	res := newFakeResolver(addrs...)
	p := newTestPlanner(res, mock.NewSolver(10), mock.NewRoadRouter(10))

	var in []domain.RawDeliveryRow
	for _, a := range addrs {
		in = append(in, domain.RawDeliveryRow{Address: a})
	}
	plan, err := p.Plan(context.Background(), PlanRequest{Rows: in, VehicleCount: 2})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if !plan.Multi || len(plan.Routes) != 2 || plan.PlannedRoutes != 2 {
		t.Fatalf("plan multi=%v routes=%d planned=%d", plan.Multi, len(plan.Routes), plan.PlannedRoutes)
	}

	seen := map[string]bool{}
	for i, r := range plan.Routes {
		if r.VehicleIndex != i {
			t.Fatalf("route %d index = %d", i, r.VehicleIndex)
		}
		if r.Stops[0].Type != domain.StopTypeOrigin {
			t.Fatalf("route %d does not start at origin", i)
		}
		for _, s := range r.Stops[1:] {
			if seen[s.Address] {
				t.Fatalf("stop %q in two routes", s.Address)
			}
			seen[s.Address] = true
		}
	}
	if len(seen) != len(addrs) {
		t.Fatalf("covered %d stops, want %d", len(seen), len(addrs))
	}
	diff := plan.Routes[0].DeliveryStops() - plan.Routes[1].DeliveryStops()
	if diff < -1 || diff > 1 {
		t.Fatalf("per-vehicle stops differ by %d", diff)
	}
}

func TestPlanMultiVehicleDropsFailedRoute(t *testing.T) {
	res := newFakeResolver("A 1", "B 2", "C 3", "D 4")
	router := mock.NewRoadRouter(10)
	a := res.coords["A 1"]
	// The first vehicle gets A and B; fail any route through A.
	router.Fail = func(coords []domain.Coordinates) bool {
		for _, c := range coords {
			if c == a {
				return true
			}
		}
		return false
	}
	p := newTestPlanner(res, mock.NewSolver(10), router)

	plan, err := p.Plan(context.Background(), PlanRequest{
		Rows:         rows("", "A 1", "", "B 2", "", "C 3", "", "D 4", "", "Lost 9"),
		VehicleCount: 2,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if len(plan.Routes) != 1 || plan.PlannedRoutes != 2 {
		t.Fatalf("routes = %d planned = %d, want 1 of 2", len(plan.Routes), plan.PlannedRoutes)
	}
	r := plan.Routes[0]
	if r.VehicleIndex != 1 {
		t.Fatalf("surviving route index = %d, want 1", r.VehicleIndex)
	}
	last := r.Stops[len(r.Stops)-1]
	if !last.GeocodeFailed || last.Address != "Lost 9" {
		t.Fatalf("failed stop not carried by surviving route: %+v", last)
	}
}

func TestPlanAllMultiRoutesFailing(t *testing.T) {
	res := newFakeResolver("A 1", "B 2")
	router := mock.NewRoadRouter(10)
	router.Fail = func([]domain.Coordinates) bool { return true }
	p := newTestPlanner(res, mock.NewSolver(10), router)

	_, err := p.Plan(context.Background(), PlanRequest{Rows: rows("", "A 1", "", "B 2"), VehicleCount: 2})
	if !errors.Is(err, domain.ErrRouteEngineUnavailable) {
		t.Fatalf("err = %v, want ErrRouteEngineUnavailable", err)
	}
}

func TestPlanSingleRouteEngineFailureIsTerminal(t *testing.T) {
	res := newFakeResolver("A 1")
	router := mock.NewRoadRouter(10)
	router.Fail = func([]domain.Coordinates) bool { return true }
	p := newTestPlanner(res, mock.NewSolver(10), router)

	plan, err := p.Plan(context.Background(), PlanRequest{Rows: rows("", "A 1")})
	if !errors.Is(err, domain.ErrRouteEngineUnavailable) {
		t.Fatalf("err = %v, want ErrRouteEngineUnavailable", err)
	}
	if plan != nil {
		t.Fatalf("plan = %+v, want nil", plan)
	}
}

func TestPlanSolverFailure(t *testing.T) {
	solver := mock.NewSolver(10)
	solver.Err = errors.New("vroom: code 3")
	router := mock.NewRoadRouter(10)
	p := newTestPlanner(newFakeResolver("A 1"), solver, router)

	_, err := p.Plan(context.Background(), PlanRequest{Rows: rows("", "A 1")})
	if !errors.Is(err, domain.ErrSolverUnavailable) {
		t.Fatalf("err = %v, want ErrSolverUnavailable", err)
	}
	if router.CallCount() != 0 {
		t.Fatalf("router calls = %d, want 0", router.CallCount())
	}
}

func TestPlanInputErrors(t *testing.T) {
	tests := []struct {
		name string
		req  PlanRequest
	}{
		{"empty", PlanRequest{Rows: rows("", "  ", "", "")}},
		{"too many", PlanRequest{Rows: rows("", "A 1", "", "A 2", "", "A 3", "", "A 4", "", "A 5", "", "A 6")}},
		{"vehicles", PlanRequest{Rows: rows("", "A 1"), VehicleCount: 3}},
		{"origin", PlanRequest{Rows: rows("", "A 1"), StartAddress: "Unknown origin"}},
		{"nothing resolved", PlanRequest{Rows: rows("", "Nowhere 1", "", "Nowhere 2")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlanner(newFakeResolver("A 1"), mock.NewSolver(10), mock.NewRoadRouter(10))
			_, err := p.Plan(context.Background(), tt.req)
			if !errors.Is(err, domain.ErrInput) {
				t.Fatalf("err = %v, want ErrInput", err)
			}
		})
	}
}

func TestPlanWithCascadingResolver(t *testing.T) {
	g := mock.NewGeocoder(nil)
	r, err := geocoding.NewResolver(context.Background(), geocoding.Options{
		Provider:  g,
		Town:      geocoding.Town{City: "Posadas", Region: "Córdoba", Country: "España"},
		Center:    testCenter,
		Tolerance: 0.15,
	})
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	clean := r.Cleaner().Clean
	g.Set(clean("Origen 1"), mock.GeocodeAnswer{Coord: testOrigin})
	g.Set(clean("C/ Gaitán nº 3"), mock.GeocodeAnswer{Coord: domain.Coordinates{Lat: 37.803, Lon: -5.104}})

	p := newTestPlanner(r, mock.NewSolver(10), mock.NewRoadRouter(10))
	plan, err := p.Plan(context.Background(), PlanRequest{
		Rows: rows("Ana", "C/ Gaitán nº 3", "", "Sin Resultado 7"),
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	s := plan.Routes[0].Stops[1]
	if s.Address != "C/ Gaitán nº 3" || s.GeocodeFailed || s.Label != "📍 Ana" {
		t.Fatalf("stop = %+v", s)
	}
	if len(plan.Failed) != 1 || plan.Failed[0].Address != "Sin Resultado 7" {
		t.Fatalf("failed = %+v", plan.Failed)
	}
}
