package services

import (
	"context"
	"errors"
	"route-planner-service/internal/adapters/mock"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"testing"
)

var testOrigin = domain.Coordinates{Lat: 37.802, Lon: -5.105}

func testStops(n int) []domain.Coordinates {
	out := make([]domain.Coordinates, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Coordinates{Lat: 37.80 + float64(i)/1000, Lon: -5.10})
	}
	return out
}

type fixedSolver struct {
	sol *ports.SolverSolution
	err error
}

func (f fixedSolver) Solve(ctx context.Context, p ports.SolverProblem) (*ports.SolverSolution, error) {
	return f.sol, f.err
}

func TestOptimizeSingleVehicleUnconstrained(t *testing.T) {
	solver := mock.NewSolver(100)
	o := NewOptimizer(solver, nil)

	opt, err := o.Optimize(context.Background(), testOrigin, testStops(3), 1)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	p := solver.Problems()[0]
	if len(p.Vehicles) != 1 || p.Vehicles[0].Capacity != nil {
		t.Fatalf("vehicles = %+v, want one unconstrained vehicle", p.Vehicles)
	}
	for _, j := range p.Jobs {
		if j.Amount != nil {
			t.Fatalf("job %d carries amount %v, want none", j.ID, j.Amount)
		}
	}
	if p.Jobs[0].ID != 1 || p.Jobs[2].ID != 3 {
		t.Fatalf("job ids = %+v, want 1-based", p.Jobs)
	}

	if len(opt.Assignments) != 1 {
		t.Fatalf("assignments = %d, want 1", len(opt.Assignments))
	}
	a := opt.Assignments[0]
	if len(a.Order) != 3 || a.Order[0] != 0 || a.Order[2] != 2 {
		t.Fatalf("order = %v", a.Order)
	}
	if a.ArrivalMeters[2] != 300 {
		t.Fatalf("cumulative distance = %v, want 300", a.ArrivalMeters[2])
	}
}

func TestOptimizeBalancesStopsAcrossVehicles(t *testing.T) {
	for _, n := range []int{2, 5, 6, 7} {
		solver := mock.NewSolver(50)
		o := NewOptimizer(solver, nil)

		opt, err := o.Optimize(context.Background(), testOrigin, testStops(n), 2)
		if err != nil {
			t.Fatalf("n=%d: Optimize: %v", n, err)
		}

		p := solver.Problems()[0]
		want := (n + 1) / 2
		for _, v := range p.Vehicles {
			if len(v.Capacity) != 1 || v.Capacity[0] != want {
				t.Fatalf("n=%d: capacity = %v, want [%d]", n, v.Capacity, want)
			}
		}
		for _, j := range p.Jobs {
			if len(j.Amount) != 1 || j.Amount[0] != 1 {
				t.Fatalf("n=%d: amount = %v, want [1]", n, j.Amount)
			}
		}

		seen := make(map[int]bool)
		counts := []int{}
		for _, a := range opt.Assignments {
			counts = append(counts, len(a.Order))
			for _, idx := range a.Order {
				if seen[idx] {
					t.Fatalf("n=%d: stop %d assigned twice", n, idx)
				}
				seen[idx] = true
			}
		}
		if len(seen) != n {
			t.Fatalf("n=%d: assigned %d stops, want %d", n, len(seen), n)
		}
		if len(counts) == 2 {
			diff := counts[0] - counts[1]
			if diff < -1 || diff > 1 {
				t.Fatalf("n=%d: per-vehicle counts %v differ by more than one", n, counts)
			}
		}
	}
}

func TestOptimizeSolverFailureIsSolverUnavailable(t *testing.T) {
	cases := map[string]ports.Solver{
		"error":     fixedSolver{err: errors.New("connection refused")},
		"no routes": fixedSolver{sol: &ports.SolverSolution{}},
		"unknown job": fixedSolver{sol: &ports.SolverSolution{Routes: []ports.SolverRoute{{
			Steps: []ports.SolverStep{{Kind: ports.SolverStepJob, JobID: 9}},
		}}}},
		"unassigned": fixedSolver{sol: &ports.SolverSolution{Routes: []ports.SolverRoute{{
			Steps: []ports.SolverStep{{Kind: ports.SolverStepJob, JobID: 1}},
		}}}},
	}

	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			opt, err := NewOptimizer(s, nil).Optimize(context.Background(), testOrigin, testStops(2), 1)
			if !errors.Is(err, domain.ErrSolverUnavailable) {
				t.Fatalf("err = %v, want ErrSolverUnavailable", err)
			}
			if opt != nil {
				t.Fatalf("optimization = %+v, want nil", opt)
			}
		})
	}
}

func TestOptimizeRejectsBadInput(t *testing.T) {
	o := NewOptimizer(mock.NewSolver(1), nil)

	if _, err := o.Optimize(context.Background(), testOrigin, nil, 1); !errors.Is(err, domain.ErrInput) {
		t.Fatalf("err = %v, want ErrInput", err)
	}
	if _, err := o.Optimize(context.Background(), testOrigin, testStops(2), 0); !errors.Is(err, domain.ErrInput) {
		t.Fatalf("err = %v, want ErrInput", err)
	}
}
