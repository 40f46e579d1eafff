package mock

import (
	"context"
	"fmt"
	"route-planner-service/internal/ports"
	"sync"
)

// Solver fills vehicles in order, each up to its capacity, visiting jobs in
// the order given. Every leg is LegMeters long.
type Solver struct {
	LegMeters float64
	// Err, when set, is returned from every call.
	Err error

	mu       sync.Mutex
	problems []ports.SolverProblem
}

func NewSolver(legMeters float64) *Solver {
	return &Solver{LegMeters: legMeters}
}

func (s *Solver) Solve(ctx context.Context, p ports.SolverProblem) (*ports.SolverSolution, error) {
	s.mu.Lock()
	s.problems = append(s.problems, p)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if len(p.Vehicles) == 0 {
		return nil, fmt.Errorf("mock solver: no vehicles")
	}

	sol := &ports.SolverSolution{ComputingTimeMs: 1}
	next := 0
	for vi, v := range p.Vehicles {
		limit := len(p.Jobs) - next
		if len(v.Capacity) > 0 && v.Capacity[0] < limit {
			limit = v.Capacity[0]
		}
		// The last vehicle takes whatever is left.
		if vi == len(p.Vehicles)-1 {
			limit = len(p.Jobs) - next
		}
		if limit <= 0 {
			continue
		}

		route := ports.SolverRoute{VehicleID: v.ID}
		route.Steps = append(route.Steps, ports.SolverStep{Kind: ports.SolverStepStart})
		for _, j := range p.Jobs[next : next+limit] {
			route.Steps = append(route.Steps, ports.SolverStep{
				Kind:     ports.SolverStepJob,
				JobID:    j.ID,
				Distance: s.LegMeters,
			})
			route.Distance += s.LegMeters
		}
		next += limit
		sol.Routes = append(sol.Routes, route)
	}

	return sol, nil
}

func (s *Solver) Problems() []ports.SolverProblem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.SolverProblem(nil), s.problems...)
}
