package services

import (
	"context"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"sort"

	"go.uber.org/zap"
)

// Assignment is one vehicle's visiting order. Order holds indices into the
// stop list given to Optimize; ArrivalMeters[i] is the cumulative distance
// from the origin to Order[i].
type Assignment struct {
	VehicleID     int
	Order         []int
	ArrivalMeters []float64
	Distance      float64
}

type Optimization struct {
	Assignments     []Assignment
	ComputingTimeMs float64
}

// Optimizer turns resolved stops into visiting orders through the solver.
type Optimizer struct {
	solver ports.Solver
	logger *zap.Logger
}

func NewOptimizer(solver ports.Solver, logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{solver: solver, logger: logger}
}

// Optimize orders stops for vehicleCount vehicles starting at origin with no
// fixed end. With more than one vehicle every stop weighs one unit and every
// vehicle carries ceil(stops/vehicles) units, so stop counts differ by at
// most one. Solver failures are returned as domain.ErrSolverUnavailable.
func (o *Optimizer) Optimize(
	ctx context.Context,
	origin domain.Coordinates,
	stops []domain.Coordinates,
	vehicleCount int,
) (_ *Optimization, err error) {
	defer obs.Time(ctx, o.logger, "services.optimize")(&err)

	if len(stops) == 0 {
		return nil, domain.NewInputError("no stops to optimize")
	}

	fleet, err := domain.NewFleet(vehicleCount, len(stops), origin)
	if err != nil {
		return nil, domain.NewInputError("%v", err)
	}

	problem := ports.SolverProblem{
		Vehicles: make([]ports.SolverVehicle, 0, len(fleet)),
		Jobs:     make([]ports.SolverJob, 0, len(stops)),
	}
	for _, v := range fleet {
		sv := ports.SolverVehicle{ID: v.VehicleID, Start: v.Start}
		if v.Capacity > 0 {
			sv.Capacity = []int{v.Capacity}
		}
		problem.Vehicles = append(problem.Vehicles, sv)
	}
	for i, s := range stops {
		// Job ids are 1-based; 0 is the origin.
		job := ports.SolverJob{ID: i + 1, Location: s}
		if vehicleCount > 1 {
			job.Amount = []int{1}
		}
		problem.Jobs = append(problem.Jobs, job)
	}

	sol, err := o.solver.Solve(ctx, problem)
	if err != nil {
		if errors.Is(err, domain.ErrSolverUnavailable) {
			return nil, fmt.Errorf("optimize: %w", err)
		}
		return nil, fmt.Errorf("optimize: %w: %w", domain.ErrSolverUnavailable, err)
	}
	if sol == nil || len(sol.Routes) == 0 {
		return nil, fmt.Errorf("optimize: %w: empty solution", domain.ErrSolverUnavailable)
	}

	out, err := extractAssignments(sol, len(stops), vehicleCount)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w: %w", domain.ErrSolverUnavailable, err)
	}

	o.logger.Debug("optimization done",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.Int("stops", len(stops)),
		zap.Int("vehicles", vehicleCount),
		zap.Int("routes", len(out.Assignments)),
	)
	return out, nil
}

func extractAssignments(sol *ports.SolverSolution, stopCount, vehicleCount int) (*Optimization, error) {
	routes := sol.Routes
	if vehicleCount == 1 {
		routes = routes[:1]
	}

	seen := make([]bool, stopCount)
	assigned := 0
	out := &Optimization{ComputingTimeMs: sol.ComputingTimeMs}

	for _, r := range routes {
		a := Assignment{VehicleID: r.VehicleID, Distance: r.Distance}
		cumulative := 0.0

		for _, s := range r.Steps {
			if s.Kind != ports.SolverStepJob {
				continue
			}
			idx := s.JobID - 1
			if idx < 0 || idx >= stopCount {
				return nil, fmt.Errorf("unknown job id %d", s.JobID)
			}
			if seen[idx] {
				return nil, fmt.Errorf("job id %d assigned twice", s.JobID)
			}
			seen[idx] = true
			assigned++

			cumulative += s.Distance
			a.Order = append(a.Order, idx)
			a.ArrivalMeters = append(a.ArrivalMeters, cumulative)
		}

		if len(a.Order) > 0 {
			out.Assignments = append(out.Assignments, a)
		}
	}

	if assigned != stopCount {
		return nil, fmt.Errorf("%d of %d stops left unassigned", stopCount-assigned, stopCount)
	}

	sort.Slice(out.Assignments, func(i, j int) bool {
		return out.Assignments[i].VehicleID < out.Assignments[j].VehicleID
	})
	return out, nil
}
