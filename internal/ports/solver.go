package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// SolverProblem is a vehicle-routing request: every vehicle starts at its
// Start location and has no end location (open trip).
type SolverProblem struct {
	Vehicles []SolverVehicle
	Jobs     []SolverJob
}

type SolverVehicle struct {
	ID    int
	Start domain.Coordinates
	// Capacity is omitted from the request when nil.
	Capacity []int
}

type SolverJob struct {
	ID       int
	Location domain.Coordinates
	// Amount is omitted from the request when nil.
	Amount []int
}

type SolverStepKind string

const (
	SolverStepStart SolverStepKind = "start"
	SolverStepJob   SolverStepKind = "job"
	SolverStepEnd   SolverStepKind = "end"
)

// SolverStep is one entry of a vehicle's itinerary. Only job steps carry a JobID.
// Distance and Duration are incremental from the previous step.
type SolverStep struct {
	Kind     SolverStepKind
	JobID    int
	Distance float64
	Duration float64
}

type SolverRoute struct {
	VehicleID int
	Steps     []SolverStep
	Distance  float64
	Duration  float64
}

type SolverSolution struct {
	Routes          []SolverRoute
	ComputingTimeMs float64
}

// Contract for the external vehicle-routing solver.
type Solver interface {
	// Solve performs a single round trip; any failure is reported as an error.
	Solve(ctx context.Context, p SolverProblem) (*SolverSolution, error)
}
