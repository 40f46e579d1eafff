package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

type Maneuver struct {
	Type     string
	Modifier string
	Location *domain.Coordinates
}

type RoadStep struct {
	Maneuver Maneuver
	Name     string
	Distance float64
}

type RoadLeg struct {
	Steps []RoadStep
}

// RoadRoute is the road-network engine's answer for an ordered coordinate list.
type RoadRoute struct {
	Geometry domain.Geometry
	Legs     []RoadLeg
	Distance float64
	Duration float64
}

// Contract for the road-network routing engine.
type RoadRouter interface {
	// Route returns geometry and maneuvers through coords in the given order.
	Route(ctx context.Context, coords []domain.Coordinates, withSteps bool) (*RoadRoute, error)
}
