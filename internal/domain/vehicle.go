package domain

import "fmt"

// Delivery vehicle taking part in one optimization run.
// Every vehicle starts at the shared origin and has no fixed end (open trip).
// Capacity is counted in stops; zero means unconstrained.
type Vehicle struct {
	VehicleID int
	Capacity  int
	Start     Coordinates
}

func NewVehicle(id int, capacity int, start Coordinates) *Vehicle {
	return &Vehicle{
		VehicleID: id,
		Capacity:  capacity,
		Start:     start,
	}
}

// NewFleet builds count vehicles starting at origin. With more than one
// vehicle each gets capacity ceil(stops/count) so the solver must split the
// stops evenly by count.
func NewFleet(count int, stops int, origin Coordinates) ([]*Vehicle, error) {
	if count < 1 {
		return nil, fmt.Errorf("new fleet: vehicle count must be positive, got %d", count)
	}

	capacity := 0
	if count > 1 {
		// Ceiling division: distribute stops as evenly as possible across vehicles.
		capacity = (stops + count - 1) / count
	}

	fleet := make([]*Vehicle, 0, count)
	for i := 0; i < count; i++ {
		fleet = append(fleet, NewVehicle(i, capacity, origin))
	}
	return fleet, nil
}
