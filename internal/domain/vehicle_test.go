package domain

import "testing"

func TestNewFleetBalancesCapacity(t *testing.T) {
	origin := Coordinates{Lat: 37.802, Lon: -5.105}

	fleet, err := NewFleet(2, 7, origin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fleet) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(fleet))
	}

	for i, v := range fleet {
		if v.VehicleID != i {
			t.Errorf("vehicle %d id = %d", i, v.VehicleID)
		}
		if v.Capacity != 4 {
			t.Errorf("vehicle %d capacity = %d, want 4", i, v.Capacity)
		}
		if v.Start != origin {
			t.Errorf("vehicle %d start = %v, want %v", i, v.Start, origin)
		}
	}
}

func TestNewFleetSingleVehicleIsUnconstrained(t *testing.T) {
	fleet, err := NewFleet(1, 50, Coordinates{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fleet[0].Capacity != 0 {
		t.Fatalf("capacity = %d, want 0", fleet[0].Capacity)
	}
}

func TestNewFleetRejectsZeroVehicles(t *testing.T) {
	if _, err := NewFleet(0, 3, Coordinates{}); err == nil {
		t.Fatal("expected error for zero vehicles")
	}
}
