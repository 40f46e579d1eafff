package handlers

import (
	"route-planner-service/internal/api/dto"
	"testing"
)

func TestPlanRequestFromPreGroupedKeepsPrimaryName(t *testing.T) {
	req := dto.OptimizeRequest{
		Addresses:      []string{"Calle Real 3", "Calle Sol 4"},
		ClientNames:    []string{"Ana", ""},
		PackageCounts:  []int{3, 1},
		AllClientNames: [][]string{{"", "Luis", "Ana"}, {"Marta"}},
	}

	out := planRequestFrom(req)

	if len(out.Groups) != 2 || out.Rows != nil {
		t.Fatalf("groups = %d rows = %v, want 2 groups and no rows", len(out.Groups), out.Rows)
	}
	if got := out.Groups[0].PrimaryName(); got != "Ana" {
		t.Fatalf("primary = %q, want Ana", got)
	}
	if got := out.Groups[1].PrimaryName(); got != "Marta" {
		t.Fatalf("primary without client name = %q, want Marta", got)
	}
	if got := out.Groups[0].NamedClients(); len(got) != 2 || got[0] != "Luis" {
		t.Fatalf("named clients = %v", got)
	}
}
