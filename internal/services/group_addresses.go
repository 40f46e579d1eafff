package services

import (
	"route-planner-service/internal/domain"
	"route-planner-service/internal/normalizer"
	"strings"
)

// GroupAddresses merges rows whose addresses share a normalized key.
// Groups keep first-seen order; each keeps the original text of its first
// row, every client name (empty ones included) and one package per row.
// The first non-nil row coordinate in a group pre-resolves it.
func GroupAddresses(rows []domain.RawDeliveryRow) []domain.AddressGroup {
	index := make(map[string]int, len(rows))
	groups := make([]domain.AddressGroup, 0, len(rows))

	for _, row := range rows {
		key := normalizer.Key(row.Address)

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, domain.AddressGroup{
				Key:     key,
				Address: row.Address,
			})
		}

		g := &groups[i]
		g.ClientNames = append(g.ClientNames, row.ClientName)
		g.PackageCount++
		if g.Coordinates == nil && row.Coordinates != nil {
			c := *row.Coordinates
			g.Coordinates = &c
		}
	}

	return groups
}

// FullAddress joins a street line with its city unless the city is empty
// or already part of the street line.
func FullAddress(street, city string) string {
	s := strings.TrimSpace(street)
	c := strings.TrimSpace(city)
	if c == "" || strings.Contains(strings.ToLower(s), strings.ToLower(c)) {
		return s
	}
	return s + ", " + c
}
