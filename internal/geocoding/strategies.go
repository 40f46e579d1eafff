package geocoding

import (
	"route-planner-service/internal/ports"
	"strings"
)

// Prepared is an address after cleaning, with the pieces the strategies
// build their queries from.
type Prepared struct {
	Raw              string
	Cleaned          string
	Street           string
	StreetWithNumber string
	Simplified       string
}

// Prepare cleans raw and derives street components.
func (c *Cleaner) Prepare(raw string) Prepared {
	cleaned := c.Clean(raw)
	street := c.Street(cleaned)

	simplified := cleaned
	if street != "" {
		simplified = c.Locality(street)
	}

	return Prepared{
		Raw:              raw,
		Cleaned:          cleaned,
		Street:           street,
		StreetWithNumber: c.StreetWithNumber(cleaned),
		Simplified:       simplified,
	}
}

// Strategy builds one outbound query from a prepared address. ok=false
// means the strategy does not apply and is skipped without a network call.
type Strategy struct {
	Name  string
	Query func(p Prepared) (q ports.GeocodeQuery, ok bool)
}

// DefaultStrategies returns the cascade in the order it is attempted.
func DefaultStrategies(c *Cleaner) []Strategy {
	return []Strategy{
		{
			Name: "free-form",
			Query: func(p Prepared) (ports.GeocodeQuery, bool) {
				if p.Cleaned == "" {
					return ports.GeocodeQuery{}, false
				}
				return ports.GeocodeQuery{Text: p.Cleaned}, true
			},
		},
		{
			Name: "structured",
			Query: func(p Prepared) (ports.GeocodeQuery, bool) {
				if p.Street == "" {
					return ports.GeocodeQuery{}, false
				}
				return ports.GeocodeQuery{
					Structured: true,
					Street:     p.StreetWithNumber,
					City:       c.town.City,
					County:     c.town.Region,
					Country:    c.town.Country,
				}, true
			},
		},
		{
			Name: "street-only",
			Query: func(p Prepared) (ports.GeocodeQuery, bool) {
				if p.Street == "" || p.Simplified == p.Cleaned {
					return ports.GeocodeQuery{}, false
				}
				return ports.GeocodeQuery{Text: p.Simplified}, true
			},
		},
		{
			Name: "street-only-bounded",
			Query: func(p Prepared) (ports.GeocodeQuery, bool) {
				if p.Street == "" {
					return ports.GeocodeQuery{}, false
				}
				return ports.GeocodeQuery{Text: p.Simplified, Bounded: true}, true
			},
		},
		{
			Name: "short-street",
			Query: func(p Prepared) (ports.GeocodeQuery, bool) {
				words := strings.Fields(p.Street)
				if len(words) < 2 {
					return ports.GeocodeQuery{}, false
				}
				keep := 1
				if len(words) > 2 {
					keep = 2
				}
				short := c.town.StreetType + " " + strings.Join(words[len(words)-keep:], " ")
				return ports.GeocodeQuery{Text: c.Locality(short)}, true
			},
		},
	}
}
