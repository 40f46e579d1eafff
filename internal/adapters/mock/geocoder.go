package mock

import (
	"context"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"sync"
)

// GeocodeAnswer is the canned reply for one query text.
type GeocodeAnswer struct {
	Coord domain.Coordinates
	Err   error
}

// Geocoder answers from a table keyed by query text (the street field for
// structured queries) and records every query it receives.
type Geocoder struct {
	mu      sync.Mutex
	answers map[string]GeocodeAnswer
	calls   []ports.GeocodeQuery
}

func NewGeocoder(answers map[string]GeocodeAnswer) *Geocoder {
	if answers == nil {
		answers = make(map[string]GeocodeAnswer)
	}
	return &Geocoder{answers: answers}
}

func (g *Geocoder) Search(ctx context.Context, q ports.GeocodeQuery) (domain.Coordinates, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, q)

	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, false, err
	}

	text := q.Text
	if q.Structured {
		text = q.Street
	}

	a, ok := g.answers[text]
	if !ok {
		return domain.Coordinates{}, false, nil
	}
	if a.Err != nil {
		return domain.Coordinates{}, false, a.Err
	}
	return a.Coord, true, nil
}

// Set replaces the answer for one query text.
func (g *Geocoder) Set(text string, a GeocodeAnswer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.answers[text] = a
}

func (g *Geocoder) Calls() []ports.GeocodeQuery {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]ports.GeocodeQuery(nil), g.calls...)
}

func (g *Geocoder) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}
