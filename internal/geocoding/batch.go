package geocoding

import (
	"context"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Result pairs an input address with its resolution.
type Result struct {
	Address  string
	Coord    domain.Coordinates
	Resolved bool
}

// ResolveBatch resolves every address and returns results in input order.
// Addresses that need the network are throttled by one limiter shared by all
// workers, so their lookups start at least Delay apart; cache and override
// hits never wait.
func (r *Resolver) ResolveBatch(ctx context.Context, addresses []string) (results []Result, err error) {
	defer obs.Time(ctx, r.logger, "geocoding.resolve_batch")(&err)

	results = make([]Result, len(addresses))
	if len(addresses) == 0 {
		return results, nil
	}

	var gate func(context.Context) error
	if r.delay > 0 {
		limiter := rate.NewLimiter(rate.Every(r.delay), 1)
		gate = limiter.Wait
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, addr := range addresses {
		i, addr := i, addr
		g.Go(func() error {
			coord, ok, err := r.resolve(gctx, addr, gate)
			if err != nil {
				return err
			}
			results[i] = Result{Address: addr, Coord: coord, Resolved: ok}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve batch: %w", err)
	}
	return results, nil
}
