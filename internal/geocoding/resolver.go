package geocoding

import (
	"context"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Options configures a Resolver.
type Options struct {
	Provider ports.Geocoder
	// Shared is an optional cache consulted after the process cache.
	Shared ports.GeocodeCache
	// Store persists overrides; nil keeps overrides in memory only.
	Store ports.OverrideStore

	Town      Town
	Center    domain.Coordinates
	Tolerance float64
	Viewbox   domain.Viewbox

	// Delay is the minimum spacing between network-bound lookups in a batch.
	Delay time.Duration
	// RetryDelay separates consecutive strategy attempts for one address.
	RetryDelay  time.Duration
	Concurrency int

	// LookupTimeout bounds one full cascade; defaults to DefaultLookupTimeout.
	LookupTimeout time.Duration

	// Strategies defaults to DefaultStrategies.
	Strategies []Strategy
	Logger     *zap.Logger
}

// Resolver maps raw address text to coordinates. It owns the process-wide
// geocode cache and the override table; build one per process and share it.
type Resolver struct {
	provider   ports.Geocoder
	shared     ports.GeocodeCache
	store      ports.OverrideStore
	cleaner    *Cleaner
	strategies []Strategy

	center    domain.Coordinates
	tolerance float64
	viewbox   domain.Viewbox

	delay         time.Duration
	retryDelay    time.Duration
	lookupTimeout time.Duration
	concurrency   int
	logger        *zap.Logger

	mu sync.RWMutex
	// A nil value memoizes an unresolved address.
	cache     map[string]*domain.Coordinates
	overrides map[string]ports.Override

	// Serializes override persistence so the store always holds the latest table.
	saveMu sync.Mutex
	flight singleflight.Group
}

const DefaultLookupTimeout = 2 * time.Minute

type outcome struct {
	coord    domain.Coordinates
	resolved bool
}

// NewResolver builds a Resolver and loads every stored override.
func NewResolver(ctx context.Context, opts Options) (*Resolver, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("new resolver: provider is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cleaner := NewCleaner(opts.Town)
	strategies := opts.Strategies
	if strategies == nil {
		strategies = DefaultStrategies(cleaner)
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	lookupTimeout := opts.LookupTimeout
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}

	r := &Resolver{
		provider:      opts.Provider,
		shared:        opts.Shared,
		store:         opts.Store,
		cleaner:       cleaner,
		strategies:    strategies,
		center:        opts.Center,
		tolerance:     opts.Tolerance,
		viewbox:       opts.Viewbox,
		delay:         opts.Delay,
		retryDelay:    opts.RetryDelay,
		lookupTimeout: lookupTimeout,
		concurrency:   concurrency,
		logger:        logger,
		cache:         make(map[string]*domain.Coordinates),
		overrides:     make(map[string]ports.Override),
	}

	if r.store != nil {
		loaded, err := r.store.LoadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("new resolver: load overrides: %w", err)
		}
		for k, o := range loaded {
			r.overrides[Key(k)] = o
		}
		logger.Info("geocode overrides loaded", zap.Int("count", len(r.overrides)))
	}

	return r, nil
}

// Key is the cache and override key for raw address text.
func Key(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Cleaner exposes the cleaning pipeline used for outbound queries.
func (r *Resolver) Cleaner() *Cleaner { return r.cleaner }

// Resolve returns the coordinate for address. found=false means the address
// is unresolved. An error is returned when ctx ends before the lookup
// completes or the shared lookup itself times out; a timed-out cascade is
// never memoized. Concurrent callers for one address share a single
// lookup, and one caller's cancellation does not fail the others.
func (r *Resolver) Resolve(ctx context.Context, address string) (domain.Coordinates, bool, error) {
	return r.resolve(ctx, address, nil)
}

func (r *Resolver) resolve(
	ctx context.Context,
	address string,
	gate func(context.Context) error,
) (domain.Coordinates, bool, error) {
	key := Key(address)
	if key == "" {
		return domain.Coordinates{}, false, nil
	}

	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("resolve %q: %w", address, err)
	}

	if out, hit := r.lookup(ctx, key); hit {
		return out.coord, out.resolved, nil
	}

	// The flight is shared by every caller of key, so it runs detached from
	// any single caller's cancellation and is bounded by lookupTimeout.
	ch := r.flight.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.lookupTimeout)
		defer cancel()

		// Another flight may have finished between the lookup and here.
		if out, hit := r.lookup(fctx, key); hit {
			return out, nil
		}

		coord, definitive, err := r.cascade(fctx, address, gate)
		if err != nil {
			return outcome{}, err
		}

		if coord != nil {
			r.remember(fctx, key, coord)
			return outcome{coord: *coord, resolved: true}, nil
		}

		if definitive {
			r.remember(fctx, key, nil)
		}
		return outcome{}, nil
	})

	select {
	case <-ctx.Done():
		return domain.Coordinates{}, false, fmt.Errorf("resolve %q: %w", address, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Coordinates{}, false, fmt.Errorf("resolve %q: %w", address, res.Err)
		}
		out := res.Val.(outcome)
		return out.coord, out.resolved, nil
	}
}

// lookup checks overrides, the process cache, then the shared cache.
func (r *Resolver) lookup(ctx context.Context, key string) (outcome, bool) {
	r.mu.RLock()
	if o, ok := r.overrides[key]; ok {
		r.mu.RUnlock()
		return outcome{coord: o.Coord, resolved: true}, true
	}
	if c, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		if c == nil {
			return outcome{}, true
		}
		return outcome{coord: *c, resolved: true}, true
	}
	r.mu.RUnlock()

	if r.shared == nil {
		return outcome{}, false
	}

	entry, found, err := r.shared.Get(ctx, key)
	if err != nil {
		r.logger.Warn("shared geocode cache read failed", zap.String("key", key), zap.Error(err))
		return outcome{}, false
	}
	if !found {
		return outcome{}, false
	}

	var c *domain.Coordinates
	if entry.Resolved {
		coord := entry.Coord
		c = &coord
	}
	r.mu.Lock()
	r.cache[key] = c
	r.mu.Unlock()

	return outcome{coord: entry.Coord, resolved: entry.Resolved}, true
}

func (r *Resolver) remember(ctx context.Context, key string, coord *domain.Coordinates) {
	r.mu.Lock()
	r.cache[key] = coord
	r.mu.Unlock()

	if r.shared == nil {
		return
	}

	entry := ports.GeocodeEntry{}
	if coord != nil {
		entry = ports.GeocodeEntry{Resolved: true, Coord: *coord}
	}
	if err := r.shared.Set(ctx, key, entry); err != nil {
		r.logger.Warn("shared geocode cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// cascade tries each strategy in order until one yields an accepted
// candidate. definitive=false means at least one attempt failed in transport,
// so the miss must not be memoized.
func (r *Resolver) cascade(
	ctx context.Context,
	address string,
	gate func(context.Context) error,
) (coord *domain.Coordinates, definitive bool, err error) {
	p := r.cleaner.Prepare(address)
	attempted := false
	definitive = true

	for _, s := range r.strategies {
		q, ok := s.Query(p)
		if !ok {
			continue
		}

		if attempted {
			if err := sleepCtx(ctx, r.retryDelay); err != nil {
				return nil, false, err
			}
		} else if gate != nil {
			if err := gate(ctx); err != nil {
				return nil, false, err
			}
		}
		attempted = true

		c, found, err := r.provider.Search(ctx, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, false, ctxErr
			}
			r.logger.Warn("geocode attempt failed",
				zap.String("address", address),
				zap.String("strategy", s.Name),
				zap.Error(err),
			)
			definitive = false
			continue
		}
		if !found {
			continue
		}

		if !r.accept(c, q) {
			r.logger.Debug("geocode candidate rejected",
				zap.String("address", address),
				zap.String("strategy", s.Name),
				zap.Float64("lat", c.Lat),
				zap.Float64("lon", c.Lon),
			)
			continue
		}

		r.logger.Debug("geocode resolved",
			zap.String("address", address),
			zap.String("strategy", s.Name),
			zap.Float64("lat", c.Lat),
			zap.Float64("lon", c.Lon),
		)
		return &c, true, nil
	}

	r.logger.Info("geocode unresolved",
		zap.String("address", address),
		zap.String("cleaned", p.Cleaned),
		zap.Bool("memoized", definitive),
	)
	return nil, definitive, nil
}

func (r *Resolver) accept(c domain.Coordinates, q ports.GeocodeQuery) bool {
	if !c.WithinWindow(r.center, r.tolerance) {
		return false
	}
	if q.Bounded && !r.viewbox.Contains(c) {
		return false
	}
	return true
}

// AddOverride records a manual coordinate for address. The in-memory table
// and cache are updated even when persisting fails; that failure is
// returned wrapping domain.ErrOverrideStore.
func (r *Resolver) AddOverride(ctx context.Context, address string, coord domain.Coordinates) error {
	key := Key(address)
	if key == "" {
		return domain.NewInputError("address is required")
	}
	if coord.Lat < -90 || coord.Lat > 90 || coord.Lon < -180 || coord.Lon > 180 {
		return domain.NewInputError("coordinate out of range: lat=%v lon=%v", coord.Lat, coord.Lon)
	}

	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.mu.Lock()
	r.overrides[key] = ports.Override{Key: key, Original: strings.TrimSpace(address), Coord: coord}
	c := coord
	r.cache[key] = &c
	snapshot := make(map[string]ports.Override, len(r.overrides))
	for k, o := range r.overrides {
		snapshot[k] = o
	}
	r.mu.Unlock()

	if r.shared != nil {
		if err := r.shared.Set(ctx, key, ports.GeocodeEntry{Resolved: true, Coord: coord}); err != nil {
			r.logger.Warn("shared geocode cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	if r.store == nil {
		return nil
	}
	if err := r.store.SaveAll(ctx, snapshot); err != nil {
		return fmt.Errorf("add override %q: %w: %w", key, domain.ErrOverrideStore, err)
	}
	return nil
}

// Overrides returns a copy of the override table.
func (r *Resolver) Overrides() map[string]ports.Override {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]ports.Override, len(r.overrides))
	for k, o := range r.overrides {
		out[k] = o
	}
	return out
}

// ClearCache drops every memoized result, resolved or not. Overrides stay.
func (r *Resolver) ClearCache(ctx context.Context) (int, error) {
	r.mu.Lock()
	n := len(r.cache)
	r.cache = make(map[string]*domain.Coordinates)
	r.mu.Unlock()

	if r.shared != nil {
		if err := r.shared.Clear(ctx); err != nil {
			return n, fmt.Errorf("clear cache: shared: %w", err)
		}
	}

	r.logger.Info("geocode cache cleared", zap.Int("entries", n))
	return n, nil
}

// CacheSize reports the number of memoized entries in the process cache.
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

