package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/geocoding"
	"route-planner-service/internal/platform/obs"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	originLabel = "🏠 Origen"
	stopMark    = "📍"
	failedMark  = "⚠️"
	labelRunes  = 30
)

// AddressResolver is the geocoding surface the planner needs.
type AddressResolver interface {
	Resolve(ctx context.Context, address string) (domain.Coordinates, bool, error)
	ResolveBatch(ctx context.Context, addresses []string) ([]geocoding.Result, error)
}

type PlannerConfig struct {
	StartAddress string
	MaxStops     int
	MaxVehicles  int
	// TownCenter is where stops that failed geocoding are placed.
	TownCenter domain.Coordinates
	// DetailConcurrency bounds parallel route-detail calls; defaults to the
	// vehicle count.
	DetailConcurrency int
}

// PlanRequest is one planning run. Groups, when non-nil, is pre-grouped
// input and bypasses duplicate merging; otherwise Rows are grouped.
type PlanRequest struct {
	Rows         []domain.RawDeliveryRow
	Groups       []domain.AddressGroup
	StartAddress string
	VehicleCount int
}

// Planner runs the full pipeline: grouping, geocoding, optimization and
// route detail assembly.
type Planner struct {
	resolver  AddressResolver
	optimizer *Optimizer
	assembler *Assembler
	cfg       PlannerConfig
	logger    *zap.Logger
}

func NewPlanner(
	resolver AddressResolver,
	optimizer *Optimizer,
	assembler *Assembler,
	cfg PlannerConfig,
	logger *zap.Logger,
) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		resolver:  resolver,
		optimizer: optimizer,
		assembler: assembler,
		cfg:       cfg,
		logger:    logger,
	}
}

type detailResult struct {
	idx    int
	detail *RouteDetail
	err    error
}

// Plan builds one route per vehicle. A single-vehicle plan fails as a whole
// when its route detail fails; with several vehicles only the failing
// vehicle is dropped.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (_ *domain.RoutePlan, err error) {
	defer obs.Time(ctx, p.logger, "services.plan_routes")(&err)
	start := time.Now()

	groups, err := p.prepareGroups(req)
	if err != nil {
		return nil, err
	}

	vehicles := req.VehicleCount
	if vehicles == 0 {
		vehicles = 1
	}
	if vehicles < 1 || (p.cfg.MaxVehicles > 0 && vehicles > p.cfg.MaxVehicles) {
		return nil, domain.NewInputError("vehicle count must be between 1 and %d, got %d", p.cfg.MaxVehicles, vehicles)
	}

	originAddr := strings.TrimSpace(req.StartAddress)
	if originAddr == "" {
		originAddr = p.cfg.StartAddress
	}
	origin, ok, err := p.resolver.Resolve(ctx, originAddr)
	if err != nil {
		return nil, fmt.Errorf("plan routes: resolve origin: %w", err)
	}
	if !ok {
		return nil, domain.NewInputError("could not geocode origin: %s", originAddr)
	}

	resolved, failed, err := p.geocodeGroups(ctx, groups)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, domain.NewInputError("no address could be geocoded")
	}
	if len(failed) > 0 {
		p.logger.Info("addresses without coordinates",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Int("failed", len(failed)),
			zap.Int("resolved", len(resolved)),
		)
	}

	stops := make([]domain.Coordinates, len(resolved))
	for i, g := range resolved {
		stops[i] = *g.Coordinates
	}

	opt, err := p.optimizer.Optimize(ctx, origin, stops, vehicles)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	details, err := p.assembleAll(ctx, origin, stops, opt.Assignments, vehicles > 1)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	plan := &domain.RoutePlan{
		Failed:        failed,
		Multi:         vehicles > 1,
		PlannedRoutes: len(opt.Assignments),
	}
	for i, a := range opt.Assignments {
		if details[i] == nil {
			continue
		}
		plan.Routes = append(plan.Routes, buildRoute(i, originAddr, origin, resolved, a, details[i]))
	}

	if len(failed) > 0 {
		appendFailedStops(plan.Routes[0], failed, p.cfg.TownCenter)
	}

	elapsed := math.Round(float64(time.Since(start).Microseconds())/100) / 10
	for _, r := range plan.Routes {
		r.ComputingTimeMs = elapsed
	}

	return plan, nil
}

// prepareGroups trims addresses, drops empty ones and enforces batch limits.
func (p *Planner) prepareGroups(req PlanRequest) ([]domain.AddressGroup, error) {
	if req.Groups != nil {
		groups := make([]domain.AddressGroup, 0, len(req.Groups))
		for _, g := range req.Groups {
			g.Address = strings.TrimSpace(g.Address)
			if g.Address == "" {
				continue
			}
			if g.PackageCount < 0 {
				return nil, domain.NewInputError("negative package count for %q", g.Address)
			}
			groups = append(groups, g)
		}
		if err := p.checkSize(len(groups)); err != nil {
			return nil, err
		}
		return groups, nil
	}

	rows := make([]domain.RawDeliveryRow, 0, len(req.Rows))
	for _, r := range req.Rows {
		r.Address = strings.TrimSpace(r.Address)
		if r.Address == "" {
			continue
		}
		r.ClientName = strings.TrimSpace(r.ClientName)
		rows = append(rows, r)
	}
	if err := p.checkSize(len(rows)); err != nil {
		return nil, err
	}

	groups := GroupAddresses(rows)
	if len(groups) != len(rows) {
		p.logger.Debug("duplicate addresses merged",
			zap.Int("rows", len(rows)),
			zap.Int("groups", len(groups)),
		)
	}
	return groups, nil
}

func (p *Planner) checkSize(n int) error {
	if n == 0 {
		return domain.NewInputError("address list is empty")
	}
	if p.cfg.MaxStops > 0 && n > p.cfg.MaxStops {
		return domain.NewInputError("at most %d stops allowed, got %d", p.cfg.MaxStops, n)
	}
	return nil
}

// geocodeGroups resolves every group without coordinates and splits the
// groups into resolved and failed, both in input order.
func (p *Planner) geocodeGroups(ctx context.Context, groups []domain.AddressGroup) (resolved, failed []domain.AddressGroup, err error) {
	pending := make([]int, 0, len(groups))
	addresses := make([]string, 0, len(groups))
	for i, g := range groups {
		if g.Coordinates == nil {
			pending = append(pending, i)
			addresses = append(addresses, g.Address)
		}
	}

	if len(addresses) > 0 {
		results, err := p.resolver.ResolveBatch(ctx, addresses)
		if err != nil {
			return nil, nil, fmt.Errorf("plan routes: geocode: %w", err)
		}
		for j, res := range results {
			if !res.Resolved {
				continue
			}
			c := res.Coord
			groups[pending[j]].Coordinates = &c
		}
	}

	for _, g := range groups {
		if g.Coordinates == nil {
			failed = append(failed, g)
			continue
		}
		resolved = append(resolved, g)
	}
	return resolved, failed, nil
}

// assembleAll fetches one route detail per assignment. In single mode the
// first failure is returned; in multi mode failures leave a nil detail and
// an error is returned only when every vehicle failed.
func (p *Planner) assembleAll(
	ctx context.Context,
	origin domain.Coordinates,
	stops []domain.Coordinates,
	assignments []Assignment,
	multi bool,
) ([]*RouteDetail, error) {
	details := make([]*RouteDetail, len(assignments))

	if !multi {
		d, err := p.assembler.Assemble(ctx, orderedCoords(origin, stops, assignments[0]))
		if err != nil {
			return nil, err
		}
		details[0] = d
		return details, nil
	}

	limit := p.cfg.DetailConcurrency
	if limit < 1 {
		limit = len(assignments)
	}

	sem := make(chan struct{}, limit)
	resultsCh := make(chan detailResult, len(assignments))
	var wg sync.WaitGroup

	for i, a := range assignments {
		wg.Add(1)
		go func(idx int, a Assignment) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			d, err := p.assembler.Assemble(ctx, orderedCoords(origin, stops, a))
			resultsCh <- detailResult{idx: idx, detail: d, err: err}
		}(i, a)
	}

	wg.Wait()
	close(resultsCh)

	var firstErr error
	for res := range resultsCh {
		if res.err != nil {
			p.logger.Warn("vehicle route dropped",
				zap.String("req_id", obs.RequestID(ctx)),
				zap.Int("route_index", res.idx),
				zap.Error(res.err),
			)
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		details[res.idx] = res.detail
	}

	for _, d := range details {
		if d != nil {
			return details, nil
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if firstErr == nil {
		firstErr = errors.New("no route detail produced")
	}
	return nil, firstErr
}

func orderedCoords(origin domain.Coordinates, stops []domain.Coordinates, a Assignment) []domain.Coordinates {
	out := make([]domain.Coordinates, 0, len(a.Order)+1)
	out = append(out, origin)
	for _, idx := range a.Order {
		out = append(out, stops[idx])
	}
	return out
}

func buildRoute(
	idx int,
	originAddr string,
	origin domain.Coordinates,
	groups []domain.AddressGroup,
	a Assignment,
	detail *RouteDetail,
) *domain.Route {
	route := &domain.Route{
		VehicleIndex:        idx,
		Stops:               make([]domain.Stop, 0, len(a.Order)+1),
		TotalDistanceMeters: detail.DistanceMeters,
		Geometry:            detail.Geometry,
		Steps:               detail.Steps,
	}

	route.Stops = append(route.Stops, domain.Stop{
		Order:       0,
		Address:     originAddr,
		Label:       originLabel,
		ClientNames: []string{},
		Type:        domain.StopTypeOrigin,
		Coordinates: origin,
	})

	for seq, gi := range a.Order {
		g := groups[gi]
		route.Stops = append(route.Stops, domain.Stop{
			Order:          seq + 1,
			Address:        g.Address,
			Label:          stopLabel(stopMark, g),
			ClientName:     g.PrimaryName(),
			ClientNames:    g.NamedClients(),
			Type:           domain.StopTypeStop,
			Coordinates:    *g.Coordinates,
			DistanceMeters: domain.RoundMeters(a.ArrivalMeters[seq]),
			PackageCount:   g.PackageCount,
		})
		route.TotalPackages += g.PackageCount
	}

	return route
}

// appendFailedStops places every ungeocoded group at the town center after
// the route's optimized stops.
func appendFailedStops(route *domain.Route, failed []domain.AddressGroup, center domain.Coordinates) {
	for _, g := range failed {
		route.Stops = append(route.Stops, domain.Stop{
			Order:         len(route.Stops),
			Address:       g.Address,
			Label:         stopLabel(failedMark, g),
			ClientName:    g.PrimaryName(),
			ClientNames:   g.NamedClients(),
			Type:          domain.StopTypeStop,
			Coordinates:   center,
			PackageCount:  g.PackageCount,
			GeocodeFailed: true,
		})
		route.TotalPackages += g.PackageCount
	}
}

// stopLabel names a stop by its primary client, or by its address cut to
// labelRunes runes.
func stopLabel(mark string, g domain.AddressGroup) string {
	if name := g.PrimaryName(); name != "" {
		return mark + " " + name
	}
	return mark + " " + truncate(g.Address, labelRunes)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
