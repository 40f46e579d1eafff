package services

import (
	"context"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Segment is the road path between two points.
type Segment struct {
	Geometry       domain.Geometry
	DistanceMeters float64
}

// SegmentService answers point-to-point path lookups for drivers on the
// road. Successful answers are kept in a bounded LRU.
type SegmentService struct {
	router ports.RoadRouter
	cache  *lru.Cache[string, Segment]
	logger *zap.Logger
}

func NewSegmentService(router ports.RoadRouter, size int, logger *zap.Logger) (*SegmentService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New[string, Segment](size)
	if err != nil {
		return nil, fmt.Errorf("new segment service: %w", err)
	}
	return &SegmentService{router: router, cache: cache, logger: logger}, nil
}

func segmentKey(from, to domain.Coordinates) string {
	return fmt.Sprintf("%.6f,%.6f;%.6f,%.6f", from.Lat, from.Lon, to.Lat, to.Lon)
}

func (s *SegmentService) Segment(ctx context.Context, from, to domain.Coordinates) (_ Segment, err error) {
	defer obs.Time(ctx, s.logger, "services.route_segment")(&err)

	key := segmentKey(from, to)
	if seg, ok := s.cache.Get(key); ok {
		return seg, nil
	}

	rr, err := s.router.Route(ctx, []domain.Coordinates{from, to}, false)
	if err != nil {
		if errors.Is(err, domain.ErrRouteEngineUnavailable) {
			return Segment{}, fmt.Errorf("route segment: %w", err)
		}
		return Segment{}, fmt.Errorf("route segment: %w: %w", domain.ErrRouteEngineUnavailable, err)
	}

	seg := Segment{Geometry: rr.Geometry, DistanceMeters: domain.RoundMeters(rr.Distance)}
	s.cache.Add(key, seg)
	return seg, nil
}

// CacheLen reports the number of memoized segments.
func (s *SegmentService) CacheLen() int { return s.cache.Len() }
