package services

import (
	"context"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"strings"

	"go.uber.org/zap"
)

// SheetRow is one delivery-sheet line as exported by the depot.
type SheetRow struct {
	Client  string
	Address string
	City    string
}

// Validation splits the distinct delivery points of a sheet into geocoded
// and failed groups, both in first-seen order.
type Validation struct {
	Geocoded        []domain.AddressGroup
	Failed          []domain.AddressGroup
	TotalPackages   int
	UniqueAddresses int
}

// Validator groups sheet rows and geocodes each distinct address once, so
// the result can be planned later without geocoding again.
type Validator struct {
	resolver AddressResolver
	logger   *zap.Logger
}

func NewValidator(resolver AddressResolver, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{resolver: resolver, logger: logger}
}

func (v *Validator) Validate(ctx context.Context, sheet []SheetRow) (_ *Validation, err error) {
	defer obs.Time(ctx, v.logger, "services.validate_rows")(&err)

	if len(sheet) == 0 {
		return nil, domain.NewInputError("no rows to validate")
	}

	rows := make([]domain.RawDeliveryRow, 0, len(sheet))
	for i, r := range sheet {
		if strings.TrimSpace(r.Address) == "" {
			return nil, domain.NewInputError("row %d has an empty address", i+1)
		}
		rows = append(rows, domain.RawDeliveryRow{
			ClientName: strings.TrimSpace(r.Client),
			Address:    FullAddress(r.Address, r.City),
		})
	}

	groups := GroupAddresses(rows)

	addresses := make([]string, len(groups))
	for i, g := range groups {
		addresses[i] = g.Address
	}

	results, err := v.resolver.ResolveBatch(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("validate rows: %w", err)
	}

	out := &Validation{
		TotalPackages:   len(rows),
		UniqueAddresses: len(groups),
	}
	for i, g := range groups {
		if !results[i].Resolved {
			out.Failed = append(out.Failed, g)
			continue
		}
		c := results[i].Coord
		g.Coordinates = &c
		out.Geocoded = append(out.Geocoded, g)
	}

	v.logger.Info("sheet validated",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.Int("rows", out.TotalPackages),
		zap.Int("unique", out.UniqueAddresses),
		zap.Int("failed", len(out.Failed)),
	)
	return out, nil
}
