package ports

import "context"

// Contract for probing an external collaborator's availability.
type ServiceChecker interface {
	Name() string
	URL() string
	Ping(ctx context.Context) error
}
