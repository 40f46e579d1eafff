package services

import (
	"context"
	"route-planner-service/internal/ports"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultProbeTimeout = 5 * time.Second

type ServiceState struct {
	Name string
	URL  string
	OK   bool
}

// StatusChecker probes external collaborators concurrently.
type StatusChecker struct {
	checkers []ports.ServiceChecker
	timeout  time.Duration
	logger   *zap.Logger
}

func NewStatusChecker(timeout time.Duration, logger *zap.Logger, checkers ...ports.ServiceChecker) *StatusChecker {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusChecker{checkers: checkers, timeout: timeout, logger: logger}
}

// Check returns one state per checker in registration order and whether all
// of them answered.
func (s *StatusChecker) Check(ctx context.Context) ([]ServiceState, bool) {
	states := make([]ServiceState, len(s.checkers))
	var wg sync.WaitGroup

	for i, c := range s.checkers {
		wg.Add(1)
		go func(i int, c ports.ServiceChecker) {
			defer wg.Done()

			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			err := c.Ping(pctx)
			if err != nil {
				s.logger.Warn("service probe failed", zap.String("service", c.Name()), zap.Error(err))
			}
			states[i] = ServiceState{Name: c.Name(), URL: c.URL(), OK: err == nil}
		}(i, c)
	}
	wg.Wait()

	allOK := true
	for _, st := range states {
		allOK = allOK && st.OK
	}
	return states, allOK
}
