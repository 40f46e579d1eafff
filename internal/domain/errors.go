package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInput marks a request that cannot be planned as given.
	ErrInput = errors.New("invalid input")
	// ErrGeocodeUnresolved marks a single address the cascade could not resolve.
	ErrGeocodeUnresolved = errors.New("geocode unresolved")
	// ErrSolverUnavailable is terminal for the whole request.
	ErrSolverUnavailable = errors.New("solver unavailable")
	// ErrRouteEngineUnavailable is terminal for a single-vehicle request and
	// for one vehicle's sub-route in the multi-vehicle case.
	ErrRouteEngineUnavailable = errors.New("route engine unavailable")
	// ErrOverrideStore is logged and never fails the in-memory update.
	ErrOverrideStore = errors.New("override store")
)

// InputError carries a message meant for the caller.
type InputError struct {
	Msg string
}

func NewInputError(format string, args ...any) *InputError {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

func (e *InputError) Error() string { return e.Msg }

func (e *InputError) Unwrap() error { return ErrInput }
