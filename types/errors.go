package types

import "errors"

var (
	ErrInvalidFloor    = errors.New("invalid floor")
	ErrNoCarsAvailable = errors.New("no cars available")
	ErrUnknownCar      = errors.New("unknown car")
)
