// Package assigner decides which car answers a floor call.
package assigner

import (
	"fmt"
	"strings"

	"elevatordispatch/types"
)

// Policy picks the id of the car that serves call. cars is never empty and
// is ordered by id.
type Policy interface {
	Select(call types.Request, cars []types.CarState) int
}

// Nearest prefers a car already travelling toward the call floor in the
// call's direction; otherwise the car with the least floor distance. Ties go
// to the lowest car id.
type Nearest struct{}

func (Nearest) Select(call types.Request, cars []types.CarState) int {
	bestID := -1
	var best cost

	for _, car := range cars {
		c := costOf(car, call)
		if bestID == -1 || c.less(best) || (c == best && car.GetID() < bestID) {
			bestID = car.GetID()
			best = c
		}
	}
	return bestID
}

// Fixed sends every call to the same car.
type Fixed struct {
	CarID int
}

func (f Fixed) Select(types.Request, []types.CarState) int {
	return f.CarID
}

// ByName maps a configuration value to a policy. "fixed" yields Fixed for
// car 0; set CarID on the result to pin another car.
func ByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "nearest":
		return Nearest{}, nil
	case "fixed":
		return Fixed{}, nil
	}
	return nil, fmt.Errorf("unknown assignment policy %q", name)
}

type cost struct {
	approaching bool
	distance    int
}

func (c cost) less(o cost) bool {
	if c.approaching != o.approaching {
		return c.approaching
	}
	return c.distance < o.distance
}

func costOf(car types.CarState, call types.Request) cost {
	floor := car.GetFloor()
	distance := call.Floor - floor
	if distance < 0 {
		distance = -distance
	}

	approaching := false
	if car.GetStatus() == types.Moving && car.GetDirection() == call.Direction {
		switch call.Direction {
		case types.Upward:
			approaching = floor < call.Floor
		case types.Downward:
			approaching = floor > call.Floor
		}
	}
	return cost{approaching: approaching, distance: distance}
}
