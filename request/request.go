// Package request turns button presses into validated, immutable requests.
package request

import (
	"fmt"

	"elevatordispatch/types"

	"github.com/google/uuid"
)

func validateFloor(numFloors, floor int) error {
	if floor < 0 || floor >= numFloors {
		return fmt.Errorf("floor %d outside [0, %d): %w", floor, numFloors, types.ErrInvalidFloor)
	}
	return nil
}

// NewExternal builds a floor call. The direction is the one the rider asked for.
func NewExternal(numFloors, floor int, dir types.Direction) (types.Request, error) {
	if err := validateFloor(numFloors, floor); err != nil {
		return types.Request{}, err
	}
	return types.Request{
		ID:        uuid.New(),
		Floor:     floor,
		Direction: dir,
		Origin:    types.External,
	}, nil
}

// NewInternal builds a destination request from inside car carID, which is
// currently at carFloor. ok is false when the rider pressed the floor the
// car is already at.
func NewInternal(numFloors, carID, carFloor, floor int) (req types.Request, ok bool, err error) {
	if err := validateFloor(numFloors, floor); err != nil {
		return types.Request{}, false, err
	}
	if floor == carFloor {
		return types.Request{}, false, nil
	}

	dir := types.Upward
	if floor < carFloor {
		dir = types.Downward
	}
	return types.Request{
		ID:        uuid.New(),
		Floor:     floor,
		Direction: dir,
		Origin:    types.Internal,
		CarID:     carID,
	}, true, nil
}
