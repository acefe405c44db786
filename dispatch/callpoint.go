package dispatch

import (
	"fmt"

	"elevatordispatch/types"
)

// CallPoint is the pair of up/down buttons on one floor.
type CallPoint struct {
	building *Building
	floor    int

	// guarded by building.mtx
	up, down bool
}

func (b *Building) CallPoint(floor int) (*CallPoint, error) {
	if floor < 0 || floor >= b.numFloors {
		return nil, fmt.Errorf("call point at floor %d: %w", floor, types.ErrInvalidFloor)
	}
	return b.callPoints[floor], nil
}

func (p *CallPoint) Floor() int {
	return p.floor
}

func (p *CallPoint) PressUp() (int, error) {
	return p.building.CallElevator(p.floor, types.Upward)
}

func (p *CallPoint) PressDown() (int, error) {
	return p.building.CallElevator(p.floor, types.Downward)
}

// Lit reports whether the lamp for dir is on, i.e. a call in that direction
// is still waiting for a car.
func (p *CallPoint) Lit(dir types.Direction) bool {
	p.building.mtx.Lock()
	defer p.building.mtx.Unlock()
	if dir == types.Upward {
		return p.up
	}
	return p.down
}

func (p *CallPoint) setLamp(dir types.Direction, on bool) {
	if dir == types.Upward {
		p.up = on
	} else {
		p.down = on
	}
}
