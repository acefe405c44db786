package main

import (
	"context"
	"sync"

	"elevatordispatch/config"
	"elevatordispatch/dispatch"
	"elevatordispatch/types"

	"github.com/golang/glog"
)

// display prints what a car's floor indicator and door lamp would show.
type display struct {
	mtx       sync.Mutex
	lastFloor map[int]int
}

func newDisplay() *display {
	return &display{lastFloor: make(map[int]int)}
}

func (d *display) OnFloorChanged(carID, floor int) {
	d.mtx.Lock()
	dir := types.Upward
	if prev, ok := d.lastFloor[carID]; ok && floor < prev {
		dir = types.Downward
	}
	d.lastFloor[carID] = floor
	d.mtx.Unlock()

	glog.Infof("[car %d] floor %d, moving %v", carID, floor, dir)
}

func (d *display) OnDoorOpen(carID, floor int) {
	glog.Infof("[car %d] door opened at floor %d", carID, floor)
}

func (d *display) OnDoorClose(carID, floor int) {
	glog.Infof("[car %d] door closed at floor %d", carID, floor)
}

// runScenario raises every scripted call in order, then starts the cars and
// returns once all of them have been served.
func runScenario(ctx context.Context, building *dispatch.Building, calls []config.Call) error {
	for _, call := range calls {
		if call.IsInternal() {
			if err := building.RaiseInternal(*call.Car, call.Floor); err != nil {
				glog.Warningf("Destination %d in car %d rejected: %v", call.Floor, *call.Car, err)
			}
			continue
		}

		dir, err := types.ParseDirection(call.Direction)
		if err != nil {
			glog.Warningf("Call at floor %d skipped: %v", call.Floor, err)
			continue
		}
		carID, err := building.CallElevator(call.Floor, dir)
		if err != nil {
			glog.Warningf("Call at floor %d rejected: %v", call.Floor, err)
			continue
		}
		glog.Infof("Call at floor %d going %v assigned to car %d", call.Floor, dir, carID)
	}

	if err := building.Start(ctx); err != nil {
		return err
	}
	defer building.Stop()

	if err := building.WaitIdle(ctx); err != nil {
		return err
	}
	for _, s := range building.Status() {
		glog.Infof("[car %d] parked at floor %d", s.ID, s.Floor)
	}
	return nil
}
