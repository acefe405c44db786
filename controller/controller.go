package controller

import (
	"context"
	"fmt"
	"time"

	"elevatordispatch/types"

	"github.com/golang/glog"
)

// Run serves stops until ctx is cancelled, parking the car while nothing is
// pending. Each car runs on its own goroutine.
func (c *Car) Run(ctx context.Context) {
	glog.Infof("car %d: started at floor %d", c.id, c.GetFloor())
	for ctx.Err() == nil {
		if c.ServeNext(ctx) {
			continue
		}
		select {
		case <-ctx.Done():
		case <-c.wake:
		}
	}
	glog.Infof("car %d: stopped", c.id)
}

// Enqueue hands a request to the car's scan. It never blocks on travel.
func (c *Car) Enqueue(req types.Request) Admission {
	c.mtx.Lock()
	admission := c.enqueueLocked(req)
	c.mtx.Unlock()

	if admission == Queued {
		c.signal()
	}
	return admission
}

func (c *Car) enqueueLocked(req types.Request) Admission {
	if c.doorOpen && req.Floor == c.floor {
		return ServedAtDoor
	}
	if c.target == req.Floor {
		return Absorbed
	}
	if !c.scan.Enqueue(req, c.floor) {
		return Absorbed
	}
	return Queued
}

func (c *Car) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// ServeNext takes the next stop from the scan, travels there one floor at a
// time and cycles the door. It returns false if there was nothing to serve
// or ctx was cancelled before the car arrived. Not to be mixed with Run.
func (c *Car) ServeNext(ctx context.Context) bool {
	c.mtx.Lock()
	dest, ok := c.scan.NextStop(c.floor)
	if !ok {
		c.status = types.Idle
		c.mtx.Unlock()
		return false
	}

	c.target = dest
	if dest != c.floor {
		c.status = types.Moving
		c.doorOpen = false
		if dest > c.floor {
			c.direction = types.Upward
		} else {
			c.direction = types.Downward
		}
	}
	floor, direction := c.floor, c.direction
	c.mtx.Unlock()

	if floor != dest {
		glog.V(1).Infof("car %d: departing floor %d for %d (%v)", c.id, floor, dest, direction)
	}

	for floor != dest {
		if !sleep(ctx, c.travelDuration) {
			c.abortTravel(dest)
			return false
		}
		floor = c.advance()
		glog.V(2).Infof("car %d: at floor %d", c.id, floor)
		for _, l := range c.listeners {
			l.OnFloorChanged(c.id, floor)
		}
	}

	c.openAndCloseDoor(ctx, dest)
	return true
}

func (c *Car) advance() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.floor += int(c.direction)
	return c.floor
}

// abortTravel stops the car where it is and puts the unfinished stop back
// into the scan so a later run serves it.
func (c *Car) abortTravel(dest int) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.status = types.Idle
	c.target = noTarget
	c.scan.Enqueue(types.Request{
		Floor:     dest,
		Direction: c.direction,
		Origin:    types.Internal,
		CarID:     c.id,
	}, c.floor)
	glog.Warningf("car %d: travel to floor %d interrupted at floor %d", c.id, dest, c.floor)
}

func (c *Car) openAndCloseDoor(ctx context.Context, floor int) {
	c.mtx.Lock()
	c.status = types.Idle
	c.doorOpen = true
	c.mtx.Unlock()

	glog.Infof("car %d: arrived at floor %d, door open", c.id, floor)
	if c.onArrival != nil {
		c.onArrival(c.id, floor)
	}
	for _, l := range c.listeners {
		l.OnDoorOpen(c.id, floor)
	}

	// The door closes even when ctx is cancelled during the hold.
	sleep(ctx, c.doorOpenDuration)

	c.mtx.Lock()
	c.doorOpen = false
	c.target = noTarget
	c.mtx.Unlock()

	glog.V(1).Infof("car %d: door closed at floor %d", c.id, floor)
	for _, l := range c.listeners {
		l.OnDoorClose(c.id, floor)
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// EnqueueOnBest holds the lock of every car while choose picks one from
// their current states, then enqueues req on the chosen car before any car
// can move. cars must always be passed in the same order.
func EnqueueOnBest(cars []*Car, req types.Request, choose func([]types.CarState) int) (int, Admission, error) {
	for _, c := range cars {
		c.mtx.Lock()
	}

	states := make([]types.CarState, len(cars))
	for i, c := range cars {
		states[i] = c.snapshotLocked()
	}

	id := choose(states)

	var chosen *Car
	for _, c := range cars {
		if c.id == id {
			chosen = c
			break
		}
	}

	admission := Absorbed
	if chosen != nil {
		admission = chosen.enqueueLocked(req)
	}

	for i := len(cars) - 1; i >= 0; i-- {
		cars[i].mtx.Unlock()
	}

	if chosen == nil {
		return 0, 0, fmt.Errorf("car %d chosen for %v: %w", id, req, types.ErrUnknownCar)
	}
	if admission == Queued {
		chosen.signal()
	}
	return id, admission, nil
}
