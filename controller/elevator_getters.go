package controller

import "elevatordispatch/types"

// Snapshot is a copy of a car's state at one instant.
type Snapshot struct {
	ID         int
	Floor      int
	Direction  types.Direction
	Status     types.Status
	DoorOpen   bool
	Target     int
	Ascending  []int
	Descending []int
}

func (s Snapshot) GetID() int {
	return s.ID
}

func (s Snapshot) GetFloor() int {
	return s.Floor
}

func (s Snapshot) GetDirection() types.Direction {
	return s.Direction
}

func (s Snapshot) GetStatus() types.Status {
	return s.Status
}

// HasTarget reports whether the car has committed to a stop it has not
// finished serving.
func (s Snapshot) HasTarget() bool {
	return s.Target != noTarget
}

func (c *Car) Snapshot() Snapshot {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.snapshotLocked()
}

func (c *Car) snapshotLocked() Snapshot {
	return Snapshot{
		ID:         c.id,
		Floor:      c.floor,
		Direction:  c.direction,
		Status:     c.status,
		DoorOpen:   c.doorOpen,
		Target:     c.target,
		Ascending:  c.scan.Ascending(),
		Descending: c.scan.Descending(),
	}
}

func (c *Car) GetID() int {
	return c.id
}

func (c *Car) GetFloor() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.floor
}

func (c *Car) GetDirection() types.Direction {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.direction
}

func (c *Car) GetStatus() types.Status {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.status
}

// Busy reports whether the car still has stops to serve.
func (c *Car) Busy() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.target != noTarget || !c.scan.Empty()
}
