package controller

import (
	"sync"
	"time"

	"elevatordispatch/scanner"
	"elevatordispatch/types"
)

const (
	defaultTravelDuration   = 2 * time.Second
	defaultDoorOpenDuration = 3 * time.Second
	noTarget                = -1
)

// Admission tells the caller what happened to an enqueued request.
type Admission int

const (
	// Queued means the floor was added to the car's scan.
	Queued Admission = iota
	// Absorbed means the floor was already pending or is the stop the car
	// is heading to; the upcoming stop serves it.
	Absorbed
	// ServedAtDoor means the car is standing at the floor with its door
	// open.
	ServedAtDoor
)

func (a Admission) String() string {
	switch a {
	case Queued:
		return "queued"
	case Absorbed:
		return "absorbed"
	case ServedAtDoor:
		return "served at door"
	}
	return "unknown"
}

// ArrivalHandler is called when a car opens its door at a served floor.
type ArrivalHandler func(carID, floor int)

type Car struct {
	id               int
	travelDuration   time.Duration
	doorOpenDuration time.Duration
	listeners        []Listener
	onArrival        ArrivalHandler

	mtx       sync.Mutex
	status    types.Status
	floor     int
	direction types.Direction
	doorOpen  bool
	target    int
	scan      *scanner.ScanState

	wake chan struct{}
}

type Option func(*Car)

// WithTravelDuration sets the time it takes to move one floor.
func WithTravelDuration(d time.Duration) Option {
	return func(c *Car) { c.travelDuration = d }
}

// WithDoorOpenDuration sets how long the door is held open at a stop.
func WithDoorOpenDuration(d time.Duration) Option {
	return func(c *Car) { c.doorOpenDuration = d }
}

func WithListener(l Listener) Option {
	return func(c *Car) { c.listeners = append(c.listeners, l) }
}

func WithArrivalHandler(h ArrivalHandler) Option {
	return func(c *Car) { c.onArrival = h }
}

// NewCar returns an idle car at the ground floor with its door closed.
func NewCar(id int, opts ...Option) *Car {
	c := &Car{
		id:               id,
		travelDuration:   defaultTravelDuration,
		doorOpenDuration: defaultDoorOpenDuration,
		status:           types.Idle,
		floor:            0,
		direction:        types.Upward,
		target:           noTarget,
		scan:             scanner.New(),
		wake:             make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
