// Package dispatch routes calls to the cars of one building and keeps the
// ledger of requests that are waiting to be served.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"elevatordispatch/assigner"
	"elevatordispatch/controller"
	"elevatordispatch/request"
	"elevatordispatch/types"

	"github.com/golang/glog"
	"github.com/tiendc/go-deepcopy"
)

const idlePollInterval = 20 * time.Millisecond

var errRunning = errors.New("building is running")

type Building struct {
	numFloors  int
	cars       []*controller.Car
	callPoints []*CallPoint
	policy     assigner.Policy

	// mtx guards pending and the call point lamps. It is always taken
	// before any car lock.
	mtx     sync.Mutex
	pending map[int]map[int][]types.Request

	runMtx  sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type settings struct {
	policy    assigner.Policy
	carOpts   []controller.Option
	listeners []controller.Listener
}

type Option func(*settings)

func WithPolicy(p assigner.Policy) Option {
	return func(s *settings) { s.policy = p }
}

func WithTravelDuration(d time.Duration) Option {
	return func(s *settings) { s.carOpts = append(s.carOpts, controller.WithTravelDuration(d)) }
}

func WithDoorOpenDuration(d time.Duration) Option {
	return func(s *settings) { s.carOpts = append(s.carOpts, controller.WithDoorOpenDuration(d)) }
}

// WithListener subscribes l to the events of every car.
func WithListener(l controller.Listener) Option {
	return func(s *settings) { s.listeners = append(s.listeners, l) }
}

// New creates a building with numCars idle cars at the ground floor and one
// call point per floor. Car ids are 0..numCars-1.
func New(numFloors, numCars int, opts ...Option) (*Building, error) {
	if numCars < 1 {
		return nil, fmt.Errorf("building with %d cars: %w", numCars, types.ErrNoCarsAvailable)
	}
	if numFloors < 1 {
		return nil, fmt.Errorf("building with %d floors: %w", numFloors, types.ErrInvalidFloor)
	}

	s := settings{policy: assigner.Nearest{}}
	for _, opt := range opts {
		opt(&s)
	}

	b := &Building{
		numFloors: numFloors,
		policy:    s.policy,
		pending:   make(map[int]map[int][]types.Request, numCars),
	}

	carOpts := append([]controller.Option{}, s.carOpts...)
	carOpts = append(carOpts, controller.WithArrivalHandler(func(carID, floor int) {
		b.OnArrival(carID, floor)
	}))
	for _, l := range s.listeners {
		carOpts = append(carOpts, controller.WithListener(l))
	}

	for id := range numCars {
		b.cars = append(b.cars, controller.NewCar(id, carOpts...))
		b.pending[id] = make(map[int][]types.Request)
	}
	for floor := range numFloors {
		b.callPoints = append(b.callPoints, &CallPoint{building: b, floor: floor})
	}

	glog.Infof("dispatch: building with %d floors and %d cars", numFloors, numCars)
	return b, nil
}

func (b *Building) NumFloors() int {
	return b.numFloors
}

func (b *Building) Cars() []*controller.Car {
	return append([]*controller.Car(nil), b.cars...)
}

func (b *Building) Car(id int) (*controller.Car, error) {
	if id < 0 || id >= len(b.cars) {
		return nil, fmt.Errorf("car %d: %w", id, types.ErrUnknownCar)
	}
	return b.cars[id], nil
}

// CallElevator assigns a floor call to exactly one car and returns its id.
func (b *Building) CallElevator(floor int, dir types.Direction) (int, error) {
	req, err := request.NewExternal(b.numFloors, floor, dir)
	if err != nil {
		glog.Warningf("dispatch: rejected call: %v", err)
		return 0, err
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	if id, ok := b.ownerLocked(floor, dir); ok {
		glog.V(1).Infof("dispatch: %v already owed by car %d", req, id)
		return id, nil
	}

	id, admission, err := controller.EnqueueOnBest(b.cars, req, func(states []types.CarState) int {
		return b.policy.Select(req, states)
	})
	if err != nil {
		return 0, err
	}
	b.recordLocked(id, req, admission)
	return id, nil
}

// RaiseExternal is the floor call point entry.
func (b *Building) RaiseExternal(floor int, dir types.Direction) (int, error) {
	return b.CallElevator(floor, dir)
}

// RaiseInternal forwards a destination pressed inside carID to that car.
// Pressing the floor the car is at does nothing.
func (b *Building) RaiseInternal(carID, floor int) error {
	car, err := b.Car(carID)
	if err != nil {
		glog.Warningf("dispatch: rejected destination: %v", err)
		return err
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	req, ok, err := request.NewInternal(b.numFloors, carID, car.GetFloor(), floor)
	if err != nil {
		glog.Warningf("dispatch: rejected destination for car %d: %v", carID, err)
		return err
	}
	if !ok {
		return nil
	}

	b.recordLocked(carID, req, car.Enqueue(req))
	return nil
}

// ownerLocked returns the car that still owes a floor call at floor going
// dir. A lit call is never handed to a second car.
func (b *Building) ownerLocked(floor int, dir types.Direction) (int, bool) {
	for id := range b.cars {
		for _, req := range b.pending[id][floor] {
			if req.Origin == types.External && req.Direction == dir {
				return id, true
			}
		}
	}
	return 0, false
}

func (b *Building) recordLocked(carID int, req types.Request, admission controller.Admission) {
	glog.Infof("dispatch: %v -> car %d (%v)", req, carID, admission)
	if admission == controller.ServedAtDoor {
		return
	}

	b.pending[carID][req.Floor] = append(b.pending[carID][req.Floor], req)
	if req.Origin == types.External {
		b.callPoints[req.Floor].setLamp(req.Direction, true)
	}
}

// OnArrival is called when carID opens its door at floor. Each pending
// request is returned by exactly one call.
func (b *Building) OnArrival(carID, floor int) []types.Request {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	served := b.pending[carID][floor]
	if len(served) == 0 {
		return nil
	}
	delete(b.pending[carID], floor)

	for _, req := range served {
		glog.V(1).Infof("dispatch: car %d served %v (%v)", carID, req, req.ID)
	}
	b.refreshLampsLocked(floor)
	return served
}

// refreshLampsLocked keeps a lamp lit only while some car still owes a call
// in that direction at floor.
func (b *Building) refreshLampsLocked(floor int) {
	up, down := false, false
	for _, byFloor := range b.pending {
		for _, req := range byFloor[floor] {
			if req.Origin != types.External {
				continue
			}
			if req.Direction == types.Upward {
				up = true
			} else {
				down = true
			}
		}
	}
	b.callPoints[floor].setLamp(types.Upward, up)
	b.callPoints[floor].setLamp(types.Downward, down)
}

// Pending returns a copy of the requests carID still has to serve, keyed
// by floor.
func (b *Building) Pending(carID int) (map[int][]types.Request, error) {
	if _, err := b.Car(carID); err != nil {
		return nil, err
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	var out map[int][]types.Request
	if err := deepcopy.Copy(&out, b.pending[carID]); err != nil {
		return nil, fmt.Errorf("copy pending requests of car %d: %w", carID, err)
	}
	return out, nil
}

func (b *Building) Status() []controller.Snapshot {
	status := make([]controller.Snapshot, len(b.cars))
	for i, c := range b.cars {
		status[i] = c.Snapshot()
	}
	return status
}

// Busy reports whether any car has stops left.
func (b *Building) Busy() bool {
	for _, c := range b.cars {
		if c.Busy() {
			return true
		}
	}
	return false
}
