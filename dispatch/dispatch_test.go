package dispatch

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"elevatordispatch/assigner"
	"elevatordispatch/controller"
	"elevatordispatch/types"
)

type doorLog struct {
	mtx    sync.Mutex
	opened map[int][]int
}

func newDoorLog() *doorLog {
	return &doorLog{opened: map[int][]int{}}
}

func (d *doorLog) listener() controller.Listener {
	return controller.ListenerFuncs{
		DoorOpen: func(car, floor int) {
			d.mtx.Lock()
			d.opened[car] = append(d.opened[car], floor)
			d.mtx.Unlock()
		},
	}
}

func (d *doorLog) of(car int) []int {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return append([]int{}, d.opened[car]...)
}

func (d *doorLog) reset() {
	d.mtx.Lock()
	d.opened = map[int][]int{}
	d.mtx.Unlock()
}

func instantBuilding(t *testing.T, floors, cars int, opts ...Option) (*Building, *doorLog) {
	t.Helper()
	doors := newDoorLog()
	opts = append([]Option{
		WithTravelDuration(0),
		WithDoorOpenDuration(0),
		WithListener(doors.listener()),
	}, opts...)

	b, err := New(floors, cars, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b, doors
}

func drain(t *testing.T, b *Building) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(10, 0); !errors.Is(err, types.ErrNoCarsAvailable) {
		t.Errorf("expected ErrNoCarsAvailable, was %v", err)
	}
	if _, err := New(0, 2); !errors.Is(err, types.ErrInvalidFloor) {
		t.Errorf("expected ErrInvalidFloor, was %v", err)
	}
}

func TestNew_InitialState(t *testing.T) {
	b, _ := instantBuilding(t, 6, 3)

	status := b.Status()
	if len(status) != 3 {
		t.Fatalf("expected 3 cars, was %d", len(status))
	}
	for i, s := range status {
		if s.ID != i || s.Floor != 0 || s.Status != types.Idle || s.DoorOpen {
			t.Errorf("car %d not idle at ground floor: %+v", i, s)
		}
	}
	for floor := range 6 {
		if _, err := b.CallPoint(floor); err != nil {
			t.Errorf("missing call point at floor %d: %v", floor, err)
		}
	}
	if _, err := b.CallPoint(6); !errors.Is(err, types.ErrInvalidFloor) {
		t.Errorf("expected ErrInvalidFloor, was %v", err)
	}
}

func TestRaiseExternal_OutOfRangeChangesNothing(t *testing.T) {
	b, _ := instantBuilding(t, 10, 2)
	before := b.Status()

	for _, floor := range []int{-1, 10} {
		if _, err := b.RaiseExternal(floor, types.Upward); !errors.Is(err, types.ErrInvalidFloor) {
			t.Errorf("floor %d: expected ErrInvalidFloor, was %v", floor, err)
		}
	}

	if after := b.Status(); !reflect.DeepEqual(before, after) {
		t.Errorf("State changed after rejected calls.\nExpected: %+v\nWas: %+v", before, after)
	}
	for id := range 2 {
		if p, _ := b.Pending(id); len(p) != 0 {
			t.Errorf("car %d has pending requests %+v", id, p)
		}
	}
	if b.Busy() {
		t.Errorf("building busy after rejected calls")
	}
}

func TestCallElevator_LookScenario(t *testing.T) {
	b, doors := instantBuilding(t, 10, 1)

	for _, c := range []struct {
		floor int
		dir   types.Direction
	}{{5, types.Upward}, {8, types.Upward}, {3, types.Downward}} {
		id, err := b.CallElevator(c.floor, c.dir)
		if err != nil || id != 0 {
			t.Fatalf("CallElevator(%d, %v) = %d, %v", c.floor, c.dir, id, err)
		}
	}
	drain(t, b)

	expected := []int{5, 8, 3}
	if result := doors.of(0); !reflect.DeepEqual(result, expected) {
		t.Errorf("Visit order not as expected.\nExpected: %+v\nWas: %+v", expected, result)
	}
	if p, _ := b.Pending(0); len(p) != 0 {
		t.Errorf("requests left after drain: %+v", p)
	}
}

func TestCallElevator_ReachesFloorOnce(t *testing.T) {
	for _, tt := range []struct{ from, to int }{{3, 7}, {7, 3}, {0, 9}, {9, 0}} {
		b, doors := instantBuilding(t, 10, 1)
		if tt.from != 0 {
			if err := b.RaiseInternal(0, tt.from); err != nil {
				t.Fatalf("RaiseInternal: %v", err)
			}
			drain(t, b)
			doors.reset()
		}

		dir := types.Upward
		if tt.to < tt.from {
			dir = types.Downward
		}
		if _, err := b.CallElevator(tt.to, dir); err != nil {
			t.Fatalf("CallElevator: %v", err)
		}
		drain(t, b)

		if opened := doors.of(0); !reflect.DeepEqual(opened, []int{tt.to}) {
			t.Errorf("%d -> %d: door opened at %+v", tt.from, tt.to, opened)
		}
		s := b.Status()[0]
		if s.Floor != tt.to || s.Status != types.Idle || s.DoorOpen {
			t.Errorf("%d -> %d: unexpected final state %+v", tt.from, tt.to, s)
		}
	}
}

func TestCallElevator_DuplicateStopsOnce(t *testing.T) {
	b, doors := instantBuilding(t, 10, 1)

	first, _ := b.CallElevator(4, types.Upward)
	second, _ := b.CallElevator(4, types.Upward)
	if first != second {
		t.Errorf("repeated call went to car %d, first to car %d", second, first)
	}

	p, _ := b.Pending(0)
	if len(p[4]) != 1 {
		t.Errorf("expected one request in the ledger, was %+v", p)
	}

	drain(t, b)

	if opened := doors.of(0); !reflect.DeepEqual(opened, []int{4}) {
		t.Errorf("door opened at %+v", opened)
	}
	if p, _ := b.Pending(0); len(p) != 0 {
		t.Errorf("requests left after drain: %+v", p)
	}
}

func TestCallElevator_LitCallKeepsItsCar(t *testing.T) {
	b, doors := instantBuilding(t, 10, 2)

	if err := b.RaiseInternal(1, 7); err != nil {
		t.Fatalf("RaiseInternal: %v", err)
	}
	drain(t, b)

	if id, _ := b.CallElevator(4, types.Upward); id != 1 {
		t.Fatalf("expected car 1 for floor 4, was %d", id)
	}

	// Car 0 ends up closer to floor 4 than car 1.
	if err := b.RaiseInternal(0, 5); err != nil {
		t.Fatalf("RaiseInternal: %v", err)
	}
	car0, _ := b.Car(0)
	if !car0.ServeNext(context.Background()) {
		t.Fatalf("car 0 did not move")
	}
	doors.reset()

	cp, _ := b.CallPoint(4)
	if !cp.Lit(types.Upward) {
		t.Fatalf("lamp not lit for the owed call")
	}
	if id, _ := cp.PressUp(); id != 1 {
		t.Errorf("lit call reassigned to car %d", id)
	}
	if p, _ := b.Pending(0); len(p) != 0 {
		t.Errorf("car 0 took over a call it does not owe: %+v", p)
	}

	drain(t, b)

	if opened := doors.of(0); len(opened) != 0 {
		t.Errorf("car 0 opened at %+v", opened)
	}
	if opened := doors.of(1); !reflect.DeepEqual(opened, []int{4}) {
		t.Errorf("car 1 opened at %+v", opened)
	}
	if cp.Lit(types.Upward) {
		t.Errorf("lamp still lit after service")
	}
}

func TestCallElevator_ConcurrentSameFloor(t *testing.T) {
	b, doors := instantBuilding(t, 10, 1)

	var start, wg sync.WaitGroup
	start.Add(1)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start.Wait()
			if _, err := b.CallElevator(6, types.Upward); err != nil {
				t.Errorf("CallElevator: %v", err)
			}
		}()
	}
	start.Done()
	wg.Wait()
	drain(t, b)

	if opened := doors.of(0); !reflect.DeepEqual(opened, []int{6}) {
		t.Errorf("door opened at %+v", opened)
	}
}

func TestCallElevator_ConcurrentSameFloorWhileRunning(t *testing.T) {
	doors := newDoorLog()
	b, err := New(10, 2,
		WithTravelDuration(5*time.Millisecond),
		WithDoorOpenDuration(5*time.Millisecond),
		WithListener(doors.listener()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer b.Stop()

	var start, wg sync.WaitGroup
	start.Add(1)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start.Wait()
			b.CallElevator(6, types.Upward)
		}()
	}
	start.Done()
	wg.Wait()

	if err := b.WaitIdle(ctx); err != nil {
		t.Fatalf("WaitIdle: %v", err)
	}

	total := len(doors.of(0)) + len(doors.of(1))
	if total != 1 {
		t.Errorf("door opened %d times: car0=%+v car1=%+v", total, doors.of(0), doors.of(1))
	}
}

func TestCallElevator_NearestCar(t *testing.T) {
	b, _ := instantBuilding(t, 10, 2)

	if err := b.RaiseInternal(1, 8); err != nil {
		t.Fatalf("RaiseInternal: %v", err)
	}
	drain(t, b)

	if id, _ := b.CallElevator(7, types.Downward); id != 1 {
		t.Errorf("expected car 1 for floor 7, was %d", id)
	}
	if id, _ := b.CallElevator(1, types.Upward); id != 0 {
		t.Errorf("expected car 0 for floor 1, was %d", id)
	}
	// Equal distance: lowest id.
	if id, _ := b.CallElevator(4, types.Upward); id != 0 {
		t.Errorf("expected car 0 for floor 4, was %d", id)
	}
}

func TestCallElevator_FixedPolicy(t *testing.T) {
	b, _ := instantBuilding(t, 10, 3, WithPolicy(assigner.Fixed{CarID: 0}))
	b.RaiseInternal(2, 9)
	drain(t, b)

	if id, _ := b.CallElevator(9, types.Downward); id != 0 {
		t.Errorf("expected fixed car 0, was %d", id)
	}
}

func TestRaiseInternal(t *testing.T) {
	b, doors := instantBuilding(t, 10, 2)

	if err := b.RaiseInternal(5, 3); !errors.Is(err, types.ErrUnknownCar) {
		t.Errorf("expected ErrUnknownCar, was %v", err)
	}
	if err := b.RaiseInternal(1, 12); !errors.Is(err, types.ErrInvalidFloor) {
		t.Errorf("expected ErrInvalidFloor, was %v", err)
	}
	if err := b.RaiseInternal(1, 0); err != nil {
		t.Errorf("same floor press returned %v", err)
	}
	if b.Busy() {
		t.Errorf("same floor press created work")
	}

	if err := b.RaiseInternal(1, 3); err != nil {
		t.Fatalf("RaiseInternal: %v", err)
	}
	p, _ := b.Pending(1)
	if len(p[3]) != 1 || p[3][0].Origin != types.Internal || p[3][0].CarID != 1 {
		t.Errorf("unexpected ledger for car 1: %+v", p)
	}
	drain(t, b)

	if opened := doors.of(1); !reflect.DeepEqual(opened, []int{3}) {
		t.Errorf("car 1 opened at %+v", opened)
	}
	if opened := doors.of(0); len(opened) != 0 {
		t.Errorf("car 0 served another car's request: %+v", opened)
	}
}

func TestOnArrival_RemovesExactlyOnce(t *testing.T) {
	b, _ := instantBuilding(t, 10, 1)
	b.CallElevator(4, types.Upward)
	b.CallElevator(4, types.Downward)

	served := b.OnArrival(0, 4)
	if len(served) != 2 {
		t.Errorf("expected 2 served requests, was %+v", served)
	}
	if again := b.OnArrival(0, 4); len(again) != 0 {
		t.Errorf("requests served twice: %+v", again)
	}
	if none := b.OnArrival(0, 7); len(none) != 0 {
		t.Errorf("unexpected requests at floor 7: %+v", none)
	}
}

func TestCallPoint_Lamps(t *testing.T) {
	b, _ := instantBuilding(t, 10, 1)
	cp, _ := b.CallPoint(5)

	if _, err := cp.PressDown(); err != nil {
		t.Fatalf("PressDown: %v", err)
	}
	if !cp.Lit(types.Downward) || cp.Lit(types.Upward) {
		t.Errorf("unexpected lamps up=%v down=%v", cp.Lit(types.Upward), cp.Lit(types.Downward))
	}

	drain(t, b)

	if cp.Lit(types.Downward) || cp.Lit(types.Upward) {
		t.Errorf("lamp still lit after service")
	}
}

func TestLifecycle(t *testing.T) {
	b, _ := instantBuilding(t, 4, 1)
	ctx := context.Background()

	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := b.Start(ctx); !errors.Is(err, errRunning) {
		t.Errorf("expected errRunning on second Start, was %v", err)
	}
	if err := b.Drain(ctx); !errors.Is(err, errRunning) {
		t.Errorf("expected errRunning on Drain while running, was %v", err)
	}
	b.Stop()
	b.Stop()

	if err := b.Drain(ctx); err != nil {
		t.Errorf("Drain after Stop: %v", err)
	}
}
