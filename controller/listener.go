package controller

// Listener receives the events a car emits while it serves stops. Calls are
// made from the car's own goroutine without any car lock held.
type Listener interface {
	OnFloorChanged(carID, floor int)
	OnDoorOpen(carID, floor int)
	OnDoorClose(carID, floor int)
}

// ListenerFuncs adapts plain functions to a Listener. Nil fields are skipped.
type ListenerFuncs struct {
	FloorChanged func(carID, floor int)
	DoorOpen     func(carID, floor int)
	DoorClose    func(carID, floor int)
}

func (f ListenerFuncs) OnFloorChanged(carID, floor int) {
	if f.FloorChanged != nil {
		f.FloorChanged(carID, floor)
	}
}

func (f ListenerFuncs) OnDoorOpen(carID, floor int) {
	if f.DoorOpen != nil {
		f.DoorOpen(carID, floor)
	}
}

func (f ListenerFuncs) OnDoorClose(carID, floor int) {
	if f.DoorClose != nil {
		f.DoorClose(carID, floor)
	}
}
