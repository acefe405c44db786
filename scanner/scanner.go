// Package scanner orders the pending stops of one car using the LOOK
// strategy: keep travelling in the current direction while stops remain
// ahead, then turn around.
package scanner

import (
	"slices"

	"elevatordispatch/types"
)

// ScanState is not safe for concurrent use. The owning car guards it.
type ScanState struct {
	ascending  floorSet
	descending floorSet
	direction  types.Direction
}

func New() *ScanState {
	return &ScanState{direction: types.Upward}
}

func (s *ScanState) Direction() types.Direction {
	return s.direction
}

func (s *ScanState) Len() int {
	return len(s.ascending) + len(s.descending)
}

func (s *ScanState) Empty() bool {
	return s.Len() == 0
}

func (s *ScanState) Contains(floor int) bool {
	return s.ascending.contains(floor) || s.descending.contains(floor)
}

func (s *ScanState) Ascending() []int {
	return slices.Clone([]int(s.ascending))
}

func (s *ScanState) Descending() []int {
	return slices.Clone([]int(s.descending))
}

// Enqueue adds req.Floor to the sweep that will serve it. It returns false
// if the floor was already pending.
func (s *ScanState) Enqueue(req types.Request, currentFloor int) bool {
	if s.Contains(req.Floor) {
		return false
	}

	var up bool
	switch {
	case req.Floor == currentFloor:
		up = s.direction == types.Upward
	case req.Origin == types.Internal:
		up = req.Floor > currentFloor
	default:
		up = req.Direction == types.Upward
	}

	if up {
		return s.ascending.insert(req.Floor)
	}
	return s.descending.insert(req.Floor)
}

// NextStop removes and returns the next floor to visit from currentFloor.
// It reverses the scan direction at most once per call.
func (s *ScanState) NextStop(currentFloor int) (int, bool) {
	if s.Empty() {
		return 0, false
	}

	if floor, ok := s.take(currentFloor); ok {
		return floor, true
	}

	if len(s.inactive()) > 0 {
		s.direction = s.direction.Opposite()
		if floor, ok := s.take(currentFloor); ok {
			return floor, true
		}
	}

	// Only stops behind the car remain in the active set: travel to where
	// that sweep starts.
	if s.direction == types.Upward {
		floor := s.ascending[0]
		s.ascending.remove(floor)
		return floor, true
	}
	floor := s.descending[len(s.descending)-1]
	s.descending.remove(floor)
	return floor, true
}

// take pops the nearest stop ahead of currentFloor in the scan direction.
func (s *ScanState) take(currentFloor int) (int, bool) {
	if s.direction == types.Upward {
		floor, ok := s.ascending.ceil(currentFloor)
		if ok {
			s.ascending.remove(floor)
		}
		return floor, ok
	}
	floor, ok := s.descending.floor(currentFloor)
	if ok {
		s.descending.remove(floor)
	}
	return floor, ok
}

func (s *ScanState) inactive() floorSet {
	if s.direction == types.Upward {
		return s.descending
	}
	return s.ascending
}
