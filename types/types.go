package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Direction int

const (
	Upward   Direction = 1
	Downward Direction = -1
)

func (d Direction) Opposite() Direction {
	if d == Upward {
		return Downward
	}
	return Upward
}

func (d Direction) String() string {
	switch d {
	case Upward:
		return "up"
	case Downward:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection accepts "up"/"down" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "upward", "upwards":
		return Upward, nil
	case "down", "downward", "downwards":
		return Downward, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

type Origin int

const (
	External Origin = iota
	Internal
)

func (o Origin) String() string {
	if o == Internal {
		return "internal"
	}
	return "external"
}

type Status int

const (
	Idle Status = iota
	Moving
)

func (s Status) String() string {
	if s == Moving {
		return "moving"
	}
	return "idle"
}

// Request is a single call for service. CarID is only meaningful for
// internal requests.
type Request struct {
	ID        uuid.UUID
	Floor     int
	Direction Direction
	Origin    Origin
	CarID     int
}

func (r Request) String() string {
	if r.Origin == Internal {
		return fmt.Sprintf("internal car=%d floor=%d %v", r.CarID, r.Floor, r.Direction)
	}
	return fmt.Sprintf("external floor=%d %v", r.Floor, r.Direction)
}

// CarState is the read-only view of a car used when choosing which car
// serves a call.
type CarState interface {
	GetID() int
	GetFloor() int
	GetDirection() Direction
	GetStatus() Status
}
