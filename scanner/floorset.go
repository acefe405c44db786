package scanner

import "slices"

// floorSet is a sorted set of floors.
type floorSet []int

func (s *floorSet) insert(floor int) bool {
	i, found := slices.BinarySearch(*s, floor)
	if found {
		return false
	}
	*s = slices.Insert(*s, i, floor)
	return true
}

func (s *floorSet) remove(floor int) {
	if i, found := slices.BinarySearch(*s, floor); found {
		*s = slices.Delete(*s, i, i+1)
	}
}

func (s floorSet) contains(floor int) bool {
	_, found := slices.BinarySearch(s, floor)
	return found
}

// ceil returns the smallest member >= floor.
func (s floorSet) ceil(floor int) (int, bool) {
	i, _ := slices.BinarySearch(s, floor)
	if i == len(s) {
		return 0, false
	}
	return s[i], true
}

// floor returns the largest member <= f.
func (s floorSet) floor(f int) (int, bool) {
	i, found := slices.BinarySearch(s, f)
	if found {
		return s[i], true
	}
	if i == 0 {
		return 0, false
	}
	return s[i-1], true
}
