package span

import "sort"

// Resolve returns the key of the latest entry at or before now.
// Before the first entry of the day it wraps around to the earliest entry,
// which keeps the overnight level instead of failing.
func Resolve(t *Table, now ClockTime) (ClockTime, error) {
	if t.Len() == 0 {
		return 0, ErrEmptyTable
	}

	now = now.normalize()

	// first key strictly after now
	i := sort.Search(len(t.spans), func(i int) bool { return t.spans[i].At > now })
	if i > 0 {
		return t.spans[i-1].At, nil
	}
	return t.spans[0].At, nil
}
