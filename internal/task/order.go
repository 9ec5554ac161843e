package task

import (
	"sort"
	"strconv"
)

// SortForDay orders one day's tasks for display: tasks with a valid time
// first, ascending by minutes since midnight, then untimed tasks newest
// first (descending numeric id). Two tasks at the same minute also fall back
// to descending numeric id so the order never depends on arrival order.
// A non-numeric id counts as 0 in the tie-break.
func SortForDay(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return lessForDay(tasks[i], tasks[j])
	})
}

func lessForDay(a, b Task) bool {
	am, aok := timeToMinutes(a.Time)
	bm, bok := timeToMinutes(b.Time)
	switch {
	case aok && bok:
		if am != bm {
			return am < bm
		}
		return numericID(a.ID) > numericID(b.ID)
	case aok:
		return true
	case bok:
		return false
	default:
		return numericID(a.ID) > numericID(b.ID)
	}
}

func numericID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
