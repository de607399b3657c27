package schedule

import (
	"slices"

	"github.com/hangyu-feng/myplan-calendar/internal/model"
)

// Layout packs one day's events side by side.
//
// Events are stably sorted by start time, then each is placed in the first
// column whose last occupant has ended (greedy first fit). A column is reused
// only after its previous event ended, so overlapping events never share one.
// First fit is not guaranteed to use the minimum number of columns.
//
// Events are then grouped into clusters: a new cluster begins when an event
// starts at or after the latest end seen so far in the current cluster. Every
// member gets ClusterWidth = 1 + its cluster's highest column, so unrelated
// clusters are sized independently.
//
// The returned slice is sorted; the input is not modified.
func Layout(events []model.Event) []model.Event {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b model.Event) int {
		return a.Start - b.Start
	})

	var columnEnds []int
	for i := range out {
		placed := false
		for col, end := range columnEnds {
			if end <= out[i].Start {
				out[i].Column = col
				columnEnds[col] = out[i].End
				placed = true
				break
			}
		}
		if !placed {
			out[i].Column = len(columnEnds)
			columnEnds = append(columnEnds, out[i].End)
		}
	}

	cluster := 0
	first := 0
	maxEnd := -1
	for i := range out {
		if i > 0 && out[i].Start >= maxEnd {
			closeCluster(out[first:i])
			cluster++
			first = i
		}
		out[i].Cluster = cluster
		maxEnd = max(maxEnd, out[i].End)
	}
	if len(out) > 0 {
		closeCluster(out[first:])
	}
	return out
}

func closeCluster(members []model.Event) {
	width := 0
	for _, ev := range members {
		width = max(width, ev.Column+1)
	}
	for i := range members {
		members[i].ClusterWidth = width
	}
}
