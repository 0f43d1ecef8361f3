package calendar

import (
	"sort"
	"time"

	appLog "github.com/ldi/dayplan/internal/log"
)

// Layout assigns Column and TotalColumns so that overlapping events sit
// side by side. Events are colored greedily in (start, end, input index)
// order; TotalColumns is the width of the event's cluster of transitively
// overlapping events, not of the whole day.
//
// The returned slice keeps the input order. Entries whose end is not after
// their start are stretched to MinDuration first.
func Layout(events []CalendarEvent) []CalendarEvent {
	out := make([]CalendarEvent, len(events))
	copy(out, events)

	for i := range out {
		if !out[i].EndTime.After(out[i].StartTime) {
			appLog.Debug("layout: clamping non-positive entry",
				"entry", out[i].Entry.ID,
				"start", out[i].StartTime.Format(time.RFC3339),
				"end", out[i].EndTime.Format(time.RFC3339),
			)
			out[i].EndTime = out[i].StartTime.Add(MinDuration)
		}
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := out[order[a]], out[order[b]]
		if !ea.StartTime.Equal(eb.StartTime) {
			return ea.StartTime.Before(eb.StartTime)
		}
		if !ea.EndTime.Equal(eb.EndTime) {
			return ea.EndTime.Before(eb.EndTime)
		}
		return order[a] < order[b]
	})

	var (
		columnEnds   []time.Time
		clusterFirst int
		clusterEnd   time.Time
		widest       int
	)

	closeCluster := func(upto int) {
		for _, i := range order[clusterFirst:upto] {
			out[i].TotalColumns = widest
		}
	}

	for k, i := range order {
		ev := &out[i]

		if k > 0 && !ev.StartTime.Before(clusterEnd) {
			closeCluster(k)
			clusterFirst = k
			columnEnds = columnEnds[:0]
			widest = 0
		}

		col := -1
		for c, end := range columnEnds {
			if !end.After(ev.StartTime) {
				col = c
				break
			}
		}
		if col < 0 {
			columnEnds = append(columnEnds, ev.EndTime)
			col = len(columnEnds) - 1
		} else {
			columnEnds[col] = ev.EndTime
		}

		ev.Column = col
		if col+1 > widest {
			widest = col + 1
		}
		if k == clusterFirst || ev.EndTime.After(clusterEnd) {
			clusterEnd = ev.EndTime
		}
	}
	closeCluster(len(order))

	return out
}
