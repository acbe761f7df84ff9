package planner

import (
	"time"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// CloneTrip returns a deep copy of the trip: no mutable structure is shared
// between the clone and the original. History snapshots and store reads rely
// on this to stay free of aliasing bugs.
func CloneTrip(t *types.Trip) *types.Trip {
	if t == nil {
		return nil
	}
	out := *t
	out.StartDate = cloneTime(t.StartDate)
	out.EndDate = cloneTime(t.EndDate)
	out.Budget = cloneFloat(t.Budget)
	if t.Interests != nil {
		out.Interests = append([]string(nil), t.Interests...)
	}
	out.Days = CloneDays(t.Days)
	return &out
}

// CloneDays deep-copies a day slice, items included.
func CloneDays(days []types.Day) []types.Day {
	if days == nil {
		return nil
	}
	out := make([]types.Day, len(days))
	for i, d := range days {
		out[i] = d
		out[i].Items = cloneItems(d.Items)
	}
	return out
}

func cloneItems(items []types.ItineraryItem) []types.ItineraryItem {
	if items == nil {
		return nil
	}
	out := make([]types.ItineraryItem, len(items))
	for i, it := range items {
		out[i] = it
		out[i].Cost = cloneFloat(it.Cost)
		if it.Location != nil {
			loc := *it.Location
			out[i].Location = &loc
		}
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
