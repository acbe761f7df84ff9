package planner

import (
	"context"
	"log/slog"

	"github.com/FACorreiaa/go-trip-planner/internal/geocode"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// EnrichLocations geocodes every item in the store that has no location yet
// and writes the results back in place. Enrichment is best effort: a failed
// lookup leaves the item untouched, and none of the writes count as user
// edits, so they neither highlight items nor enter the undo history. Returns
// the number of items enriched.
func EnrichLocations(ctx context.Context, store *Store, geo geocode.Service, logger *slog.Logger) int {
	trip := store.Trip()
	if trip == nil {
		return 0
	}

	enriched := 0
	for dayIndex, day := range trip.Days {
		for _, item := range day.Items {
			if item.Location != nil {
				continue
			}
			if ctx.Err() != nil {
				return enriched
			}

			query := item.Title
			if trip.Destination != "" {
				query += ", " + trip.Destination
			}
			point, err := geo.Geocode(ctx, query, dayProximity(day.Items))
			if err != nil {
				logger.DebugContext(ctx, "Geocoding skipped for item",
					slog.String("title", item.Title), slog.Any("error", err))
				continue
			}

			item.Location = point
			store.ReplaceItemInDay(dayIndex, item)
			enriched++
		}
	}
	return enriched
}

// dayProximity picks a bias point for lookups: the first already-located item
// of the same day, if any.
func dayProximity(items []types.ItineraryItem) *types.GeoPoint {
	for _, it := range items {
		if it.Location != nil {
			return it.Location
		}
	}
	return nil
}
