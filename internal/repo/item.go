package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kendala/planner/internal/domain"
)

// itemColumns is the column order used by both CopyFrom and loadItems.
var itemColumns = []string{
	"trip_id", "id", "position", "day", "time_of_day",
	"activity", "item_type", "cost", "location", "notes", "image",
}

// replaceItems deletes every item of tripID and bulk-inserts items with
// position set to their slice index, so the stored order is the slice order.
// It must run inside the caller's transaction.
func replaceItems(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, items []domain.Item) ([]domain.Item, error) {
	const del = `DELETE FROM itinerary_items WHERE trip_id = @trip_id`
	if _, err := tx.Exec(ctx, del, pgx.NamedArgs{"trip_id": tripID}); err != nil {
		return nil, fmt.Errorf("delete items: %w", err)
	}

	if len(items) == 0 {
		return []domain.Item{}, nil
	}

	src := pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
		it := items[i]
		return []any{
			tripID, it.ID, i, it.Day, it.Time,
			it.Activity, string(it.Type), it.Cost, it.Location, it.Notes, it.Image,
		}, nil
	})
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"itinerary_items"}, itemColumns, src); err != nil {
		return nil, fmt.Errorf("copy items: %w", err)
	}

	out := make([]domain.Item, len(items))
	copy(out, items)
	return out, nil
}

// loadItems returns the items of tripID in stored order.
func loadItems(ctx context.Context, db db, tripID uuid.UUID) ([]domain.Item, error) {
	const q = `
		SELECT id, day, time_of_day, activity, item_type, cost, location, notes, image
		FROM itinerary_items
		WHERE trip_id = @trip_id
		ORDER BY position`

	rows, err := db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		var (
			it  domain.Item
			id  pgtype.UUID
			typ string
		)
		if err := rows.Scan(&id, &it.Day, &it.Time, &it.Activity, &typ, &it.Cost, &it.Location, &it.Notes, &it.Image); err != nil {
			return nil, fmt.Errorf("load items: scan: %w", err)
		}
		it.ID = uuid.UUID(id.Bytes)
		it.Type = domain.ItemType(typ)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load items: rows: %w", err)
	}
	return items, nil
}
