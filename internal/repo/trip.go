// Package repo contains all database access logic for the trip-storage API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kendala/planner/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test; Begin on a
// pgx.Tx opens a savepoint, so saves nest cleanly inside it.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for trips and their itineraries.
// Every method is scoped to an owner: a trip owned by someone else behaves
// exactly like a trip that does not exist.
type TripRepo interface {
	// Create inserts a new trip with a DB-generated id, then its items, and
	// returns the persisted record.
	Create(ctx context.Context, owner uuid.UUID, trip domain.Trip) (domain.Trip, error)

	// Upsert writes trip under its existing id, inserting it if absent, and
	// replaces its items. Returns domain.ErrNotFound if the id belongs to a
	// different owner.
	Upsert(ctx context.Context, owner uuid.UUID, trip domain.Trip) (domain.Trip, error)

	// GetByID returns a fully hydrated trip.
	// Returns domain.ErrNotFound if no such trip exists for owner.
	GetByID(ctx context.Context, owner, id uuid.UUID) (domain.Trip, error)

	// ListPaged returns one page of trip summaries, most recently updated
	// first, plus the owner's total trip count.
	ListPaged(ctx context.Context, owner uuid.UUID, p domain.PaginationParams) ([]domain.TripSummary, int64, error)

	// ListAll returns every trip of owner, hydrated, most recently updated first.
	ListAll(ctx context.Context, owner uuid.UUID) ([]domain.Trip, error)

	// Delete removes a trip and its items. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, title, destination, day_count, created_at, updated_at`

// Create inserts a new trip row and its items in one transaction.
func (r *pgTripRepo) Create(ctx context.Context, owner uuid.UUID, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (owner_id, title, destination, day_count)
		VALUES (@owner_id, @title, @destination, @day_count)
		RETURNING ` + tripColumns

	var result domain.Trip
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		result, err = scanTrip(tx.QueryRow(ctx, q, tripArgs(owner, trip)))
		if err != nil {
			return err
		}
		result.Itinerary, err = replaceItems(ctx, tx, result.ID, trip.Itinerary)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// Upsert inserts or overwrites the trip row and replaces its items.
// The ON CONFLICT guard only updates rows owned by owner; a foreign row
// yields no RETURNING row, which scanTrip reports as domain.ErrNotFound.
func (r *pgTripRepo) Upsert(ctx context.Context, owner uuid.UUID, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (id, owner_id, title, destination, day_count)
		VALUES (@id, @owner_id, @title, @destination, @day_count)
		ON CONFLICT (id) DO UPDATE
		SET title       = EXCLUDED.title,
		    destination = EXCLUDED.destination,
		    day_count   = EXCLUDED.day_count,
		    updated_at  = now()
		WHERE trips.owner_id = EXCLUDED.owner_id
		RETURNING ` + tripColumns

	args := tripArgs(owner, trip)
	args["id"] = trip.ID

	var result domain.Trip
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		result, err = scanTrip(tx.QueryRow(ctx, q, args))
		if err != nil {
			return err
		}
		result.Itinerary, err = replaceItems(ctx, tx, result.ID, trip.Itinerary)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Upsert: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip and its items.
func (r *pgTripRepo) GetByID(ctx context.Context, owner, id uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE id = @id AND owner_id = @owner_id`

	trip, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "owner_id": owner}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	trip.Itinerary, err = loadItems(ctx, r.db, trip.ID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return trip, nil
}

// ListPaged returns a page of summaries and the owner's total trip count.
func (r *pgTripRepo) ListPaged(ctx context.Context, owner uuid.UUID, p domain.PaginationParams) ([]domain.TripSummary, int64, error) {
	const countQ = `SELECT count(*) FROM trips WHERE owner_id = @owner_id`
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE owner_id = @owner_id
		ORDER BY updated_at DESC, id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"owner_id": owner}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": owner, "limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	trips, err := collectTrips(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}

	summaries := make([]domain.TripSummary, len(trips))
	for i, t := range trips {
		summaries[i] = t.Summary()
	}
	return summaries, total, nil
}

// ListAll returns every trip of owner with its items.
func (r *pgTripRepo) ListAll(ctx context.Context, owner uuid.UUID) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE owner_id = @owner_id
		ORDER BY updated_at DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": owner})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListAll: %w", err)
	}
	trips, err := collectTrips(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListAll: %w", err)
	}

	for i := range trips {
		trips[i].Itinerary, err = loadItems(ctx, r.db, trips[i].ID)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.ListAll: %w", err)
		}
	}
	return trips, nil
}

// Delete removes a trip by primary key; items go with it via ON DELETE CASCADE.
func (r *pgTripRepo) Delete(ctx context.Context, owner, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id AND owner_id = @owner_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "owner_id": owner})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func tripArgs(owner uuid.UUID, trip domain.Trip) pgx.NamedArgs {
	return pgx.NamedArgs{
		"owner_id":    owner,
		"title":       trip.Title,
		"destination": trip.Destination,
		"day_count":   trip.DayCount,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single trips row into a domain.Trip without items.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t  domain.Trip
		id pgtype.UUID
	)

	err := s.Scan(&id, &t.Title, &t.Destination, &t.DayCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.Itinerary = []domain.Item{}
	return t, nil
}

func collectTrips(rows pgx.Rows) ([]domain.Trip, error) {
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return trips, nil
}
