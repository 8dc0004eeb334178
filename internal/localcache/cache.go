// Package localcache persists the CLI's working copy between runs. Every
// command appends a draft snapshot to a SQLite file; the newest snapshot is
// the working copy and older ones form an undo history.
package localcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/kendala/planner/internal/domain"
)

// FileName is the database file created inside the data directory.
const FileName = "drafts.db"

// Entry describes one stored snapshot.
type Entry struct {
	ID      string
	SavedAt time.Time
	TripID  string
	Title   string
	Items   int
}

// Cache is the draft snapshot store.
type Cache struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Open opens or creates the cache database at path, creating parent
// directories as needed.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("localcache.Open: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("localcache.Open: %w", err)
	}

	c := &Cache{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("localcache.Open: migrate: %w", err)
	}
	return c, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`
	CREATE TABLE IF NOT EXISTS drafts (
		id         TEXT PRIMARY KEY,
		saved_at   TEXT NOT NULL,
		trip_id    TEXT NOT NULL DEFAULT '',
		title      TEXT NOT NULL DEFAULT '',
		item_count INTEGER NOT NULL DEFAULT 0,
		body       TEXT NOT NULL
	)`)
	return err
}

func (c *Cache) newID(now time.Time) ulid.ULID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), c.entropy)
}

// Put appends d as the newest snapshot.
func (c *Cache) Put(ctx context.Context, d domain.Draft) (Entry, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return Entry{}, fmt.Errorf("localcache.Cache.Put: encode: %w", err)
	}

	now := time.Now().UTC()
	e := Entry{
		ID:      c.newID(now).String(),
		SavedAt: now,
		Title:   d.Title,
		Items:   len(d.Itinerary),
	}
	if d.ActiveTripID != uuid.Nil {
		e.TripID = d.ActiveTripID.String()
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO drafts (id, saved_at, trip_id, title, item_count, body) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, now.Format(time.RFC3339Nano), e.TripID, e.Title, e.Items, string(body))
	if err != nil {
		return Entry{}, fmt.Errorf("localcache.Cache.Put: %w", err)
	}
	return e, nil
}

// Latest returns the newest snapshot, or domain.ErrNotFound when the cache
// is empty.
func (c *Cache) Latest(ctx context.Context) (domain.Draft, error) {
	row := c.db.QueryRowContext(ctx, `SELECT body FROM drafts ORDER BY id DESC LIMIT 1`)
	d, err := scanDraft(row)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("localcache.Cache.Latest: %w", err)
	}
	return d, nil
}

// Get returns snapshot id, or domain.ErrNotFound.
func (c *Cache) Get(ctx context.Context, id string) (domain.Draft, error) {
	row := c.db.QueryRowContext(ctx, `SELECT body FROM drafts WHERE id = ?`, id)
	d, err := scanDraft(row)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("localcache.Cache.Get: %w", err)
	}
	return d, nil
}

// History returns up to limit entries, newest first.
func (c *Cache) History(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, saved_at, trip_id, title, item_count FROM drafts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("localcache.Cache.History: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		var savedAt string
		if err := rows.Scan(&e.ID, &savedAt, &e.TripID, &e.Title, &e.Items); err != nil {
			return nil, fmt.Errorf("localcache.Cache.History: %w", err)
		}
		e.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("localcache.Cache.History: %w", err)
	}
	return out, nil
}

// Prune deletes all but the newest keep snapshots and returns how many
// were removed.
func (c *Cache) Prune(ctx context.Context, keep int) (int, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM drafts WHERE id NOT IN (SELECT id FROM drafts ORDER BY id DESC LIMIT ?)`, max(keep, 0))
	if err != nil {
		return 0, fmt.Errorf("localcache.Cache.Prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func scanDraft(row *sql.Row) (domain.Draft, error) {
	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Draft{}, domain.ErrNotFound
		}
		return domain.Draft{}, err
	}
	var d domain.Draft
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		return domain.Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}
