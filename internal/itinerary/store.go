package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure/v2"
	"golang.org/x/sync/singleflight"

	"github.com/kendala/planner/internal/domain"
)

// Remote is the trip-storage collaborator. Every call carries the bearer
// token the store obtained for it; implementations must not cache tokens.
type Remote interface {
	// ListTrips returns summaries of the session's saved trips, most recent first.
	ListTrips(ctx context.Context, token string) ([]domain.TripSummary, error)

	// GetTrip returns a fully hydrated trip.
	GetTrip(ctx context.Context, token string, id uuid.UUID) (domain.Trip, error)

	// SaveTrip creates the trip when trip.ID is uuid.Nil and updates it
	// otherwise. It returns the assigned or confirmed id.
	SaveTrip(ctx context.Context, token string, trip domain.Trip) (uuid.UUID, error)

	// DeleteTrip removes a trip by id.
	DeleteTrip(ctx context.Context, token string, id uuid.UUID) error
}

// TokenSource yields the current session token. It is consulted before every
// remote call; an error or empty token means there is no session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a plain function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token calls f.
func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for remote-call diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithIDGenerator replaces uuid.New for item ids. Tests use it for determinism.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Store) { s.newID = fn }
}

// WithDraft starts the store from a previously persisted working copy.
func WithDraft(d domain.Draft) Option {
	return func(s *Store) { s.restoreLocked(d) }
}

// Store owns the working copy of the active trip and mediates every read and
// write of it, including synchronisation with remote storage.
//
// Exactly one trip is active at a time. Local operations are synchronous and
// never touch the network. SaveCurrentTrip, DeleteTrip, RefreshTrips and
// OpenTrip each fetch a fresh token and make one remote call; failures are
// reported to the caller and leave the working copy unchanged.
//
// A Store is safe for concurrent use. Its lock is never held across a
// remote call.
type Store struct {
	remote Remote
	tokens TokenSource
	log    *slog.Logger
	newID  func() uuid.UUID

	refresh singleflight.Group

	mu          sync.Mutex
	activeID    uuid.UUID
	title       string
	destination string
	dayCount    int
	selectedDay int
	items       []domain.Item
	savedTrips  []domain.TripSummary
	savedHash   uint64
	inFlight    int
	saving      bool

	// listEdits records saves and deletes made while a refresh is in flight,
	// in order; they are replayed onto the fetched list. Nil when idle.
	listEdits []listEdit

	// generation increments whenever the working copy is replaced wholesale,
	// so a save that completes afterwards does not adopt the old trip's id.
	generation uint64
}

// NewStore returns a Store holding a fresh, empty trip.
func NewStore(remote Remote, tokens TokenSource, opts ...Option) *Store {
	s := &Store{
		remote:     remote,
		tokens:     tokens,
		log:        slog.New(slog.DiscardHandler),
		newID:      uuid.New,
		savedTrips: []domain.TripSummary{},
	}
	s.resetLocked()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ---- working copy -----------------------------------------------------------

// Trip returns a snapshot of the working copy as a Trip.
func (s *Store) Trip() domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tripLocked()
}

// Itinerary returns a copy of every item in persisted order.
func (s *Store) Itinerary() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// SetItinerary replaces the itinerary wholesale. The store does not validate
// the items; validation belongs to the edit boundary and the storage service.
func (s *Store) SetItinerary(items []domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cloneItems(items)
}

// UpdateItinerary replaces the itinerary with fn applied to a copy of it.
func (s *Store) UpdateItinerary(fn func([]domain.Item) []domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cloneItems(fn(slices.Clone(s.items)))
}

// Title returns the trip title.
func (s *Store) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// SetTitle sets the trip title.
func (s *Store) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// Destination returns the destination label.
func (s *Store) Destination() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destination
}

// SetDestination sets the destination label.
func (s *Store) SetDestination(dest string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destination = dest
}

// DayCount returns the number of days the trip spans.
func (s *Store) DayCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dayCount
}

// ActiveTripID returns the remote id of the active trip, or uuid.Nil if the
// working copy has never been saved.
func (s *Store) ActiveTripID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// SelectedDay returns the day new activities are added to.
func (s *Store) SelectedDay() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedDay
}

// SelectDay makes day the target of AddActivity.
// Returns domain.ErrValidation if day is outside 1..DayCount.
func (s *Store) SelectDay(day int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if day < 1 || day > s.dayCount {
		return fmt.Errorf("%w: day %d outside 1..%d", domain.ErrValidation, day, s.dayCount)
	}
	s.selectedDay = day
	return nil
}

// AddActivity appends a new item on the selected day with a fresh id.
// The input is normalized first; when it is invalid (blank activity or
// location, malformed time, unknown type, negative cost) the call is a no-op
// and ok is false.
func (s *Store) AddActivity(in domain.ActivityInput) (item domain.Item, ok bool) {
	in, err := NormalizeInput(in)
	if err != nil {
		s.log.Debug("add activity refused", "reason", err)
		return domain.Item{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item = domain.Item{ID: s.newID(), Day: s.selectedDay}.Apply(in)
	s.items = append(slices.Clip(s.items), item)
	return item, true
}

// EditActivity replaces the mutable fields of item id, preserving its id and
// day. It is a no-op returning false when id is unknown or in is invalid.
func (s *Store) EditActivity(id uuid.UUID, in domain.ActivityInput) bool {
	in, err := NormalizeInput(in)
	if err != nil {
		s.log.Debug("edit activity refused", "id", id, "reason", err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items, found := Edit(s.items, id, in)
	if found {
		s.items = items
	}
	return found
}

// RemoveActivity removes item id. Removing an absent id is a no-op.
func (s *Store) RemoveActivity(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, found := Remove(s.items, id)
	if found {
		s.items = items
	}
	return found
}

// ReorderDay applies a manual order to the items on day. orderedIDs must be
// a permutation of that day's ids; otherwise the working copy is left
// unchanged and a wrapped domain.ErrValidation is returned.
func (s *Store) ReorderDay(day int, orderedIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := ReorderDay(s.items, day, orderedIDs)
	if err != nil {
		return fmt.Errorf("itinerary.Store.ReorderDay: %w", err)
	}
	s.items = items
	return nil
}

// MoveActivity moves item id to position toIndex within its day.
func (s *Store) MoveActivity(id uuid.UUID, toIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := Move(s.items, id, toIndex)
	if err != nil {
		return fmt.Errorf("itinerary.Store.MoveActivity: %w", err)
	}
	s.items = items
	return nil
}

// AddDay extends the trip by one day, selects it, and returns its number.
func (s *Store) AddDay() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dayCount++
	s.selectedDay = s.dayCount
	return s.dayCount
}

// TotalCost returns the sum of item costs across all days.
func (s *Store) TotalCost() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalCost(s.items)
}

// DayCost returns the sum of item costs on day.
func (s *Store) DayCost(day int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DayCost(s.items, day)
}

// ItemsForDay returns the items on day sorted by time: the default view.
func (s *Store) ItemsForDay(day int) []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SortedDayItems(s.items, day)
}

// DayItems returns the items on day in persisted (manual) order.
func (s *Store) DayItems(day int) []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DayItems(s.items, day)
}

// AutoGenerate replaces the itinerary with a generated one and raises the
// day count to req.Days if it was lower. The working copy is unchanged when
// generation fails.
func (s *Store) AutoGenerate(req GenerateRequest) (GenerateResult, error) {
	res, err := Generate(req, s.newID)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("itinerary.Store.AutoGenerate: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cloneItems(res.Items)
	s.dayCount = max(s.dayCount, req.Days)
	s.selectedDay = 1
	return res, nil
}

// CreateNewTrip discards the working copy and starts an empty one-day trip.
// The next save creates a new remote record.
func (s *Store) CreateNewTrip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// LoadTrip replaces the working copy with trip, which must already be fully
// hydrated. It makes no remote call.
func (s *Store) LoadTrip(trip domain.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.activeID = trip.ID
	s.title = trip.Title
	s.destination = trip.Destination
	s.dayCount = max(1, trip.DayCount)
	s.selectedDay = 1
	s.items = cloneItems(trip.Itinerary)
	s.savedHash = stateHash(s.tripLocked())
}

// Dirty reports whether the working copy differs from the trip as it was
// last created, loaded, or saved.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stateHash(s.tripLocked()) != s.savedHash
}

// ---- remote sync ------------------------------------------------------------

// SavedTrips returns the cached summaries from the last RefreshTrips.
func (s *Store) SavedTrips() []domain.TripSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.savedTrips)
}

// IsLoading reports whether any remote call is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// SaveCurrentTrip upserts the working copy to remote storage: it creates a
// record when there is no active trip id and updates it otherwise.
// On success the returned id becomes the active trip id. On failure the
// working copy is unchanged and the error is returned; there is no retry.
// A call made while another save is in flight returns domain.ErrBusy.
func (s *Store) SaveCurrentTrip(ctx context.Context) (uuid.UUID, error) {
	token, err := s.token(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("itinerary.Store.SaveCurrentTrip: %w", err)
	}

	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return uuid.Nil, fmt.Errorf("itinerary.Store.SaveCurrentTrip: %w", domain.ErrBusy)
	}
	s.saving = true
	s.inFlight++
	trip := s.tripLocked()
	gen := s.generation
	s.mu.Unlock()

	id, err := s.remote.SaveTrip(ctx, token, trip)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	s.inFlight--
	if err != nil {
		s.log.Warn("save trip failed", "trip_id", trip.ID, "error", err)
		return uuid.Nil, remoteErr("SaveCurrentTrip", err)
	}

	trip.ID = id
	if gen == s.generation {
		s.activeID = id
		s.savedHash = stateHash(trip)
	}
	s.upsertSummaryLocked(trip.Summary())
	s.log.Debug("trip saved", "trip_id", id, "items", len(trip.Itinerary))
	return id, nil
}

// DeleteTrip removes trip id from remote storage. On success it is dropped
// from SavedTrips, and if it was the active trip the working copy is reset
// as by CreateNewTrip.
func (s *Store) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	token, err := s.token(ctx)
	if err != nil {
		return fmt.Errorf("itinerary.Store.DeleteTrip: %w", err)
	}

	s.begin()
	err = s.remote.DeleteTrip(ctx, token, id)
	s.end()
	if err != nil {
		s.log.Warn("delete trip failed", "trip_id", id, "error", err)
		return remoteErr("DeleteTrip", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeSummaryLocked(id)
	if id == s.activeID {
		s.resetLocked()
	}
	s.log.Debug("trip deleted", "trip_id", id)
	return nil
}

// RefreshTrips replaces SavedTrips with the remote list. Concurrent calls
// share one remote request, which is not cancelled with any single caller;
// each caller stops waiting when its own ctx is done. Saves and deletes that
// complete while the request is in flight are kept over the fetched list.
func (s *Store) RefreshTrips(ctx context.Context) error {
	token, err := s.token(ctx)
	if err != nil {
		return fmt.Errorf("itinerary.Store.RefreshTrips: %w", err)
	}

	shared := context.WithoutCancel(ctx)
	ch := s.refresh.DoChan("trips", func() (any, error) {
		s.begin()
		s.mu.Lock()
		s.listEdits = []listEdit{}
		s.mu.Unlock()
		defer s.end()

		trips, err := s.remote.ListTrips(shared, token)

		s.mu.Lock()
		defer s.mu.Unlock()
		edits := s.listEdits
		s.listEdits = nil
		if err != nil {
			return nil, err
		}
		s.savedTrips = slices.Clone(trips)
		if s.savedTrips == nil {
			s.savedTrips = []domain.TripSummary{}
		}
		for _, e := range edits {
			if e.deleted {
				s.removeSummaryLocked(e.summary.ID)
			} else {
				s.upsertSummaryLocked(e.summary)
			}
		}
		return nil, nil
	})

	select {
	case <-ctx.Done():
		return fmt.Errorf("itinerary.Store.RefreshTrips: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			s.log.Warn("refresh trips failed", "error", res.Err)
			return remoteErr("RefreshTrips", res.Err)
		}
		return nil
	}
}

// OpenTrip fetches trip id from remote storage and loads it as the working
// copy. The working copy is unchanged on failure.
func (s *Store) OpenTrip(ctx context.Context, id uuid.UUID) error {
	token, err := s.token(ctx)
	if err != nil {
		return fmt.Errorf("itinerary.Store.OpenTrip: %w", err)
	}

	s.begin()
	trip, err := s.remote.GetTrip(ctx, token, id)
	s.end()
	if err != nil {
		s.log.Warn("open trip failed", "trip_id", id, "error", err)
		return remoteErr("OpenTrip", err)
	}

	s.LoadTrip(trip)
	return nil
}

// ---- local persistence ------------------------------------------------------

// Snapshot returns the working copy as a Draft for local persistence.
func (s *Store) Snapshot() domain.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Draft{
		ActiveTripID: s.activeID,
		Title:        s.title,
		Destination:  s.destination,
		DayCount:     s.dayCount,
		SelectedDay:  s.selectedDay,
		Itinerary:    slices.Clone(s.items),
		SavedTrips:   slices.Clone(s.savedTrips),
		SavedHash:    s.savedHash,
	}
}

// Restore replaces the working copy and the saved-trip cache with d.
func (s *Store) Restore(d domain.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreLocked(d)
}

// ---- internals --------------------------------------------------------------

func (s *Store) token(ctx context.Context) (string, error) {
	if s.tokens == nil {
		return "", domain.ErrUnauthenticated
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if token == "" {
		return "", domain.ErrUnauthenticated
	}
	return token, nil
}

func (s *Store) begin() {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
}

func (s *Store) end() {
	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
}

func (s *Store) tripLocked() domain.Trip {
	return domain.Trip{
		ID:          s.activeID,
		Title:       s.title,
		Destination: s.destination,
		DayCount:    s.dayCount,
		Itinerary:   slices.Clone(s.items),
	}
}

func (s *Store) resetLocked() {
	s.generation++
	s.activeID = uuid.Nil
	s.title = ""
	s.destination = ""
	s.dayCount = 1
	s.selectedDay = 1
	s.items = []domain.Item{}
	s.savedHash = stateHash(s.tripLocked())
}

func (s *Store) restoreLocked(d domain.Draft) {
	s.generation++
	s.activeID = d.ActiveTripID
	s.title = d.Title
	s.destination = d.Destination
	s.dayCount = max(1, d.DayCount)
	s.selectedDay = min(max(1, d.SelectedDay), s.dayCount)
	s.items = cloneItems(d.Itinerary)
	s.savedTrips = slices.Clone(d.SavedTrips)
	if s.savedTrips == nil {
		s.savedTrips = []domain.TripSummary{}
	}
	s.savedHash = d.SavedHash
}

type listEdit struct {
	summary domain.TripSummary
	deleted bool
}

// upsertSummaryLocked puts t at the front of savedTrips, the most recent slot.
func (s *Store) upsertSummaryLocked(t domain.TripSummary) {
	s.savedTrips = slices.DeleteFunc(s.savedTrips, func(x domain.TripSummary) bool { return x.ID == t.ID })
	s.savedTrips = slices.Insert(s.savedTrips, 0, t)
	if s.listEdits != nil {
		s.listEdits = append(s.listEdits, listEdit{summary: t})
	}
}

func (s *Store) removeSummaryLocked(id uuid.UUID) {
	s.savedTrips = slices.DeleteFunc(s.savedTrips, func(x domain.TripSummary) bool { return x.ID == id })
	if s.listEdits != nil {
		s.listEdits = append(s.listEdits, listEdit{summary: domain.TripSummary{ID: id}, deleted: true})
	}
}

func cloneItems(items []domain.Item) []domain.Item {
	if items == nil {
		return []domain.Item{}
	}
	return slices.Clone(items)
}

// hashedState is the part of a trip that counts towards Dirty.
type hashedState struct {
	Title       string
	Destination string
	DayCount    int
	Itinerary   []domain.Item
}

func stateHash(t domain.Trip) uint64 {
	h, err := hashstructure.Hash(hashedState{
		Title:       t.Title,
		Destination: t.Destination,
		DayCount:    t.DayCount,
		Itinerary:   t.Itinerary,
	}, hashstructure.FormatV2, nil)
	if err != nil {
		// hashedState holds only kinds hashstructure supports.
		panic(fmt.Sprintf("itinerary: hash state: %v", err))
	}
	return h
}

// remoteErr wraps err for the caller, tagging anything the remote did not
// already classify as domain.ErrRemote.
func remoteErr(op string, err error) error {
	for _, known := range []error{domain.ErrRemote, domain.ErrUnauthenticated, domain.ErrNotFound, domain.ErrValidation} {
		if errors.Is(err, known) {
			return fmt.Errorf("itinerary.Store.%s: %w", op, err)
		}
	}
	return fmt.Errorf("itinerary.Store.%s: %w: %w", op, domain.ErrRemote, err)
}
