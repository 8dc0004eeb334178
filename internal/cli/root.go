// Package cli implements the kendala command-line client. Each invocation
// restores the working copy from the local draft cache, runs one command
// against an itinerary.Store, and appends the resulting draft back to the
// cache.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kendala/planner/internal/domain"
	"github.com/kendala/planner/internal/itinerary"
	"github.com/kendala/planner/internal/localcache"
)

// historyKeep is how many draft snapshots survive each write.
const historyKeep = 50

// annotation marking commands that do not change the working copy.
const readOnly = "kendala/read-only"

// DraftCache is the local persistence the CLI needs. *localcache.Cache
// satisfies it.
type DraftCache interface {
	Put(ctx context.Context, d domain.Draft) (localcache.Entry, error)
	Latest(ctx context.Context) (domain.Draft, error)
	Get(ctx context.Context, id string) (domain.Draft, error)
	History(ctx context.Context, limit int) ([]localcache.Entry, error)
	Prune(ctx context.Context, keep int) (int, error)
}

// Session is the sign-in state the CLI needs. *session.Manager satisfies it.
type Session interface {
	itinerary.TokenSource
	SignIn(token string) error
	SignOut() error
	SignedIn() bool
}

// App carries the dependencies shared by every command.
type App struct {
	Remote  itinerary.Remote
	Session Session
	Cache   DraftCache
	Log     *slog.Logger

	store *itinerary.Store
}

// NewRootCmd builds the kendala command tree around app.
func NewRootCmd(app *App) *cobra.Command {
	if app.Log == nil {
		app.Log = slog.New(slog.DiscardHandler)
	}

	root := &cobra.Command{
		Use:           "kendala",
		Short:         "Plan day-by-day trip itineraries",
		Long:          "Kendala keeps one working trip: add activities to days, reorder them, total the cost, and save trips to your account.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[readOnly] == "true" {
				return nil
			}
			return app.persist(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newNewCmd(app),
		newTitleCmd(app),
		newDestinationCmd(app),
		newAddCmd(app),
		newEditCmd(app),
		newRmCmd(app),
		newMoveCmd(app),
		newReorderCmd(app),
		newDayCmd(app),
		newShowCmd(app),
		newTotalCmd(app),
		newExportCmd(app),
		newGenerateCmd(app),
		newSaveCmd(app),
		newTripsCmd(app),
		newOpenCmd(app),
		newDeleteCmd(app),
		newHistoryCmd(app),
		newRestoreCmd(app),
	)
	return root
}

// load restores the working copy from the newest cached draft, or starts an
// empty trip when there is none.
func (a *App) load(ctx context.Context) error {
	opts := []itinerary.Option{itinerary.WithLogger(a.Log)}

	d, err := a.Cache.Latest(ctx)
	switch {
	case err == nil:
		opts = append(opts, itinerary.WithDraft(d))
	case errors.Is(err, domain.ErrNotFound):
	default:
		return fmt.Errorf("load working copy: %w", err)
	}

	a.store = itinerary.NewStore(a.Remote, a.Session, opts...)
	return nil
}

// persist appends the working copy to the cache and trims old snapshots.
func (a *App) persist(ctx context.Context) error {
	if _, err := a.Cache.Put(ctx, a.store.Snapshot()); err != nil {
		return fmt.Errorf("save working copy: %w", err)
	}
	if n, err := a.Cache.Prune(ctx, historyKeep); err != nil {
		a.Log.Warn("prune draft history", "error", err)
	} else if n > 0 {
		a.Log.Debug("pruned draft history", "removed", n)
	}
	return nil
}

// Store returns the store the last command ran against.
func (a *App) Store() *itinerary.Store { return a.store }

// ---- shared helpers ---------------------------------------------------------

// resolveItem finds the item whose id starts with ref. Refs are the short
// ids printed by show; a full UUID always works.
func resolveItem(s *itinerary.Store, ref string) (domain.Item, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return domain.Item{}, fmt.Errorf("%w: empty item id", domain.ErrValidation)
	}
	var found []domain.Item
	for _, it := range s.Itinerary() {
		if strings.HasPrefix(it.ID.String(), ref) {
			found = append(found, it)
		}
	}
	switch len(found) {
	case 0:
		return domain.Item{}, fmt.Errorf("no item %q: %w", ref, domain.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return domain.Item{}, fmt.Errorf("%w: item id %q is ambiguous", domain.ErrValidation, ref)
	}
}

// resolveTrip accepts a full trip id or a prefix of one in the saved-trip list.
func resolveTrip(s *itinerary.Store, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	ref = strings.ToLower(strings.TrimSpace(ref))
	var found []uuid.UUID
	for _, t := range s.SavedTrips() {
		if ref != "" && strings.HasPrefix(t.ID.String(), ref) {
			found = append(found, t.ID)
		}
	}
	switch len(found) {
	case 0:
		return uuid.Nil, fmt.Errorf("no saved trip %q (run 'kendala trips' to refresh): %w", ref, domain.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return uuid.Nil, fmt.Errorf("%w: trip id %q is ambiguous", domain.ErrValidation, ref)
	}
}

// shortID is the prefix of id shown in listings.
func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// describe turns store errors into a message for the terminal.
func describe(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return fmt.Errorf("not signed in or session expired; run 'kendala login <token>' (%w)", err)
	case errors.Is(err, domain.ErrBusy):
		return fmt.Errorf("another save is still running (%w)", err)
	}
	return err
}
