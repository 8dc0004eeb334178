// Package session holds the CLI's sign-in state: the bearer token issued by
// the external identity provider, persisted between runs by a Keeper.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/kendala/planner/internal/domain"
)

// ErrNoSession is returned by Token when nobody is signed in.
// It wraps domain.ErrUnauthenticated.
var ErrNoSession = fmt.Errorf("%w: not signed in", domain.ErrUnauthenticated)

// State is the auth state delivered to subscribers.
type State struct {
	SignedIn bool
}

// Keeper persists the session token. Load returns "" with a nil error when
// nothing is stored.
type Keeper interface {
	Load() (string, error)
	Store(token string) error
	Clear() error
}

// Manager is the current session. It satisfies itinerary.TokenSource.
type Manager struct {
	keeper Keeper

	mu     sync.Mutex
	token  string
	nextID int
	subs   map[int]func(State)
}

// NewManager returns a Manager restored from keeper.
func NewManager(keeper Keeper) (*Manager, error) {
	token, err := keeper.Load()
	if err != nil {
		return nil, fmt.Errorf("session.NewManager: %w", err)
	}
	return &Manager{keeper: keeper, token: token, subs: map[int]func(State){}}, nil
}

// Token returns the current session token, or ErrNoSession.
func (m *Manager) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNoSession
	}
	return m.token, nil
}

// SignedIn reports whether a token is held.
func (m *Manager) SignedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != ""
}

// SignIn stores token and notifies subscribers.
func (m *Manager) SignIn(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("session.Manager.SignIn: %w: token is empty", domain.ErrValidation)
	}
	if err := m.keeper.Store(token); err != nil {
		return fmt.Errorf("session.Manager.SignIn: %w", err)
	}
	m.set(token)
	return nil
}

// SignOut forgets the token and notifies subscribers. Signing out with no
// session is not an error.
func (m *Manager) SignOut() error {
	if err := m.keeper.Clear(); err != nil {
		return fmt.Errorf("session.Manager.SignOut: %w", err)
	}
	m.set("")
	return nil
}

// Subscribe registers fn for auth-state changes and returns a function that
// unregisters it. fn is called without the manager's lock held.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) set(token string) {
	m.mu.Lock()
	changed := (m.token != "") != (token != "")
	m.token = token
	subs := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	if !changed {
		return
	}
	st := State{SignedIn: token != ""}
	for _, fn := range subs {
		fn(st)
	}
}

// ---- keepers ----------------------------------------------------------------

const (
	keyringService = "kendala"
	keyringUser    = "session"
)

// KeyringKeeper stores the token in the OS keyring.
type KeyringKeeper struct{}

// Load implements Keeper.
func (KeyringKeeper) Load() (string, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read keyring: %w", err)
	}
	return token, nil
}

// Store implements Keeper.
func (KeyringKeeper) Store(token string) error {
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

// Clear implements Keeper.
func (KeyringKeeper) Clear() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete from keyring: %w", err)
	}
	return nil
}

// MemoryKeeper keeps the token in memory only.
type MemoryKeeper struct {
	mu    sync.Mutex
	token string
}

// Load implements Keeper.
func (k *MemoryKeeper) Load() (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.token, nil
}

// Store implements Keeper.
func (k *MemoryKeeper) Store(token string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.token = token
	return nil
}

// Clear implements Keeper.
func (k *MemoryKeeper) Clear() error {
	return k.Store("")
}
