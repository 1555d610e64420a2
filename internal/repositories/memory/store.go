// Package memory is an in-process implementation of repositories.Store.
// Writes made inside WithTransaction are applied to a copy of the state and
// swapped in only on commit.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"ecotrace/internal/models"
	"ecotrace/internal/repositories"
)

type state struct {
	users      []models.User
	activities []models.Activity
	emissions  []models.Emission
	badges     []models.Badge

	nextUserID     int64
	nextActivityID int64
	nextEmissionID int64
	nextBadgeID    int64
}

func (s *state) clone() *state {
	c := *s
	c.users = append([]models.User(nil), s.users...)
	c.activities = append([]models.Activity(nil), s.activities...)
	c.emissions = append([]models.Emission(nil), s.emissions...)
	c.badges = append([]models.Badge(nil), s.badges...)
	return &c
}

var _ repositories.Store = (*Store)(nil)

// Store is safe for concurrent use. Transactions are serialised.
type Store struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	st    *state
	now   func() time.Time
	repos *repositories.Collection
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		st:  &state{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.repos = newCollection(&view{store: s})
	return s
}

func newCollection(v *view) *repositories.Collection {
	return &repositories.Collection{
		Users:      &userRepo{v},
		Activities: &activityRepo{v},
		Emissions:  &emissionRepo{v},
		Badges:     &badgeRepo{v},
	}
}

func (s *Store) Repos() *repositories.Collection {
	return s.repos
}

func (s *Store) WithTransaction(ctx context.Context, fn func(repos *repositories.Collection) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	working := s.st.clone()
	s.mu.RUnlock()

	v := &view{store: s, tx: working}
	if err := fn(newCollection(v)); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = working
	s.mu.Unlock()
	return nil
}

func (s *Store) LeaderboardRows(ctx context.Context) ([]models.LeaderboardRow, error) {
	var rows []models.LeaderboardRow
	err := (&view{store: s}).read(func(st *state) error {
		rows = make([]models.LeaderboardRow, 0, len(st.users))
		for _, u := range st.users {
			rows = append(rows, models.LeaderboardRow{
				UserID:        u.ID,
				Username:      u.Username,
				TotalEmission: st.sumEmissions(u.ID),
				BadgeCount:    st.countBadges(u.ID),
			})
		}
		return nil
	})
	return rows, err
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Counts reports the number of stored rows per entity.
func (s *Store) Counts() (users, activities, emissions, badges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.st.users), len(s.st.activities), len(s.st.emissions), len(s.st.badges)
}

// view routes reads and writes either to the committed state (taking the
// store lock) or to a transaction's private copy.
type view struct {
	store *Store
	tx    *state
}

func (v *view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.st)
}

// write runs fn on the transaction copy, or outside a transaction on a copy
// of the committed state that replaces it only if fn succeeds.
func (v *view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.txMu.Lock()
	defer v.store.txMu.Unlock()
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	working := v.store.st.clone()
	if err := fn(working); err != nil {
		return err
	}
	v.store.st = working
	return nil
}

func (st *state) userExists(id int64) bool {
	for _, u := range st.users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func (st *state) sumEmissions(userID int64) float64 {
	owned := make(map[int64]bool)
	for _, a := range st.activities {
		if a.UserID == userID {
			owned[a.ID] = true
		}
	}
	var total float64
	for _, e := range st.emissions {
		if owned[e.ActivityID] {
			total += e.EmissionKg
		}
	}
	return total
}

func (st *state) countBadges(userID int64) int {
	n := 0
	for _, b := range st.badges {
		if b.UserID == userID {
			n++
		}
	}
	return n
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, repositories.ErrNotFound)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
