package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ErrNoSnapshot is returned when nothing has been loaded yet
var ErrNoSnapshot = errors.New("no snapshot loaded")

// Loader produces a fresh dataset from some backing source
type Loader interface {
	Load(ctx context.Context) (*Dataset, error)
}

// LoaderFunc adapts a function to the Loader interface
type LoaderFunc func(ctx context.Context) (*Dataset, error)

// Load calls f(ctx)
func (f LoaderFunc) Load(ctx context.Context) (*Dataset, error) { return f(ctx) }

// Store holds the current snapshot. Readers always see a complete snapshot;
// Refresh swaps in a new one only after it validated.
type Store struct {
	loader  Loader
	log     logrus.FieldLogger
	current atomic.Pointer[Snapshot]
	loadMu  sync.Mutex
}

// New creates a store backed by loader. Call Refresh to load the first snapshot.
func New(loader Loader, log logrus.FieldLogger) *Store {
	return &Store{
		loader: loader,
		log:    log.WithField("component", "store"),
	}
}

// Snapshot returns the current snapshot
func (s *Store) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Refresh loads, validates and publishes a new snapshot. On failure the
// previous snapshot stays in place.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	ds, err := s.loader.Load(ctx)
	if err != nil {
		s.log.WithError(err).Error("Snapshot load failed")
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if ds == nil {
		s.log.Error("Snapshot loader returned no dataset")
		return nil, fmt.Errorf("load snapshot: %w", ErrNoSnapshot)
	}

	snap, err := NewSnapshot(*ds)
	if err != nil {
		s.log.WithError(err).Error("Snapshot rejected")
		return nil, err
	}

	s.current.Store(snap)
	s.log.WithFields(logrus.Fields{
		"version":      snap.Version(),
		"customers":    len(snap.Customers()),
		"accounts":     len(snap.Accounts()),
		"transactions": len(snap.Transactions()),
	}).Info("Snapshot published")

	return snap, nil
}

// Publish installs an already validated snapshot, bypassing the loader
func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
}
