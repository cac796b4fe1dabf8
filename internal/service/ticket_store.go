package service

import (
	"context"
	"encoding/json"
	"sync"

	"snp/internal/model"
	"snp/internal/repository"
	"snp/internal/timekey"

	"golang.org/x/sync/singleflight"
)

// Guardado is the result of a successful save.
type Guardado struct {
	Key    string
	Ticket model.Ticket
	Stored json.RawMessage
}

// TicketStore writes tickets under their time key and keeps a process-wide
// snapshot of the collection. The snapshot has no TTL: Invalidar is the only
// way to refresh it.
type TicketStore struct {
	repo  repository.TicketRepository
	clock *timekey.Generator

	group singleflight.Group

	mu       sync.RWMutex
	snapshot map[string]model.Ticket
	loaded   bool
	gen      uint64
}

func NewTicketStore(repo repository.TicketRepository, clock *timekey.Generator) *TicketStore {
	return &TicketStore{repo: repo, clock: clock}
}

// Guardar stamps t with a fresh key, display date and ISO instant taken from a
// single reading of the clock, writes it (full replace) and invalidates the
// snapshot. A save in the same displayed second as an earlier one reuses the
// key and overwrites that record.
func (s *TicketStore) Guardar(ctx context.Context, t model.Ticket) (Guardado, error) {
	stamp := s.clock.Ahora()
	t.FirebaseKey = stamp.Key
	t.CreatedAtDisplay = stamp.Display
	t.CreatedAtIso = stamp.ISO

	stored, err := s.repo.Put(ctx, stamp.Key, t)
	if err != nil {
		return Guardado{}, err
	}
	s.Invalidar()
	return Guardado{Key: stamp.Key, Ticket: t, Stored: stored}, nil
}

// GetOrLoad returns the cached snapshot, loading it on first use. Concurrent
// callers share one in-flight load. Failed loads are not cached.
func (s *TicketStore) GetOrLoad(ctx context.Context) (map[string]model.Ticket, error) {
	s.mu.RLock()
	if s.loaded {
		snap := s.snapshot
		s.mu.RUnlock()
		return snap, nil
	}
	gen := s.gen
	s.mu.RUnlock()

	ch := s.group.DoChan("tickets", func() (any, error) {
		// Detached from the first caller so its cancellation does not fail
		// the others waiting on the same load.
		all, err := s.repo.GetAll(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.gen == gen {
			s.snapshot = all
			s.loaded = true
		}
		s.mu.Unlock()
		return all, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[string]model.Ticket), nil
	}
}

// Invalidar drops the snapshot. A load already in flight still answers its
// callers but does not repopulate the cache.
func (s *TicketStore) Invalidar() {
	s.mu.Lock()
	s.snapshot = nil
	s.loaded = false
	s.gen++
	s.mu.Unlock()
	s.group.Forget("tickets")
}

// Cargado reports whether a snapshot is currently cached.
func (s *TicketStore) Cargado() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
