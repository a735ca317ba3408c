// Package memory provides an in-process store implementing the repository
// ports. It backs tests and local dry runs.
package memory

import (
    "context"
    "errors"
    "slices"
    "sync"

    "provintel/internal/domain"
    "provintel/internal/ports"
)

var (
    _ ports.DirectoryRepository    = (*Store)(nil)
    _ ports.IntelligenceRepository = (*Store)(nil)
    _ ports.BuyingSignalRepository = (*Store)(nil)
)

// ErrInjected is returned by operations switched to fail.
var ErrInjected = errors.New("injected failure")

type Store struct {
    mu        sync.RWMutex
    directory []domain.Target
    records   map[string]domain.IntelligenceRecord
    order     []string
    signals   []domain.BuyingSignal

    FailList    bool
    FailUpsert  bool
    FailSignals bool
}

func New(directory ...domain.Target) *Store {
    return &Store{directory: slices.Clone(directory), records: map[string]domain.IntelligenceRecord{}}
}

// AddTargets appends directory entries.
func (s *Store) AddTargets(ts ...domain.Target) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.directory = append(s.directory, ts...)
}

func (s *Store) ListCandidates(_ context.Context, regions []string, limit int) ([]domain.Target, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    if s.FailList {
        return nil, ErrInjected
    }
    enriched := s.enrichedLocked()
    var out []domain.Target
    for _, t := range s.directory {
        if limit > 0 && len(out) >= limit {
            break
        }
        if t.RegistryID == "" || enriched[t.RegistryID] || !slices.Contains(regions, t.Region) {
            continue
        }
        out = append(out, t)
    }
    return out, nil
}

func (s *Store) EnrichedRegistryIDs(_ context.Context, registryIDs []string) (map[string]bool, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    enriched := s.enrichedLocked()
    out := make(map[string]bool, len(registryIDs))
    for _, id := range registryIDs {
        if enriched[id] {
            out[id] = true
        }
    }
    return out, nil
}

func (s *Store) enrichedLocked() map[string]bool {
    out := make(map[string]bool, len(s.records))
    for _, r := range s.records {
        if r.RegistryID != "" {
            out[r.RegistryID] = true
        }
    }
    return out
}

func (s *Store) UpsertIntelligence(_ context.Context, rec domain.IntelligenceRecord) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.FailUpsert {
        return ErrInjected
    }
    if rec.ID == "" {
        return errors.New("intelligence record id is required")
    }
    if _, ok := s.records[rec.ID]; !ok {
        s.order = append(s.order, rec.ID)
    }
    s.records[rec.ID] = rec
    return nil
}

func (s *Store) LatestByRegistryID(_ context.Context, registryID string) (bool, domain.IntelligenceRecord, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    for i := len(s.order) - 1; i >= 0; i-- {
        if r := s.records[s.order[i]]; r.RegistryID == registryID {
            return true, r, nil
        }
    }
    return false, domain.IntelligenceRecord{}, nil
}

func (s *Store) InsertBuyingSignal(_ context.Context, sig domain.BuyingSignal) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.FailSignals {
        return ErrInjected
    }
    s.signals = append(s.signals, sig)
    return nil
}

// Records returns stored records in insertion order.
func (s *Store) Records() []domain.IntelligenceRecord {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]domain.IntelligenceRecord, 0, len(s.order))
    for _, id := range s.order {
        out = append(out, s.records[id])
    }
    return out
}

// BuyingSignals returns appended signals in insertion order.
func (s *Store) BuyingSignals() []domain.BuyingSignal {
    s.mu.RLock()
    defer s.mu.RUnlock()
    return slices.Clone(s.signals)
}
