package dataset

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// RecordStore gives access to labelled measurements grouped by source
// (one source per measurement database).
type RecordStore interface {
	// ResolveIDs lists, in ascending order, the IDs in source labelled with
	// stage. A non-nil quality restricts the result to that quality.
	ResolveIDs(ctx context.Context, source, stage string, quality *int) ([]int, error)

	// LoadRecord returns the record; callers may modify it freely.
	LoadRecord(ctx context.Context, source string, id int) (*MeasurementRecord, error)
}

// MemStore is a RecordStore held in memory. Safe for concurrent use.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]map[int]*MeasurementRecord
}

func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]map[int]*MeasurementRecord)}
}

// Put stores a copy of rec under rec.Source and rec.ID.
func (s *MemStore) Put(rec *MeasurementRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySource, ok := s.records[rec.Source]
	if !ok {
		bySource = make(map[int]*MeasurementRecord)
		s.records[rec.Source] = bySource
	}
	bySource[rec.ID] = rec.Clone()
}

func (s *MemStore) ResolveIDs(ctx context.Context, source, stage string, quality *int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	bySource, ok := s.records[source]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", source)
	}

	ids := make([]int, 0, len(bySource))
	for id, rec := range bySource {
		if !slices.Contains(rec.Labels, stage) {
			continue
		}
		if quality != nil && rec.Quality != *quality {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func (s *MemStore) LoadRecord(ctx context.Context, source string, id int) (*MeasurementRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[source][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%d", ErrRecordNotFound, source, id)
	}
	return rec.Clone(), nil
}
