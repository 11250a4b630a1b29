package analysis

import (
	"sort"
	"sync"
	"time"
)

// HistoryQuery filters and pages history lookups.
type HistoryQuery struct {
	// Code restricts to one fund; empty matches all.
	Code string
	// Success filters by outcome when non-nil.
	Success *bool
	// SortBy is "created_at" (default) or "sentiment_score".
	SortBy string
	// Ascending flips the default newest-first order.
	Ascending bool

	Limit  int
	Offset int
}

// HistoryStore keeps analysis records in memory, newest id highest.
type HistoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records []Record
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{nextID: 1}
}

// Add assigns the record an id and stores it, returning the stored copy.
func (s *HistoryStore) Add(record Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = s.nextID
	s.nextID++
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	s.records = append(s.records, record)

	return record
}

// Get returns the record with the given id.
func (s *HistoryStore) Get(id int64) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if record.ID == id {
			return record, true
		}
	}
	return Record{}, false
}

func (q HistoryQuery) matches(record Record) bool {
	if q.Code != "" && record.Code != q.Code {
		return false
	}
	if q.Success != nil && record.Success != *q.Success {
		return false
	}
	return true
}

// Find returns the matching records, sorted and paged.
func (s *HistoryStore) Find(q HistoryQuery) []Record {
	s.mu.RLock()
	matched := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		if q.matches(record) {
			matched = append(matched, record)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		// descending order swaps the operands so equal keys still
		// compare false, keeping the comparator strict-weak and the
		// sort stable
		if !q.Ascending {
			a, b = b, a
		}
		switch q.SortBy {
		case "sentiment_score":
			return a.Score < b.Score
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched
}

// Count returns how many records match the query's filters.
func (s *HistoryStore) Count(q HistoryQuery) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, record := range s.records {
		if q.matches(record) {
			count++
		}
	}
	return count
}

// LatestSuccessful returns the most recent successful record per code.
func (s *HistoryStore) LatestSuccessful(codes []string) map[string]Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(codes))
	for _, code := range codes {
		wanted[code] = true
	}

	latest := make(map[string]Record)
	for _, record := range s.records {
		if !record.Success || !wanted[record.Code] {
			continue
		}
		if prev, ok := latest[record.Code]; !ok || record.CreatedAt.After(prev.CreatedAt) {
			latest[record.Code] = record
		}
	}
	return latest
}
