// Package store keeps finalized candidate records.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/spigell/hh-screener/internal/candidate"
	"github.com/spigell/hh-screener/internal/logger"
	"go.uber.org/zap"
)

const sinkTimeout = 10 * time.Second

// Sink persists a record after it was accepted by the Store.
type Sink interface {
	Save(ctx context.Context, c *candidate.Candidate) error
}

// Store is an append-only list of records, de-duplicated by email.
// Records without an email are always appended.
type Store struct {
	mu      sync.RWMutex
	records []*candidate.Candidate
	emails  map[string]struct{}
	sinks   []Sink
	logger  *zap.Logger
}

func New(log *zap.Logger, sinks ...Sink) *Store {
	return &Store{
		emails: make(map[string]struct{}),
		sinks:  sinks,
		logger: logger.WithFields(log),
	}
}

// Add stores a copy of c and forwards it to the sinks. It returns false when
// a record with the same email is already present.
func (s *Store) Add(c *candidate.Candidate) bool {
	if c == nil {
		return false
	}

	record := c.Clone()
	if !s.insert(record) {
		s.logger.Info("duplicate candidate skipped", zap.String("email", record.EmailKey()))
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	for _, sink := range s.sinks {
		if err := sink.Save(ctx, record.Clone()); err != nil {
			s.logger.Error("persisting candidate failed",
				zap.String(logger.FieldSessionID, record.SessionID),
				zap.Error(err),
			)
		}
	}

	return true
}

// Seed loads previously persisted records without touching the sinks.
// It returns how many records were accepted.
func (s *Store) Seed(records []*candidate.Candidate) int {
	accepted := 0
	for _, c := range records {
		if c != nil && s.insert(c.Clone()) {
			accepted++
		}
	}
	return accepted
}

// insert performs the duplicate check and the append under one lock.
func (s *Store) insert(record *candidate.Candidate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key := record.EmailKey(); key != "" {
		if _, ok := s.emails[key]; ok {
			return false
		}
		s.emails[key] = struct{}{}
	}

	s.records = append(s.records, record)
	return true
}

// All returns copies of the records in insertion order.
func (s *Store) All() []*candidate.Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*candidate.Candidate, 0, len(s.records))
	for _, c := range s.records {
		out = append(out, c.Clone())
	}
	return out
}

// Get looks a record up by email, case-insensitively.
func (s *Store) Get(email string) (*candidate.Candidate, bool) {
	key := candidate.NormalizeEmail(email)
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.records {
		if c.EmailKey() == key {
			return c.Clone(), true
		}
	}
	return nil, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
