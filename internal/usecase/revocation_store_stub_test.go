package usecase

import (
	"context"
	"time"
)

type stubRevocationStore struct {
	entries map[string]bool
	errors  struct {
		mark  error
		check error
	}
	marks  []string
	checks []string
}

func (s *stubRevocationStore) MarkRevoked(_ context.Context, jti string, _ time.Duration) error {
	s.marks = append(s.marks, jti)
	if s.errors.mark != nil {
		return s.errors.mark
	}
	if s.entries == nil {
		s.entries = make(map[string]bool)
	}
	s.entries[jti] = true
	return nil
}

func (s *stubRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.checks = append(s.checks, jti)
	if s.errors.check != nil {
		return false, s.errors.check
	}
	if s.entries == nil {
		return false, nil
	}
	return s.entries[jti], nil
}

type stubRevocationMetrics struct {
	hits      int
	misses    int
	checkErrs int
	marks     int
	durations []time.Duration
}

func (s *stubRevocationMetrics) IncCheckHit() { s.hits++ }

func (s *stubRevocationMetrics) IncCheckMiss() { s.misses++ }

func (s *stubRevocationMetrics) IncCheckError() { s.checkErrs++ }

func (s *stubRevocationMetrics) IncMark() { s.marks++ }

func (s *stubRevocationMetrics) ObserveCheckDuration(d time.Duration) {
	s.durations = append(s.durations, d)
}
