package models

import (
	"strconv"
	"sync"
	"time"
)

// IDSource issues record ids derived from wall-clock milliseconds.
// Ids are strictly increasing within a process, so two records created in the
// same millisecond still get distinct ids.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDSource returns an IDSource reading the system clock.
func NewIDSource() *IDSource {
	return &IDSource{now: time.Now}
}

// NewIDSourceWithClock is used by tests that need deterministic ids.
func NewIDSourceWithClock(now func() time.Time) *IDSource {
	return &IDSource{now: now}
}

// Next returns a new id and the millisecond timestamp it was derived from.
// The timestamp doubles as the record's creation time.
func (s *IDSource) Next() (string, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.now().UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return strconv.FormatInt(ms, 10), ms
}
