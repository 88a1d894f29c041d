package scheduler

import (
	"sync"
	"time"
)

// onceSchedule is a cron.Schedule that fires a single time at a fixed instant. A target in
// the past fires as soon as the engine picks the entry up.
type onceSchedule struct {
	at time.Time

	mu     sync.Mutex
	issued bool
}

func newOnceSchedule(at time.Time) *onceSchedule {
	return &onceSchedule{at: at}
}

// Next returns the target on the first call and the zero time afterwards, which the cron
// engine treats as "never again".
func (s *onceSchedule) Next(time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.issued {
		return time.Time{}
	}
	s.issued = true
	return s.at
}
