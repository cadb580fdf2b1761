package scheduler

import "time"

// Clock abstracts wall-clock reads so tick behavior is testable
// without waiting on real time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
