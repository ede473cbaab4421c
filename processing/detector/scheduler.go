package processing

import "time"

type Scheduler interface {
	After(d time.Duration, fn func())
}

// TimerScheduler runs fn on its own goroutine once d has elapsed.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}
