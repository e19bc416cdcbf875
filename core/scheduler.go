package core

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

var (
	timerList   *Timer
	currentTime uint32
)

// timeBefore reports whether a comes before b, tolerating one wrap of the
// 32-bit tick counter.
func timeBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// ScheduleTimer adds a timer to the schedule.
// Timers are only touched from the main loop, so no locking is done here.
func ScheduleTimer(t *Timer) {
	insertTimer(t)
}

// CancelTimer removes t from the schedule if it is queued
func CancelTimer(t *Timer) {
	if timerList == t {
		timerList = t.Next
		t.Next = nil
		return
	}
	for cur := timerList; cur != nil; cur = cur.Next {
		if cur.Next == t {
			cur.Next = t.Next
			t.Next = nil
			return
		}
	}
}

// insertTimer inserts a timer in sorted order by WakeTime
func insertTimer(t *Timer) {
	if timerList == nil || timeBefore(t.WakeTime, timerList.WakeTime) {
		t.Next = timerList
		timerList = t
		return
	}

	current := timerList
	for current.Next != nil && !timeBefore(t.WakeTime, current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// TimerDispatch processes due timers
func TimerDispatch() {
	for timerList != nil && !timeBefore(currentTime, timerList.WakeTime) {
		timer := timerList
		timerList = timer.Next
		timer.Next = nil

		if timer.Handler(timer) == SF_RESCHEDULE {
			insertTimer(timer)
		}
	}
}

// NextWake returns the wake time of the earliest queued timer
func NextWake() (uint32, bool) {
	if timerList == nil {
		return 0, false
	}
	return timerList.WakeTime, true
}

// Every returns a timer that calls fn every period ticks, starting at first.
// fn runs to completion before the next timer is considered.
func Every(first, period uint32, fn func()) *Timer {
	return &Timer{
		WakeTime: first,
		Handler: func(t *Timer) uint8 {
			fn()
			t.WakeTime += period
			// Skip missed periods instead of running fn back to back
			if timeBefore(t.WakeTime, currentTime) {
				t.WakeTime = currentTime + period
			}
			return SF_RESCHEDULE
		},
	}
}

// resetTimers drops every queued timer
func resetTimers() {
	timerList = nil
	currentTime = 0
}
