package session

import "time"

// Flash is a display flag that switches itself off after a countdown.
type Flash struct {
	remaining time.Duration
}

func (f *Flash) Raise(d time.Duration) {
	f.remaining = d
}

func (f *Flash) Clear() {
	f.remaining = 0
}

func (f *Flash) Active() bool {
	return f.remaining > 0
}

func (f *Flash) Remaining() time.Duration {
	return f.remaining
}

func (f *Flash) tick(dt time.Duration) {
	if f.remaining <= 0 {
		return
	}
	f.remaining -= dt
	if f.remaining < 0 {
		f.remaining = 0
	}
}
