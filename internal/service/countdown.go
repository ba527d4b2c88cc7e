package service

import (
	"fmt"
	"sync"
	"time"
)

// Urgency thresholds for the countdown display.
const (
	WarningThreshold  = 5 * time.Minute
	CriticalThreshold = time.Minute
)

// Urgency levels reported with every tick.
const (
	UrgencyNormal   = "normal"
	UrgencyWarning  = "warning"
	UrgencyCritical = "critical"
)

// Tick is one countdown update.
type Tick struct {
	RemainingSeconds int    `json:"remaining_seconds"`
	Display          string `json:"display"`
	Urgency          string `json:"urgency"`
	Expired          bool   `json:"expired"`
}

// NewTick formats the remaining time as MM:SS with an urgency level.
func NewTick(remaining time.Duration) Tick {
	if remaining < 0 {
		remaining = 0
	}
	secs := int(remaining / time.Second)

	urgency := UrgencyNormal
	switch {
	case remaining <= CriticalThreshold:
		urgency = UrgencyCritical
	case remaining <= WarningThreshold:
		urgency = UrgencyWarning
	}

	return Tick{
		RemainingSeconds: secs,
		Display:          fmt.Sprintf("%02d:%02d", secs/60, secs%60),
		Urgency:          urgency,
		Expired:          secs == 0,
	}
}

// Countdown fires onTick every interval with the time left, and onExpire once
// when it reaches zero. Remaining time is recomputed from the deadline on every
// tick, so a slow tick never drifts the deadline.
type Countdown struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewCountdown() *Countdown {
	return &Countdown{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start launches the ticker goroutine. Call it once.
func (c *Countdown) Start(interval time.Duration, remaining func() time.Duration, onTick func(time.Duration), onExpire func()) {
	go c.run(interval, remaining, onTick, onExpire)
}

func (c *Countdown) run(interval time.Duration, remaining func() time.Duration, onTick func(time.Duration), onExpire func()) {
	defer close(c.done)

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			left := remaining()
			if left < 0 {
				left = 0
			}
			onTick(left)
			if left == 0 {
				onExpire()
				return
			}
		}
	}
}

// Stop signals the goroutine to exit. It does not wait, so it is safe to call
// while holding locks the callbacks also take; use Done to wait.
func (c *Countdown) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Done is closed once the goroutine has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
