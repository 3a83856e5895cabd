package app

import (
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/oulpan/internal/session"
)

// timerFiredMsg carries a session timer callback into the event loop.
type timerFiredMsg struct {
	fire func()
}

// Clock is a session.Clock whose callbacks run inside the Bubble Tea
// update loop, so screens never render while a timer is mutating the
// controller. Until Bind is called callbacks run on the timer goroutine.
type Clock struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

var _ session.Clock = (*Clock)(nil)

// NewClock returns an unbound clock.
func NewClock() *Clock {
	return &Clock{}
}

// Bind routes future callbacks through send, normally tea.Program.Send.
func (c *Clock) Bind(send func(tea.Msg)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.send = send
}

func (c *Clock) AfterFunc(d time.Duration, f func()) session.Timer {
	return time.AfterFunc(d, func() {
		c.mu.Lock()
		send := c.send
		c.mu.Unlock()
		if send == nil {
			f()
			return
		}
		send(timerFiredMsg{fire: f})
	})
}
