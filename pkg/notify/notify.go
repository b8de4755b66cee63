// Package notify keeps short-lived user notices such as "could not load
// relatives" and fans them out to subscribers.
//
// Notices expire on their own after a TTL; nothing has to dismiss them.
// [Center.Active] filters by the caller's clock, so expiry is observable
// without timers.
package notify

import (
	"slices"
	"strconv"
	"sync"
	"time"
)

// DefaultTTL is how long a notice stays visible.
const DefaultTTL = 4 * time.Second

// Level classifies a notice.
type Level string

// Notice levels.
const (
	Info    Level = "info"
	Success Level = "success"
	Error   Level = "error"
)

// Notice is one message.
type Notice struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether n is no longer visible at now.
func (n Notice) Expired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}

// Center stores notices and notifies subscribers. It is safe for concurrent
// use.
type Center struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	seq     int
	notices []Notice
	subs    map[int]chan Notice
	nextSub int
}

// New returns a center; ttl <= 0 means [DefaultTTL].
func New(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{ttl: ttl, now: time.Now, subs: make(map[int]chan Notice)}
}

// TTL returns the visibility period.
func (c *Center) TTL() time.Duration { return c.ttl }

// Push records a notice and delivers it to subscribers. Subscribers that
// are not keeping up miss the notice rather than block the caller.
func (c *Center) Push(level Level, message string) Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.seq++
	n := Notice{
		ID:        strconv.Itoa(c.seq),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.notices = slices.DeleteFunc(c.notices, func(o Notice) bool { return o.Expired(now) })
	c.notices = append(c.notices, n)

	for _, ch := range c.subs {
		select {
		case ch <- n:
		default:
		}
	}
	return n
}

// Active returns the notices visible at now, oldest first.
func (c *Center) Active(now time.Time) []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Notice
	for _, n := range c.notices {
		if !n.Expired(now) {
			out = append(out, n)
		}
	}
	return out
}

// Dismiss removes a notice early and reports whether it existed.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.notices)
	c.notices = slices.DeleteFunc(c.notices, func(n Notice) bool { return n.ID == id })
	return len(c.notices) != before
}

// Subscribe returns a channel of new notices and a function that ends the
// subscription and closes the channel.
func (c *Center) Subscribe() (<-chan Notice, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Notice, 16)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}
