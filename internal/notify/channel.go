package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind labels a user-facing message.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindNormal  Kind = "normal"
)

// Message is a transient user-facing notification.
type Message struct {
	ID   string
	Text string
	Kind Kind
	At   time.Time
}

// Channel holds transient notifications that expire after a fixed TTL.
// Expired messages are pruned on read, so no background timer is needed.
type Channel struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	msgs []Message
}

const defaultTTL = 8 * time.Second

// NewChannel creates a channel whose messages live for ttl. A zero ttl
// falls back to the default.
func NewChannel(ttl time.Duration) *Channel {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Channel{ttl: ttl, now: time.Now}
}

// Push appends a message.
func (c *Channel) Push(text string, kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, Message{
		ID:   uuid.New().String(),
		Text: text,
		Kind: kind,
		At:   c.now(),
	})
}

// Active returns messages that have not yet expired, oldest first.
func (c *Channel) Active() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune()
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// Dismiss removes a single message by id before its TTL elapses.
func (c *Channel) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.msgs[:0]
	for _, m := range c.msgs {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	c.msgs = kept
}

// Clear drops all messages, e.g. on session reset.
func (c *Channel) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = nil
}

// SetClock replaces the wall clock, for tests.
func (c *Channel) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Channel) prune() {
	cutoff := c.now().Add(-c.ttl)
	kept := c.msgs[:0]
	for _, m := range c.msgs {
		if m.At.After(cutoff) {
			kept = append(kept, m)
		}
	}
	c.msgs = kept
}
