package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level mirrors the toast variants the presentation layer renders.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

const (
	defaultDuration = 3 * time.Second
	errorDuration   = 4 * time.Second
	defaultCapacity = 64
)

// Prompt attaches a binary choice to a notification.
// The answer is delivered back through the policy reactor by ID.
type Prompt struct {
	ID      string
	Choices []string
}

// Notification is one entry for the presentation layer.
// A negative Duration keeps it on screen until dismissed.
type Notification struct {
	ID        string
	Level     Level
	Message   string
	Duration  time.Duration
	Prompt    *Prompt
	CreatedAt time.Time
}

// DurationFor returns the default display time for a level.
func DurationFor(level Level) time.Duration {
	if level == LevelError {
		return errorDuration
	}
	return defaultDuration
}

// Queue is a bounded FIFO of notifications. When full the oldest entry without
// a prompt is dropped; a new plain entry is dropped when only prompts are queued.
type Queue struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	dropped  int
}

// NewQueue builds a queue holding at most capacity entries.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{capacity: capacity}
}

// Push enqueues n, filling in ID, duration and timestamp when unset, and returns the stored entry.
func (q *Queue) Push(n Notification) Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Level == "" {
		n.Level = LevelInfo
	}
	if n.Duration == 0 {
		n.Duration = DurationFor(n.Level)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.capacity && !q.evictOldest() && n.Prompt == nil {
		q.dropped++
		return n
	}
	q.items = append(q.items, n)
	return n
}

// evictOldest drops the oldest entry without a prompt. Prompts stay queued
// until drained since their answer is still awaited.
func (q *Queue) evictOldest() bool {
	for i, item := range q.items {
		if item.Prompt != nil {
			continue
		}
		q.items = append(q.items[:i], q.items[i+1:]...)
		q.dropped++
		return true
	}
	return false
}

// Drain removes and returns every queued notification in arrival order.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len reports how many notifications are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped reports how many notifications were discarded because the queue was full.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
