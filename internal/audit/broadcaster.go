package audit

import (
	"sync"

	"github.com/aridelmo/argus/internal/metrics"
	"github.com/aridelmo/argus/internal/models"
)

// DefaultEventBuffer is the per-subscriber queue size used when none is
// configured.
const DefaultEventBuffer = 16

// Broadcaster fans out newly appended audit records to connected observers.
// Delivery is at-most-once with no replay: a slow subscriber loses its oldest
// queued events rather than back-pressuring the pipeline, and reconnecting
// observers are expected to re-fetch recent history from the audit log.
type Broadcaster struct {
	buffer int

	mu     sync.Mutex
	nextID int
	subs   map[int]chan models.AuditRecord
}

// NewBroadcaster creates a Broadcaster with the given per-subscriber buffer.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &Broadcaster{
		buffer: buffer,
		subs:   make(map[int]chan models.AuditRecord),
	}
}

// Subscribe registers an observer. The returned cancel func must be called
// when the observer disconnects; it closes the channel.
func (b *Broadcaster) Subscribe() (<-chan models.AuditRecord, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan models.AuditRecord, b.buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers a copy of the record to every subscriber without ever
// blocking. On a full queue the oldest pending event is dropped to make room.
func (b *Broadcaster) Publish(rec models.AuditRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- rec:
			continue
		default:
		}

		// Queue full: evict the oldest event, then retry once. If another
		// goroutine won the race, drop this event instead.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- rec:
		default:
		}
		metrics.IncEventDropped()
	}
}

// Subscribers reports the number of connected observers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
