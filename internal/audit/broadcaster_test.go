package audit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aridelmo/argus/internal/models"
)

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster(4)

	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel1()
	defer cancel2()
	assert.Equal(t, 2, b.Subscribers())

	b.Publish(models.AuditRecord{UUID: "rec-1"})

	assert.Equal(t, "rec-1", (<-ch1).UUID)
	assert.Equal(t, "rec-1", (<-ch2).UUID)
}

func TestBroadcaster_SlowSubscriberNeverBlocks(t *testing.T) {
	b := NewBroadcaster(2)

	ch, cancel := b.Subscribe()
	defer cancel()

	// Publish well past the buffer; the publisher must not block and the
	// oldest events must be the ones dropped.
	for i := 0; i < 10; i++ {
		b.Publish(models.AuditRecord{UUID: fmt.Sprintf("rec-%d", i)})
	}

	assert.Equal(t, "rec-8", (<-ch).UUID)
	assert.Equal(t, "rec-9", (<-ch).UUID)
	select {
	case rec := <-ch:
		t.Fatalf("unexpected extra event %s", rec.UUID)
	default:
	}
}

func TestBroadcaster_CancelClosesChannel(t *testing.T) {
	b := NewBroadcaster(2)

	ch, cancel := b.Subscribe()
	cancel()
	assert.Equal(t, 0, b.Subscribers())

	_, ok := <-ch
	assert.False(t, ok)

	// Cancel is safe to call twice.
	cancel()

	// Publishing with no subscribers is a no-op.
	b.Publish(models.AuditRecord{UUID: "rec"})
}

func TestBroadcaster_LateSubscriberGetsNoReplay(t *testing.T) {
	b := NewBroadcaster(2)
	b.Publish(models.AuditRecord{UUID: "before"})

	ch, cancel := b.Subscribe()
	defer cancel()

	select {
	case rec := <-ch:
		t.Fatalf("unexpected replayed event %s", rec.UUID)
	default:
	}

	b.Publish(models.AuditRecord{UUID: "after"})
	require.Equal(t, "after", (<-ch).UUID)
}
