package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishAppendsToLogAndFansOut(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe(4)

	b.Publish(OrderCreated{OrderID: 1})
	b.Publish(OrderCancelled{OrderID: 1})

	assert.Len(t, b.Events(), 2)

	select {
	case e := <-ch:
		assert.Equal(t, "OrderCreated", e.Name())
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestSubscribeDropsRatherThanBlocksWhenFull(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe(1)

	b.Publish(OrderCreated{OrderID: 1})
	b.Publish(OrderCreated{OrderID: 2}) // channel full, should be dropped, not block

	assert.Len(t, b.Events(), 2, "the log records every event regardless of subscriber backpressure")
	<-ch // drains the one buffered event; a second receive would block forever if present
}

func TestEventsReturnsASnapshotCopy(t *testing.T) {
	b := NewBus()
	b.Publish(OrderCreated{OrderID: 1})

	snap := b.Events()
	snap[0] = OrderCreated{OrderID: 999}

	assert.Equal(t, uint64(1), b.Events()[0].(OrderCreated).OrderID)
}
