package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestStreamPublishSubscribe(t *testing.T) {
	s := NewStreamService(zap.NewNop())

	events, cancel := s.Subscribe()
	defer cancel()
	assert.Equal(t, 1, s.SubscriberCount())

	s.Publish("signal", map[string]string{"symbol": "BTCUSDT"})

	select {
	case event := <-events:
		assert.Equal(t, "signal", event.Type)
		assert.Contains(t, string(event.Data), "BTCUSDT")
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}
}

func TestStreamCancelRemovesSubscriber(t *testing.T) {
	s := NewStreamService(zap.NewNop())

	_, cancel := s.Subscribe()
	_, cancel2 := s.Subscribe()
	assert.Equal(t, 2, s.SubscriberCount())

	cancel()
	assert.Equal(t, 1, s.SubscriberCount())

	// Double cancel is harmless.
	cancel()
	assert.Equal(t, 1, s.SubscriberCount())

	cancel2()
	assert.Equal(t, 0, s.SubscriberCount())
}

func TestStreamSlowSubscriberDoesNotBlock(t *testing.T) {
	s := NewStreamService(zap.NewNop())

	_, cancel := s.Subscribe()
	defer cancel()

	// Publish far more events than the subscriber buffer holds; Publish must
	// not block even though nobody is reading.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Publish("heartbeat", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
