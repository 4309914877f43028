package service

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StreamService is the fan-out hub behind the SSE endpoint. Subscribers get
// every published event; slow subscribers are dropped rather than blocking
// the publisher.
type StreamService struct {
	logger *zap.Logger

	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

func NewStreamService(logger *zap.Logger) *StreamService {
	return &StreamService{
		logger:      logger,
		subscribers: make(map[chan Event]struct{}),
	}
}

// Event is one server-sent event.
type Event struct {
	Type string          `json:"type"` // signal/trade/position/status/heartbeat
	Data json.RawMessage `json:"data"`
	Time time.Time       `json:"time"`
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called when the subscriber goes away.
func (s *StreamService) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Publish sends an event to every subscriber. Events to subscribers with a
// full buffer are dropped.
func (s *StreamService) Publish(eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to marshal stream event", zap.Error(err))
		return
	}

	event := Event{Type: eventType, Data: data, Time: time.Now()}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (s *StreamService) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
