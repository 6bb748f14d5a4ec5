// Package realtime delivers change notifications between the parts of the
// application that write plans and the parts that display them.
//
// Notifications are invalidation hints. Ordering relative to local writes is
// not guaranteed and a slow subscriber loses hints rather than blocking
// publishers; subscribers re-read state on every hint.
package realtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/plangate/internal/logger"
)

// Topics published by the services.
const (
	TopicPlans       = "daily_plans"
	TopicPlanItems   = "daily_plan_items"
	TopicTimeEntries = "time_entries"

	// TopicAll matches every topic, both when subscribing and when publishing.
	TopicAll = "*"
)

// Change operations.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Change sources.
const (
	SourceLocal    = "local"
	SourceExternal = "external"
)

// Change describes a write to a resource topic.
type Change struct {
	Topic  string
	Op     string
	Key    string
	Source string
	At     time.Time
}

const defaultBuffer = 64

// Hub fans published changes out to topic subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool
	wg     sync.WaitGroup
}

// Option configures a Hub.
type Option func(*Hub)

// WithBuffer sets the per-subscription queue length.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: defaultBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscription is a live registration returned by Subscribe. Each subscription
// runs onChange on its own goroutine, one change at a time.
type Subscription struct {
	id      uint64
	topic   string
	hub     *Hub
	ch      chan Change
	dropped atomic.Int64
	once    sync.Once
}

// Topic is the topic this subscription listens to.
func (s *Subscription) Topic() string {
	return s.topic
}

// Dropped counts changes discarded because the subscriber fell behind.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// Close releases the subscription. Safe to call more than once and from
// inside onChange.
func (s *Subscription) Close() {
	s.hub.Close(s)
}

// Subscribe registers onChange for topic. Subscribing to a hub that has been
// shut down returns a subscription that is already closed.
func (h *Hub) Subscribe(topic string, onChange func(Change)) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:    h.nextID,
		topic: topic,
		hub:   h,
		ch:    make(chan Change, h.buffer),
	}
	if h.closed {
		sub.once.Do(func() { close(sub.ch) })
		return sub
	}
	h.subs[sub.id] = sub

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for c := range sub.ch {
			onChange(c)
		}
	}()

	logger.Debug("realtime subscribe", "topic", topic, "id", sub.id)
	return sub
}

// Close unregisters sub and stops its delivery goroutine once queued changes
// are drained.
func (h *Hub) Close(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	delete(h.subs, sub.id)
	h.mu.Unlock()

	sub.once.Do(func() { close(sub.ch) })
}

// Publish queues c for every matching subscriber without blocking. A zero At
// is stamped with the current time.
func (h *Hub) Publish(c Change) {
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}
	if c.Source == "" {
		c.Source = SourceLocal
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for _, sub := range h.subs {
		if !matches(sub.topic, c.Topic) {
			continue
		}
		select {
		case sub.ch <- c:
		default:
			n := sub.dropped.Add(1)
			logger.Debug("realtime change dropped", "topic", c.Topic, "subscriber", sub.id, "dropped", n)
		}
	}
}

// Len reports the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Shutdown closes every subscription and waits for their goroutines to exit.
// Later publishes are ignored.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	subs := h.subs
	h.subs = make(map[uint64]*Subscription)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.once.Do(func() { close(sub.ch) })
	}
	h.wg.Wait()
}

func matches(subTopic, changeTopic string) bool {
	return subTopic == TopicAll || changeTopic == TopicAll || subTopic == changeTopic
}
