// Package pubsub is an in-process topic bus for link and vote events.
// Delivery is best-effort: only subscribers connected at publish time
// receive an event, and a subscriber that cannot keep up has events
// dropped rather than blocking the publisher.
package pubsub

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hackernews-go/app/internal/models"
)

type Topic string

const (
	TopicNewLink Topic = "newLink"
	TopicNewVote Topic = "newVote"
)

// Event is the wire shape pushed to subscribers. Link is set for
// newLink events; Vote plus its parent Link for newVote events.
type Event struct {
	Type Topic        `json:"type"`
	Link *models.Link `json:"link,omitempty"`
	Vote *models.Vote `json:"vote,omitempty"`
}

const subscriberBuffer = 16

type Subscription struct {
	ID     uuid.UUID
	C      <-chan Event
	c      chan Event
	topics map[Topic]bool
}

// Matches reports whether the subscription asked for the given topic.
func (s *Subscription) Matches(topic Topic) bool {
	return s.topics[topic]
}

type Hub struct {
	mu   sync.Mutex
	subs map[uuid.UUID]*Subscription
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[uuid.UUID]*Subscription),
	}
}

// Subscribe registers interest in the given topics (all topics when
// none are named) and returns a subscription whose channel receives
// matching events until Unsubscribe.
func (h *Hub) Subscribe(topics ...Topic) *Subscription {
	if len(topics) == 0 {
		topics = []Topic{TopicNewLink, TopicNewVote}
	}

	sub := &Subscription{
		ID:     uuid.New(),
		c:      make(chan Event, subscriberBuffer),
		topics: make(map[Topic]bool, len(topics)),
	}
	sub.C = sub.c
	for _, t := range topics {
		sub.topics[t] = true
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscription and closes its channel.
// Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.ID]; !ok {
		return
	}
	delete(h.subs, sub.ID)
	close(sub.c)
}

// Publish fans the event out to matching subscribers without blocking.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if !sub.Matches(ev.Type) {
			continue
		}
		select {
		case sub.c <- ev:
		default:
			log.Warn().
				Str("subscriber", sub.ID.String()).
				Str("topic", string(ev.Type)).
				Msg("dropping event for slow subscriber")
		}
	}
}
