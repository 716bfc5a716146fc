package pubsub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackernews-go/app/internal/models"
)

func recvEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev := <-sub.C:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case ev, ok := <-sub.C:
		if ok {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
	}
}

func TestPublishFansOut(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe()
	b := hub.Subscribe()
	defer hub.Unsubscribe(a)
	defer hub.Unsubscribe(b)

	link := &models.Link{LinkID: 1, URL: "https://news.example"}
	hub.Publish(Event{Type: TopicNewLink, Link: link})

	for _, sub := range []*Subscription{a, b} {
		ev := recvEvent(t, sub)
		assert.Equal(t, TopicNewLink, ev.Type)
		require.NotNil(t, ev.Link)
		assert.Equal(t, int64(1), ev.Link.LinkID)
	}
}

func TestTopicFiltering(t *testing.T) {
	hub := NewHub()
	votesOnly := hub.Subscribe(TopicNewVote)
	defer hub.Unsubscribe(votesOnly)

	hub.Publish(Event{Type: TopicNewLink, Link: &models.Link{LinkID: 1}})
	assertNoEvent(t, votesOnly)

	hub.Publish(Event{Type: TopicNewVote, Vote: &models.Vote{VoteID: 7}})
	ev := recvEvent(t, votesOnly)
	assert.Equal(t, TopicNewVote, ev.Type)
}

func TestLateSubscriberMissesEvent(t *testing.T) {
	hub := NewHub()
	hub.Publish(Event{Type: TopicNewLink, Link: &models.Link{LinkID: 1}})

	late := hub.Subscribe()
	defer hub.Unsubscribe(late)
	assertNoEvent(t, late)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe()
	defer hub.Unsubscribe(slow)

	// overfill the buffer; Publish must drop, not block
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish(Event{Type: TopicNewLink, Link: &models.Link{LinkID: int64(i)}})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	hub.Unsubscribe(sub)

	_, ok := <-sub.C
	assert.False(t, ok)

	// double unsubscribe must not panic
	hub.Unsubscribe(sub)

	// publishing after unsubscribe reaches nobody
	hub.Publish(Event{Type: TopicNewVote, Vote: &models.Vote{VoteID: 1}})
}
