package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/hackernews-go/app/internal/pubsub"
)

// Subscribe opens the subscription socket and invokes onEvent for each
// pushed event until the context is cancelled or the connection drops.
// Delivery is best-effort; events published before the dial completes
// are never seen.
func (c *Client) Subscribe(ctx context.Context, onEvent func(pubsub.Event)) error {
	wsURL := strings.Replace(c.BaseURL, "http", "ws", 1) + "/api/subscribe"

	header := http.Header{}
	if c.Token != "" {
		header.Set("Authorization", "Bearer "+c.Token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return &APIError{Status: resp.StatusCode, Message: "invalid or missing token"}
		}
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var ev pubsub.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		onEvent(ev)
	}
}

// ApplyEvent reconciles a pushed event into the cache: newLink merges
// at the head (idempotently), newVote replaces the affected link's
// vote list.
func (fc *FeedCache) ApplyEvent(ev pubsub.Event) {
	switch ev.Type {
	case pubsub.TopicNewLink:
		if ev.Link != nil {
			fc.MergeNewLink(*ev.Link)
		}
	case pubsub.TopicNewVote:
		if ev.Link != nil {
			fc.ReplaceVotes(ev.Link.LinkID, ev.Link.Votes)
		}
	}
}
