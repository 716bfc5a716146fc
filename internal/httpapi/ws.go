package httpapi

// long-lived subscription socket: upgrades the request and forwards
// hub events as JSON frames until the client goes away

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	// the browser client connects cross-origin during development
	CheckOrigin: func(*http.Request) bool { return true },
}

func (h *Router) subscribeHandler(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sub := h.hub.Subscribe()
	log.Debug().Str("subscriber", sub.ID.String()).Msg("subscriber connected")

	done := make(chan struct{})

	// reader exists only to notice the peer closing the connection
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() {
			h.hub.Unsubscribe(sub)
			conn.Close()
			log.Debug().Str("subscriber", sub.ID.String()).Msg("subscriber disconnected")
		}()
		for {
			select {
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	return nil
}
