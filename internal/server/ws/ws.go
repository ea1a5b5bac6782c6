// Package ws implements the broadcast.Subscriber transport over
// websockets (spec.md §4.K), using github.com/coder/websocket.
package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/taskdog/taskdog/internal/broadcast"
	"github.com/taskdog/taskdog/internal/logger"
	"github.com/taskdog/taskdog/internal/taskdog"
)

const writeTimeout = 5 * time.Second

// Subscriber delivers broadcast.Event values to one websocket
// connection. Deliver is called synchronously by the broadcaster, so
// it must not block longer than the write itself (spec.md §5,
// "delivery... with no retry").
type Subscriber struct {
	conn *websocket.Conn
}

func (s *Subscriber) Deliver(e broadcast.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, s.conn, e)
}

// Handler upgrades incoming requests to websockets and wires each
// connection into core as a broadcast.Subscriber until the client
// disconnects.
func Handler(core *taskdog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			logger.Error(r.Context(), "ws accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		clientID := broadcast.NewClientID()
		sub := &Subscriber{conn: conn}
		unsubscribe := core.Subscribe(clientID, sub)
		defer unsubscribe()

		// Read loop: the only purpose is to detect the client going away
		// (close frame, network error). Messages the client sends are
		// decoded as identifyMessage and then discarded.
		for {
			var msg identifyMessage
			if err := wsjson.Read(r.Context(), conn, &msg); err != nil {
				var closeErr websocket.CloseError
				if errors.As(err, &closeErr) || errors.Is(err, context.Canceled) {
					return
				}
				logger.Debug(r.Context(), "ws read ended", "client_id", clientID, "error", err)
				return
			}
			_ = msg // reserved for future identify handling
		}
	}
}

type identifyMessage struct {
	Type     string `json:"type"`
	UserName string `json:"user_name,omitempty"`
}
