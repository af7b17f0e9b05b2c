// internal/httpserver/ws.go
//
// Websocket scratch stream: GET /rounds/{id}/scratch/ws.
// The client sends pointer events {"x":..,"y":..}; every event
// is applied to the round and answered with {"type":"scratch", ...delta}.
// A read pump and a write pump per connection; the write pump also pings.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flickguess/internal/canvas"
	"github.com/robalobadob/flickguess/internal/round"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

type scratchEvent struct {
	Type       string `json:"type"`
	canvas.Delta
	StatusText string `json:"statusText"`
}

type scratchClient struct {
	srv   *Server
	round *round.Round
	conn  *websocket.Conn
	send  chan []byte
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == s.cfg.ClientOrigin
		},
	}
}

func (s *Server) handleScratchWS(w http.ResponseWriter, r *http.Request) {
	rd := s.lookup(w, r)
	if rd == nil {
		return
	}
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("round", rd.ID).Msg("websocket upgrade")
		return
	}
	c := &scratchClient{srv: s, round: rd, conn: conn, send: make(chan []byte, 64)}
	go c.writePump()
	c.readPump()
}

// readPump applies incoming events until the peer goes away; closing send
// stops the write pump.
func (c *scratchClient) readPump() {
	defer close(c.send)

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("round", c.round.ID).Msg("scratch stream closed")
			}
			return
		}
		var req scratchReq
		if err := json.Unmarshal(msg, &req); err != nil {
			c.queue([]byte(`{"type":"error","error":"bad_json"}`))
			continue
		}
		d := c.srv.scratch(c.round, req)
		out, _ := json.Marshal(scratchEvent{Type: "scratch", Delta: d, StatusText: c.round.View().StatusText})
		c.queue(out)
	}
}

// queue drops the message when the writer is backed up; the next event
// carries the current totals anyway.
func (c *scratchClient) queue(msg []byte) {
	select {
	case c.send <- msg:
	default:
	}
}

func (c *scratchClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
