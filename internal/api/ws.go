package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shij-yuan/lucky-draw/internal/store"
	"github.com/shij-yuan/lucky-draw/internal/wheel"
)

// Live wheel session over websocket.
//
// The client streams gesture events (start/move/end in the configured wheel
// coordinate space, or a programmatic "spin"); the server owns the wheel,
// ticks it at the fixed 16ms cadence, and streams rotation frames back. On
// settle it records the draw and sends a final "settle" frame.
//
// One wheel per connection, owned entirely by the session goroutine; a reader
// goroutine only forwards decoded events into a channel, so no wheel state is
// shared (single-owner, like the gesture/tick contract of the core).

const (
	wsWriteWait  = 5 * time.Second
	wsTickEvery  = 16 * time.Millisecond
	wsEventDepth = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The widget is served from arbitrary origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEnvelope is the wire format for all session messages.
type wsEnvelope struct {
	Type string      `json:"type"`
	Ts   time.Time   `json:"ts"`
	Data interface{} `json:"data,omitempty"`
}

// wsGesture is an inbound client event.
type wsGesture struct {
	Type     string  `json:"type"` // "start", "move", "end", "spin", "stop"
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Velocity float64 `json:"velocity,omitempty"`
}

// wsFrame is one outbound rotation frame.
type wsFrame struct {
	Rotation float64 `json:"rotation"`
	Velocity float64 `json:"velocity"`
	Dragging bool    `json:"dragging"`
	Spinning bool    `json:"spinning"`
}

// wsSettle is the final frame of a spin.
type wsSettle struct {
	WinnerIndex int         `json:"winner_index"`
	Prize       store.Prize `json:"prize"`
	Draw        store.Draw  `json:"draw"`
}

// handleSpinLive upgrades to a websocket and runs a live wheel session.
func (s *Server) handleSpinLive(w http.ResponseWriter, r *http.Request) {
	prizes, err := s.db.ListPrizes()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "failed to load prizes", nil)
		return
	}
	if len(prizes) < minPrizes {
		s.writeError(w, r, http.StatusConflict, ErrTypeConflict, "not enough prizes configured to spin", nil)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("ws_upgrade_failed error=%q", err)
		return
	}
	defer conn.Close()

	wh, err := wheel.New(len(prizes), wheel.Config{
		CenterX: s.cfg.WheelCenterX,
		CenterY: s.cfg.WheelCenterY,
		Radius:  s.cfg.WheelRadius,
		Rand:    s.newRand(),
	})
	if err != nil {
		s.logger.Printf("ws_wheel_init_failed error=%q", err)
		return
	}

	done := make(chan struct{})
	defer close(done)

	events := make(chan wsGesture, wsEventDepth)
	go func() {
		defer close(events)
		for {
			var g wsGesture
			if err := conn.ReadJSON(&g); err != nil {
				return
			}
			if !forwardGesture(events, g, done) {
				return
			}
		}
	}()

	if err := s.wsSend(conn, "session_init", PrizesResponse{Prizes: prizes}); err != nil {
		return
	}

	ticker := time.NewTicker(wsTickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case g, ok := <-events:
			if !ok {
				return
			}
			switch g.Type {
			case "start":
				wh.Start(g.X, g.Y)
			case "move":
				wh.Move(g.X, g.Y)
			case "end":
				wh.End()
			case "spin":
				if err := wh.Launch(g.Velocity); err != nil {
					if sendErr := s.wsSend(conn, "error", map[string]string{"message": err.Error()}); sendErr != nil {
						return
					}
				}
			case "stop":
				wh.Stop()
			}

		case <-ticker.C:
			winner, settled := wh.Tick()
			if settled {
				prize := prizes[winner]
				draw := s.recordDraw(prize)
				s.logger.Printf("ws_spin_settled winner=%d prize=%q", winner, prize.Label)
				if err := s.wsSend(conn, "settle", wsSettle{WinnerIndex: winner, Prize: prize, Draw: draw}); err != nil {
					return
				}
			}
			if wh.Dragging() || wh.Spinning() || settled {
				frame := wsFrame{
					Rotation: wh.Rotation(),
					Velocity: wh.Velocity(),
					Dragging: wh.Dragging(),
					Spinning: wh.Spinning(),
				}
				if err := s.wsSend(conn, "frame", frame); err != nil {
					return
				}
			}
		}
	}
}

// forwardGesture queues one inbound event for the session loop. When the
// session lags, move events are dropped (the next move supersedes), but
// control events (start, end, spin, stop) must not be lost, so they wait for
// the session to drain. Returns false once the session is gone.
func forwardGesture(events chan<- wsGesture, g wsGesture, done <-chan struct{}) bool {
	if g.Type == "move" {
		select {
		case events <- g:
		default:
		}
		return true
	}
	select {
	case events <- g:
		return true
	case <-done:
		return false
	}
}

// wsSend writes one envelope with a deadline; a slow client is disconnected
// rather than allowed to stall the session.
func (s *Server) wsSend(conn *websocket.Conn, msgType string, data interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(wsEnvelope{Type: msgType, Ts: time.Now().UTC(), Data: data})
}
