package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/model"
	"github.com/stemsi/kbtrainer/internal/service"
	ws "github.com/stemsi/kbtrainer/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the exam countdown.
type WSHandler struct {
	examService *service.ExamSessionService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(examService *service.ExamSessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		examService: examService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// ExamCountdownStream godoc
// WS /ws/v1/exam/countdown
// Pushes a tick every interval while the exam runs. The client may send
// "ping" or "sync"; anything else gets an error event.
func (h *WSHandler) ExamCountdownStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	// gorilla allows one concurrent writer, so every write goes through out.
	out := make(chan interface{}, 8)
	done := make(chan struct{})
	defer close(done)

	push := func(v interface{}) {
		select {
		case out <- v:
		case <-done:
		default:
			// slow client; the next tick supersedes this one
		}
	}

	unsubscribe := h.examService.Subscribe(func(t service.Tick) {
		push(tickResponse(t))
		if t.Expired {
			push(h.stateResponse())
		}
	})
	defer unsubscribe()

	go h.writeLoop(conn, out, done)

	push(h.stateResponse())
	h.log.Debug().Msg("Countdown client connected")

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Msg("Unexpected close")
			} else {
				h.log.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			push(ws.PongResponse{Event: ws.EventPong})
		case ws.ActionSync:
			if h.examService.State() == model.ExamStateInProgress {
				push(tickResponse(service.NewTick(h.examService.Remaining())))
			} else {
				push(h.stateResponse())
			}
		default:
			push(ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)})
		}
	}
}

func (h *WSHandler) writeLoop(conn *websocket.Conn, out <-chan interface{}, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case v := <-out:
			if err := ws.WriteTyped(conn, v); err != nil {
				h.log.Debug().Err(err).Msg("Countdown write failed")
				conn.Close()
				return
			}
		}
	}
}

func (h *WSHandler) stateResponse() ws.StateResponse {
	return ws.StateResponse{
		Event:            ws.EventState,
		State:            string(h.examService.State()),
		RemainingSeconds: int(h.examService.Remaining().Seconds()),
	}
}

func tickResponse(t service.Tick) ws.TickResponse {
	return ws.TickResponse{
		Event:            ws.EventTick,
		RemainingSeconds: t.RemainingSeconds,
		Display:          t.Display,
		Urgency:          t.Urgency,
		Expired:          t.Expired,
	}
}
