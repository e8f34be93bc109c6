package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"greenhouse_control/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000

	// failsafeWatch is how quickly a flag change is pushed, whatever the status interval.
	failsafeWatch = 200 * time.Millisecond
)

// Message types on /api/ws.
const (
	wsTypeStatus   = "status"
	wsTypeFailsafe = "failsafe"
)

type wsEnvelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// wsStatus is the payload of a "status" message. Sensors is omitted while no
// fresh reading is held.
type wsStatus struct {
	Status    models.SystemStatus    `json:"status"`
	Sensors   *models.SensorReading  `json:"sensors,omitempty"`
	Actuators []models.ActuatorState `json:"actuators"`
}

// Any origin is accepted; the handshake is already gated by the bearer token.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsStream is one connected client. lastFailsafe is what the client last saw.
type wsStream struct {
	h            *Handler
	conn         *websocket.Conn
	lastFailsafe models.FailsafeStatus
}

// @Summary      Live status stream
// @Description  WebSocket upgrade. Sends a "status" message immediately and then every interval (?interval=2s or ?interval_ms=2000, max 10s). A "failsafe" message carrying the three flags is pushed as soon as any flag changes.
// @Tags         system
// @Param        interval     query  string  false  "Go duration, e.g. 500ms"
// @Param        interval_ms  query  int     false  "Interval in milliseconds"
// @Success      101
// @Failure      401  {object}  ErrorResponse
// @Router       /api/ws [get]
// @Security     BearerAuth
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	closed := make(chan struct{})
	go h.startReader(conn, closed)

	s := &wsStream{h: h, conn: conn}
	if err := s.run(c.Request.Context(), interval, closed); err != nil {
		h.log.Infow("ws_stream_closed", "err", err)
	}
}

func (s *wsStream) run(ctx context.Context, interval time.Duration, closed <-chan struct{}) error {
	status := time.NewTicker(interval)
	defer status.Stop()
	watch := time.NewTicker(failsafeWatch)
	defer watch.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := s.sendStatus(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-closed:
			return nil
		case <-ctx.Done():
			return nil
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-watch.C:
			if fs := s.h.services.Status(); fs != s.lastFailsafe {
				if err := s.write(wsTypeFailsafe, fs); err != nil {
					return err
				}
				s.lastFailsafe = fs
			}
		case <-status.C:
			if err := s.sendStatus(ctx); err != nil {
				return err
			}
		}
	}
}

func (s *wsStream) sendStatus(ctx context.Context) error {
	msg := wsStatus{
		Status:    s.h.services.Snapshot(ctx),
		Actuators: s.h.services.Actuators.List(),
	}
	if reading, err := s.h.services.Latest(); err == nil {
		msg.Sensors = &reading
	}
	if err := s.write(wsTypeStatus, msg); err != nil {
		return err
	}
	s.lastFailsafe = msg.Status.Failsafe
	return nil
}

func (s *wsStream) write(typ string, data any) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(wsEnvelope{Type: typ, Data: data, Timestamp: timestamp()})
}

// parseInterval reads ?interval=2s or ?interval_ms=2000, falling back to one
// second when neither is valid or the value exceeds maxInterval.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultInterval
}

// startReader drains client frames so pongs are processed and a close is noticed.
func (h *Handler) startReader(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Debugw("ws_read_closed", "err", err)
			return
		}
	}
}
