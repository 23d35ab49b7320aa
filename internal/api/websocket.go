package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Browser origin policy is enforced by the CORS layer for the REST
		// endpoints; the stream carries public market data only.
		return true
	},
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

// wsSubscribe is the client message that retargets the stream.
type wsSubscribe struct {
	Symbol        string `json:"symbol"`
	Timeframe     string `json:"timeframe"`
	SignalType    string `json:"signalType"`
	RiskTolerance string `json:"riskTolerance"`
}

// handleWebSocket streams a refreshed signal for one symbol at the
// configured interval. Initial parameters come from the query string; the
// client may send a subscribe message at any time to switch targets.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	params := signalParams{
		Symbol:        c.Query("symbol"),
		Timeframe:     c.Query("timeframe"),
		SignalType:    c.Query("signalType"),
		RiskTolerance: c.Query("riskTolerance"),
	}
	params.normalize()

	interval := time.Duration(s.stream.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	updates := make(chan signalParams, 1)
	done := make(chan struct{})

	go s.wsReadPump(conn, updates, done)

	ticker := time.NewTicker(interval)
	pinger := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	defer pinger.Stop()

	// First push goes out immediately so the client is not left waiting a
	// full interval for its initial signal.
	if !s.wsPush(conn, params) {
		return
	}

	for {
		select {
		case <-done:
			return
		case next := <-updates:
			next.normalize()
			params = next
			if !s.wsPush(conn, params) {
				return
			}
		case <-ticker.C:
			if !s.wsPush(conn, params) {
				return
			}
		case <-pinger.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// wsReadPump consumes client messages, forwarding subscribe requests and
// closing done when the connection drops.
func (s *Server) wsReadPump(conn *websocket.Conn, updates chan<- signalParams, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		var sub wsSubscribe
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		next := signalParams{
			Symbol:        sub.Symbol,
			Timeframe:     sub.Timeframe,
			SignalType:    sub.SignalType,
			RiskTolerance: sub.RiskTolerance,
		}
		select {
		case updates <- next:
		default:
			// Drop the update if a previous one is still pending
		}
	}
}

// wsPush generates and writes one signal frame. Returns false when the
// connection is no longer writable.
func (s *Server) wsPush(conn *websocket.Conn, params signalParams) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	resp := s.generateSignal(ctx, params, nil)
	cancel()

	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(resp); err != nil {
		s.logger.Debug().Err(err).Msg("websocket write failed, closing stream")
		return false
	}
	return true
}
