package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/junholee/matching-engine/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// DepthStream pushes depth snapshots to websocket clients on a fixed
// interval. Each connection polls the lock-free snapshot cache, so any number
// of subscribers costs the matching engines nothing.
type DepthStream struct {
	svc      *service.OrderService
	interval time.Duration
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewDepthStream creates a stream with the given push interval.
func NewDepthStream(svc *service.OrderService, interval time.Duration, log *zap.Logger) *DepthStream {
	return &DepthStream{
		svc:      svc,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log.Named("stream"),
	}
}

// Serve upgrades the request and streams depth for the symbol until the
// client goes away.
func (ds *DepthStream) Serve(c *gin.Context) {
	symbol := c.Param("symbol")
	if _, err := ds.svc.GetBookDepth(symbol); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	conn, err := ds.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		ds.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	go ds.writeLoop(conn, symbol)
	ds.readLoop(conn)
}

// writeLoop pushes the current snapshot every interval and pings to detect
// dead peers.
func (ds *DepthStream) writeLoop(conn *websocket.Conn, symbol string) {
	ticker := time.NewTicker(ds.interval)
	pinger := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		pinger.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-ticker.C:
			depth, err := ds.svc.GetBookDepth(symbol)
			if err != nil {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(depth); err != nil {
				return
			}
		case <-pinger.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop discards inbound frames; it exists to process control messages
// and to notice the close.
func (ds *DepthStream) readLoop(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
