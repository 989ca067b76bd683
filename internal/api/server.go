package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/junholee/matching-engine/internal/domain"
	"github.com/junholee/matching-engine/internal/engine"
	"github.com/junholee/matching-engine/internal/metrics"
	"github.com/junholee/matching-engine/internal/service"
	"github.com/junholee/matching-engine/internal/store"
)

// Server exposes the order and market data endpoints over HTTP.
type Server struct {
	svc    *service.OrderService
	stream *DepthStream
	log    *zap.Logger
}

// NewServer wires the HTTP layer on top of the order service.
func NewServer(svc *service.OrderService, stream *DepthStream, log *zap.Logger) *Server {
	return &Server{
		svc:    svc,
		stream: stream,
		log:    log.Named("api"),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())

	r.GET("/health", s.health)
	r.POST("/orders", s.placeOrder)
	r.DELETE("/orders/:id", s.cancelOrder)
	r.GET("/orders/:id", s.getOrder)
	r.GET("/orderbook/:symbol", s.getDepth)
	r.GET("/ws/orderbook/:symbol", s.stream.Serve)

	return r
}

type placeOrderRequest struct {
	Side     string `json:"side" binding:"required"`
	Symbol   string `json:"symbol" binding:"required"`
	Price    int64  `json:"price" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required"`
}

func (s *Server) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	side, err := domain.ParseSide(req.Side)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := s.svc.PlaceLimitOrder(side, req.Symbol, req.Price, req.Quantity)
	if err != nil {
		s.renderError(c, err)
		return
	}
	// Accepted, not created: matching happens asynchronously.
	c.JSON(http.StatusAccepted, view)
}

func (s *Server) cancelOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	if err := s.svc.CancelOrder(id); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"order_id": id.String(), "status": "cancel_requested"})
}

func (s *Server) getOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	view, err := s.svc.GetOrder(id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) getDepth(c *gin.Context) {
	depth, err := s.svc.GetBookDepth(c.Param("symbol"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, depth)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// renderError maps service errors to HTTP statuses.
func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrUnknownSymbol), errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrQueueFull):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrShuttingDown):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
