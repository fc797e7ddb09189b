// Package httpserver exposes the SMS webhook over HTTP.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/verte-zerg/timesince/internal/sms"
)

// DefaultAddr is used when no listen address is configured.
const DefaultAddr = "127.0.0.1:3000"

const internalError = "Internal Server Error"

// Replier builds the TwiML reply for an inbound message body.
type Replier interface {
	Reply(command string) ([]byte, error)
}

// Server serves the webhook endpoints.
type Server struct {
	addr      string
	replier   Replier
	logger    *slog.Logger
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

type smsRequest struct {
	From string `form:"From"`
	Body string `form:"Body"`
}

// NewServer creates a webhook server.
func NewServer(addr string, replier Replier, logger *slog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:    addr,
		replier: replier,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.routes(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("webhook server stopped", "err", err)
		}
	}()
	s.logger.Info("webhook server listening", "addr", listener.Addr().String())
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.logger.Error("webhook panic", "panic", recovered)
		c.String(http.StatusInternalServerError, internalError)
	}))
	r.GET("/api/health", s.handleHealth)
	r.POST("/api/sms", s.handleSMS)
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) handleSMS(c *gin.Context) {
	var req smsRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		s.logger.Error("sms webhook error", "err", err)
		c.String(http.StatusInternalServerError, internalError)
		return
	}
	reply, err := s.replier.Reply(req.Body)
	if err != nil {
		s.logger.Error("sms webhook error", "from", req.From, "err", err)
		c.String(http.StatusInternalServerError, internalError)
		return
	}
	s.logger.Info("sms reply", "from", req.From, "connect", sms.Match(req.Body))
	c.Data(http.StatusOK, sms.ContentType, reply)
}
