package devtools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apifolio/folio/internal/health"
	"github.com/apifolio/folio/internal/state"
)

const shutdownTimeout = 5 * time.Second

// HealthSource exposes the latest health snapshot.
type HealthSource interface {
	Snapshot() health.Snapshot
}

// Options configures a Server.
type Options struct {
	// Health is optional; /debug/health answers 404 without it.
	Health HealthSource
	// History bounds the recorded entries (DefaultHistory when zero).
	History int
	// Recorder is a history already attached to the store, typically since
	// the store was created. The caller keeps ownership and detaches it.
	// When nil the server records from construction until Close.
	Recorder *Recorder
	Logger   *slog.Logger
}

// Server is the read-only debug surface over a store.
type Server struct {
	store    *state.Store
	recorder *Recorder
	hub      *Hub
	health   HealthSource
	engine   *gin.Engine
	logger   *slog.Logger

	closeOnce sync.Once
	detach    func()
}

// NewServer records transitions of store and serves them over HTTP.
func NewServer(store *state.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:    store,
		recorder: opts.Recorder,
		health:   opts.Health,
		logger:   logger,
	}
	detachStore := func() {}
	if s.recorder == nil {
		s.recorder = NewRecorder(opts.History)
		detachStore = s.recorder.Attach(store)
	}
	s.hub = NewHub(func() Message {
		return Message{Event: "state", Data: s.store.Snapshot()}
	})

	stopListen := s.recorder.Listen(func(e Entry) {
		s.hub.Publish(Message{Event: "action", Data: e})
	})
	s.detach = func() {
		stopListen()
		detachStore()
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	debug := s.engine.Group("/debug")
	debug.GET("/state", s.handleState)
	debug.GET("/actions", s.handleActions)
	debug.GET("/health", s.handleHealth)
	debug.GET("/metrics", s.handleMetrics)
	debug.GET("/ws", gin.WrapH(s.hub))
}

// Handler returns the HTTP handler serving the debug routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Recorder returns the transition history.
func (s *Server) Recorder() *Recorder {
	return s.recorder
}

// Close stops recording transitions and publishing them to WebSocket
// clients. Serve and a failed Run call it.
func (s *Server) Close() {
	s.closeOnce.Do(s.detach)
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.Close()
		return fmt.Errorf("listen devtools: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully and
// stops recording.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("devtools listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve devtools: %w", err)
	case <-ctx.Done():
	}

	stopHub()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown devtools: %w", err)
	}
	return nil
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleActions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, gin.H{"entries": s.recorder.Entries(limit)})
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.health == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "health poller not running"})
		return
	}
	c.JSON(http.StatusOK, s.health.Snapshot())
}

func (s *Server) handleMetrics(c *gin.Context) {
	var snap *health.Snapshot
	if s.health != nil {
		v := s.health.Snapshot()
		snap = &v
	}
	families := gatherMetrics(s.store.Snapshot(), s.recorder.Counts(), snap, s.hub.Count())
	c.Header("Content-Type", string(metricsFormat))
	c.Status(http.StatusOK)
	if err := writeMetrics(c.Writer, families); err != nil {
		s.logger.Error("write metrics failed", "err", err)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("devtools request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
