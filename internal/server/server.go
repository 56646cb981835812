// Package server exposes the evaluator over HTTP and WebSocket.
package server

import (
	"bufio"
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/codefionn/calcschnell/internal/config"
	"github.com/codefionn/calcschnell/internal/consts"
	"github.com/codefionn/calcschnell/internal/history"
	"github.com/codefionn/calcschnell/internal/logger"
	"github.com/codefionn/calcschnell/internal/session"
)

//go:embed static/*
var staticFiles embed.FS

// HistoryStore is the subset of history.Store the server needs
type HistoryStore interface {
	session.Recorder
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
	Clear(ctx context.Context) (int64, error)
}

// Server serves the evaluation API and WebSocket sessions
type Server struct {
	cfg       atomic.Pointer[config.Config]
	store     HistoryStore
	hub       *Hub
	router    *httprouter.Router
	validator *requestValidator
	handler   http.Handler
	log       *logger.Logger
	slog      *slog.Logger
	upgrader  websocket.Upgrader
}

// New creates a server and starts its WebSocket hub. store may be nil when
// history is disabled. Call Close (or Run) to stop the hub.
func New(ctx context.Context, cfg *config.Config, store HistoryStore) (*Server, error) {
	validator, err := newRequestValidator(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Global().WithPrefix("server")
	s := &Server{
		store:     store,
		hub:       NewHub(log.WithPrefix("hub")),
		router:    httprouter.New(),
		validator: validator,
		log:       log,
		slog:      logger.Slog(log),
	}
	s.cfg.Store(cfg)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  consts.BufferSize1KB,
		WriteBufferSize: consts.BufferSize1KB,
		CheckOrigin: func(r *http.Request) bool {
			return s.Config().IsOriginAllowed(r.Header.Get("Origin"))
		},
	}

	s.setupRoutes()
	s.handler = s.logRequests(s.limitBody(s.validator.middleware(s.router)))

	go s.hub.Run()
	return s, nil
}

// Config returns the active configuration
func (s *Server) Config() *config.Config {
	return s.cfg.Load()
}

// UpdateConfig swaps the configuration used for new requests
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfg.Store(cfg)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close stops the hub and disconnects WebSocket clients
func (s *Server) Close() {
	s.hub.Stop()
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/openapi.json", s.handleOpenAPI)
	s.router.GET("/ws", s.handleWebSocket)

	s.router.POST("/api/eval", s.handleEval)
	s.router.GET("/api/history", s.handleHistoryList)
	s.router.DELETE("/api/history", s.handleHistoryClear)
}

// Run listens on the configured address until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Config().Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Config().Server.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled, then shuts
// down gracefully
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	defer s.Close()

	readTimeout := time.Duration(s.Config().Server.ReadTimeoutSeconds) * time.Second
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readTimeout,
		ErrorLog:          logger.StdLogger(s.log, logger.LevelError),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", listener.Addr())
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	s.hub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), consts.Timeout5Seconds)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		s.log.Warn("failed to upgrade WebSocket: %v", err)
		return
	}

	sess := session.NewSession(history.SourceWS, s.recorder())
	client := NewClient(s.hub, conn, sess, s.log)
	if !s.hub.Register(client) {
		_ = conn.Close()
		return
	}

	hello := inputMessage(sess)
	hello.Type = MessageTypeHello
	client.sendResponse(hello)

	// Pumps outlive the request, so they get a context that is not cancelled
	// when the handler returns.
	go client.WritePump()
	go client.ReadPump(context.WithoutCancel(r.Context()))
}

// recorder avoids handing a typed nil to sessions
func (s *Server) recorder() session.Recorder {
	if s.store == nil {
		return nil
	}
	return s.store
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, consts.BufferSize64KB+consts.BufferSize1KB)
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is required by the WebSocket upgrader
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.slog.Debug("request", slog.Group("req",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		))
	})
}
