package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/awsl-project/lsdir/internal/bridge"
	"github.com/awsl-project/lsdir/internal/handler"
)

// Graceful shutdown configuration
const (
	// GracefulShutdownTimeout is the maximum time to wait for active invocations
	GracefulShutdownTimeout = 30 * time.Second
	// HTTPShutdownTimeout is the timeout for HTTP server shutdown after invocations complete
	HTTPShutdownTimeout = 5 * time.Second
)

// ServerComponents 服务器依赖的组件
type ServerComponents struct {
	Registry       *bridge.Registry
	InvokeHandler  *handler.InvokeHandler
	AuthMiddleware *handler.AuthMiddleware
	AuthHandler    *handler.AuthHandler
	WebSocketHub   *handler.WebSocketHub
	RequestTracker *RequestTracker
}

// NewServerComponents wires the HTTP and WebSocket bridges around registry
func NewServerComponents(registry *bridge.Registry, auth *handler.AuthMiddleware) *ServerComponents {
	tracker := NewRequestTracker()

	invokeHandler := handler.NewInvokeHandler(registry)
	invokeHandler.SetRequestTracker(tracker)

	hub := handler.NewWebSocketHub(registry)
	hub.SetRequestTracker(tracker)

	return &ServerComponents{
		Registry:       registry,
		InvokeHandler:  invokeHandler,
		AuthMiddleware: auth,
		AuthHandler:    handler.NewAuthHandler(auth),
		WebSocketHub:   hub,
		RequestTracker: tracker,
	}
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Addr        string
	Components  *ServerComponents
	ServeStatic bool
}

// ManagedServer 可管理的服务器（支持启动/停止）
type ManagedServer struct {
	config     *ServerConfig
	httpServer *http.Server
	handler    http.Handler

	mu        sync.Mutex
	isRunning bool
	addr      string
}

// NewManagedServer 创建可管理的服务器
func NewManagedServer(config *ServerConfig) (*ManagedServer, error) {
	if config.Components == nil {
		return nil, errors.New("server components are required")
	}
	log.Printf("[Server] Creating managed server on %s", config.Addr)

	s := &ManagedServer{config: config, addr: config.Addr}
	s.handler = handler.LoggingMiddleware(s.setupRoutes())
	return s, nil
}

// Handler returns the fully wired HTTP handler
func (s *ManagedServer) Handler() http.Handler {
	return s.handler
}

// setupRoutes 设置所有路由
func (s *ManagedServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	c := s.config.Components
	auth := c.AuthMiddleware

	mux.Handle("/api/auth/", http.StripPrefix("/api", c.AuthHandler))
	mux.Handle("/api/invoke/", http.StripPrefix("/api", auth.Wrap(c.InvokeHandler)))
	mux.Handle("/api/commands", http.StripPrefix("/api", auth.Wrap(c.InvokeHandler)))
	mux.Handle("/ws", auth.Wrap(http.HandlerFunc(c.WebSocketHub.HandleWebSocket)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	if s.config.ServeStatic {
		mux.Handle("/", handler.NewStaticHandler())
		log.Printf("[Server] Static file serving enabled")
	} else {
		log.Printf("[Server] Static file serving disabled (Wails mode)")
	}
	return mux
}

// Start binds the listener and serves in the background
func (s *ManagedServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		log.Printf("[Server] Server already running")
		return nil
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.addr = ln.Addr().String()
	s.config.Components.RequestTracker.Reopen()

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func(srv *http.Server) {
		log.Printf("[Server] Starting HTTP server on %s", s.addr)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Server] Server error: %v", err)
		}
	}(s.httpServer)

	s.isRunning = true
	return nil
}

// Stop drains active invocations, then shuts down the HTTP server
func (s *ManagedServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		log.Printf("[Server] Server already stopped")
		return nil
	}
	log.Printf("[Server] Stopping HTTP server on %s", s.addr)

	c := s.config.Components
	if !c.RequestTracker.GracefulShutdown(GracefulShutdownTimeout) {
		log.Printf("[Server] Graceful shutdown timeout, some invocations may be interrupted")
	}
	if n := c.WebSocketHub.ClientCount(); n > 0 {
		log.Printf("[Server] Closing %d WebSocket clients", n)
	}
	c.WebSocketHub.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, HTTPShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] HTTP server graceful shutdown failed: %v, forcing close", err)
		if closeErr := s.httpServer.Close(); closeErr != nil {
			log.Printf("[Server] Force close error: %v", closeErr)
		}
	}

	s.isRunning = false
	log.Printf("[Server] Server stopped successfully")
	return nil
}

// IsRunning 检查服务器是否在运行
func (s *ManagedServer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// GetAddr returns the bound address once started, the configured one before
func (s *ManagedServer) GetAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}
