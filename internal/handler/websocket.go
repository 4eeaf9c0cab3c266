package handler

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/awsl-project/lsdir/internal/bridge"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = maxArgsBytes
	wsSendBuffer     = 256
)

// WSMessage is a server-to-client frame
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WebSocketHub serves bridge requests over WebSocket and broadcasts log lines
type WebSocketHub struct {
	registry *bridge.Registry
	tracker  RequestTracker
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

func NewWebSocketHub(registry *bridge.Registry) *WebSocketHub {
	return &WebSocketHub{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		clients: make(map[*wsClient]struct{}),
	}
}

func (h *WebSocketHub) SetRequestTracker(t RequestTracker) {
	h.tracker = t
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the connection and serves requests until it closes.
// Responses on one connection are sent in request order.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WebSocket] Upgrade failed: %v", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(r.Context(), c)
}

func (h *WebSocketHub) unregister(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *WebSocketHub) readPump(ctx context.Context, c *wsClient) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(wsMaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WebSocket] Read error: %v", err)
			}
			return
		}
		h.reply(c, h.handleMessage(ctx, data))
	}
}

func (h *WebSocketHub) handleMessage(ctx context.Context, data []byte) bridge.Response {
	req, err := bridge.DecodeRequest(data)
	if err != nil {
		return bridge.Response{ID: req.ID, Command: req.Command, Error: err.Error(), Kind: bridge.ErrorKind(err)}
	}

	if h.tracker != nil {
		if !h.tracker.Add() {
			return bridge.Response{ID: req.ID, Command: req.Command, Error: "server is shutting down", Kind: "unavailable"}
		}
		defer h.tracker.Done()
	}
	return h.registry.Dispatch(ctx, req)
}

func (h *WebSocketHub) reply(c *wsClient, resp bridge.Response) {
	data, err := bridge.Marshal(WSMessage{Type: "response", Data: resp})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; ok {
		select {
		case c.send <- data:
		default:
			// 客户端消费过慢，丢弃
		}
	}
}

func (h *WebSocketHub) writePump(c *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast sends msg to every connected client without blocking.
// It must not log: the log writer calls it.
func (h *WebSocketHub) Broadcast(msg WSMessage) {
	data, err := bridge.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// CloseAll disconnects every client
func (h *WebSocketHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// WebSocketLogWriter tees log output to stdout, the log file and WebSocket clients
type WebSocketLogWriter struct {
	hub    *WebSocketHub
	stdout io.Writer
	file   *os.File
}

// NewWebSocketLogWriter opens logPath for appending; if that fails the file sink is skipped
func NewWebSocketLogWriter(hub *WebSocketHub, stdout io.Writer, logPath string) *WebSocketLogWriter {
	w := &WebSocketLogWriter{hub: hub, stdout: stdout}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			io.WriteString(stdout, "[Log] Failed to open log file "+logPath+": "+err.Error()+"\n")
		} else {
			w.file = f
		}
	}
	return w
}

func (w *WebSocketLogWriter) Write(p []byte) (int, error) {
	if w.stdout != nil {
		w.stdout.Write(p)
	}
	if w.file != nil {
		w.file.Write(p)
	}
	if w.hub != nil {
		w.hub.Broadcast(WSMessage{Type: "log", Data: strings.TrimRight(string(p), "\n")})
	}
	return len(p), nil
}

func (w *WebSocketLogWriter) Close() error {
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}
