package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/awsl-project/lsdir/internal/bridge"
)

// maxArgsBytes caps the size of an invocation body
const maxArgsBytes = 1 << 20

// RequestTracker lets the server drain in-flight invocations on shutdown
type RequestTracker interface {
	Add() bool
	Done()
}

// InvokeHandler exposes the command bridge over HTTP
//
//	POST /invoke/{command}  body: JSON args object
//	GET  /commands
type InvokeHandler struct {
	registry *bridge.Registry
	tracker  RequestTracker
}

func NewInvokeHandler(registry *bridge.Registry) *InvokeHandler {
	return &InvokeHandler{registry: registry}
}

// SetRequestTracker sets the tracker consulted before each invocation
func (h *InvokeHandler) SetRequestTracker(t RequestTracker) {
	h.tracker = t
}

func (h *InvokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/commands":
		h.handleCommands(w, r)
	case strings.HasPrefix(r.URL.Path, "/invoke/"):
		h.handleInvoke(w, r, strings.TrimPrefix(r.URL.Path, "/invoke/"))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

// GET /commands
func (h *InvokeHandler) handleCommands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"commands": h.registry.Names()})
}

// POST /invoke/{command}
func (h *InvokeHandler) handleInvoke(w http.ResponseWriter, r *http.Request, command string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if h.tracker != nil {
		if !h.tracker.Add() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server is shutting down"})
			return
		}
		defer h.tracker.Done()
	}

	args, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxArgsBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		return
	}

	resp := h.registry.Dispatch(r.Context(), bridge.Request{
		ID:      r.Header.Get("X-Request-ID"),
		Command: command,
		Args:    args,
	})
	w.Header().Set("X-Request-ID", resp.ID)
	writeJSON(w, statusFor(resp), resp)
}

func statusFor(resp bridge.Response) int {
	if resp.OK {
		return http.StatusOK
	}
	switch resp.Kind {
	case "unknown_command":
		return http.StatusNotFound
	case "bad_arguments":
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
