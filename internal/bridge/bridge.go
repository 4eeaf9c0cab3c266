// Package bridge maps command names to handlers so that every front end
// (Wails binding, HTTP, WebSocket, MCP) dispatches through the same table.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/awsl-project/lsdir/internal/domain"
	"github.com/awsl-project/lsdir/internal/lister"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArguments   = errors.New("invalid arguments")
)

// Handler executes one command. args is the raw JSON argument object and may be empty.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Request is a single command invocation as carried by the HTTP and WebSocket transports
type Request struct {
	ID      string          `json:"id,omitempty"`
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args,omitempty"`
}

// Response is the flattened result of a Request. Errors never cross the
// bridge as values, only as text.
type Response struct {
	ID      string `json:"id"`
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Result  any    `json:"result"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// Registry is the command dispatch table
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds name to h. Registering an empty or duplicate name panics.
func (r *Registry) Register(name string, h Handler) {
	if name == "" {
		panic("bridge: empty command name")
	}
	if h == nil {
		panic("bridge: nil handler for " + name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.handlers[name]; dup {
		panic("bridge: command registered twice: " + name)
	}
	r.handlers[name] = h
}

// Names returns the registered command names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named command and returns its result or error unchanged
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h(ctx, args)
}

// Dispatch runs req and flattens the outcome into a Response
func (r *Registry) Dispatch(ctx context.Context, req Request) Response {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	start := time.Now()
	result, err := r.Invoke(ctx, req.Command, req.Args)
	resp := Response{ID: req.ID, Command: req.Command}
	if err != nil {
		resp.Error = err.Error()
		resp.Kind = ErrorKind(err)
		log.Printf("[Bridge] %s %s failed after %v: %v", req.Command, req.ID, time.Since(start), err)
		return resp
	}

	resp.OK = true
	resp.Result = result
	return resp
}

// ErrorKind names the class of err for front ends that want more than the text
func ErrorKind(err error) string {
	var le *lister.ListError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &le):
		return le.Kind.String()
	case errors.Is(err, ErrUnknownCommand):
		return "unknown_command"
	case errors.Is(err, ErrBadArguments):
		return "bad_arguments"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}

// Command adapts a typed function into a Handler, decoding args into In
func Command[In any, Out any](fn func(ctx context.Context, in In) (Out, error)) Handler {
	return func(ctx context.Context, args json.RawMessage) (any, error) {
		var in In
		if len(args) > 0 && string(args) != "null" {
			if err := sonic.Unmarshal(args, &in); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBadArguments, err)
			}
		}
		return fn(ctx, in)
	}
}

// DecodeRequest parses a JSON request envelope
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := sonic.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrBadArguments, err)
	}
	if req.Command == "" {
		return req, fmt.Errorf("%w: missing command", ErrBadArguments)
	}
	return req, nil
}

// Marshal encodes a bridge payload
func Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}
