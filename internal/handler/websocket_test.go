package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, hub *WebSocketHub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(LoggingMiddleware(http.HandlerFunc(hub.HandleWebSocket)))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readResponse(t *testing.T, conn *websocket.Conn) testResponse {
	t.Helper()
	for {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		var msg struct {
			Type string       `json:"type"`
			Data testResponse `json:"data"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "response" {
			return msg.Data
		}
	}
}

func TestWebSocketHub_Origin(t *testing.T) {
	hub := NewWebSocketHub(newTestBridge())
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	tests := []struct {
		name   string
		origin string
		wantOK bool
	}{
		{"no origin", "", true},
		{"same origin", srv.URL, true},
		{"foreign origin", "http://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("Dial() error = %v", err)
				}
				conn.Close()
				return
			}
			if err == nil {
				conn.Close()
				t.Fatal("Dial() succeeded, want handshake failure")
			}
			if resp == nil || resp.StatusCode != http.StatusForbidden {
				t.Errorf("handshake response = %v, want 403", resp)
			}
		})
	}
}

func TestWebSocketHub_Invoke(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "only.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	hub := NewWebSocketHub(newTestBridge())
	conn := dialHub(t, hub)

	args, _ := json.Marshal(map[string]string{"dir": dir})
	req, _ := json.Marshal(map[string]any{"id": "r1", "command": "list_files", "args": json.RawMessage(args)})
	if err := conn.WriteMessage(websocket.TextMessage, req); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	resp := readResponse(t, conn)
	if resp.ID != "r1" || !resp.OK {
		t.Fatalf("response = %+v", resp)
	}
	var names []string
	json.Unmarshal(resp.Result, &names)
	if len(names) != 1 || names[0] != "only.txt" {
		t.Errorf("names = %v", names)
	}

	conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
	if bad := readResponse(t, conn); bad.OK || bad.Kind != "bad_arguments" {
		t.Errorf("bad request response = %+v", bad)
	}
}

func TestWebSocketLogWriter(t *testing.T) {
	var stdout bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "lsdir.log")
	w := NewWebSocketLogWriter(NewWebSocketHub(newTestBridge()), &stdout, logPath)
	defer w.Close()

	n, err := w.Write([]byte("[Test] hello\n"))
	if err != nil || n != len("[Test] hello\n") {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if stdout.String() != "[Test] hello\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
	data, _ := os.ReadFile(logPath)
	if string(data) != "[Test] hello\n" {
		t.Errorf("log file = %q", data)
	}
}
