package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awsl-project/lsdir/internal/bridge"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestRunLs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	registry := bridge.NewRegistry()
	bridge.NewCommands(registry, bridge.Deps{})

	var out bytes.Buffer
	if err := runLs(context.Background(), registry, &out, []string{dir}); err != nil {
		t.Fatalf("runLs: %v", err)
	}
	got := strings.Fields(out.String())
	if len(got) != 2 {
		t.Fatalf("output = %q, want two names", out.String())
	}
	seen := map[string]bool{got[0]: true, got[1]: true}
	if !seen["a.txt"] || !seen["b.md"] {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunLsPartialFailure(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "only"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing")

	registry := bridge.NewRegistry()
	bridge.NewCommands(registry, bridge.Deps{})

	var out bytes.Buffer
	err := runLs(context.Background(), registry, &out, []string{missing, dir})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("error = %v", err)
	}
	s := out.String()
	if !strings.Contains(s, missing+":") || !strings.Contains(s, dir+":") {
		t.Errorf("missing headers in %q", s)
	}
	if !strings.Contains(s, "only") {
		t.Errorf("listing of %s missing from %q", dir, s)
	}
	if strings.Index(s, missing+":") > strings.Index(s, dir+":") {
		t.Errorf("output not in argument order: %q", s)
	}
}

func TestMCPListFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	server := newMCPServer()
	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0"}, nil)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ss.Close()
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cs.Close()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      bridge.CommandListFiles,
		Arguments: map[string]any{"dir": dir},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	out, ok := res.StructuredContent.(map[string]any)
	if !ok {
		t.Fatalf("structured content = %T", res.StructuredContent)
	}
	entries, _ := out["entries"].([]any)
	if len(entries) != 1 || entries[0] != "sub" {
		t.Errorf("entries = %v, want [sub]", out["entries"])
	}

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      bridge.CommandListFiles,
		Arguments: map[string]any{"dir": filepath.Join(dir, "nope")},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing directory")
	}
}
