package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvDSN, "")

	cfg, err := Load(Overrides{DataDir: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.RecentLimit != DefaultRecentLimit {
		t.Errorf("RecentLimit = %d, want %d", cfg.RecentLimit, DefaultRecentLimit)
	}
	if !cfg.ServeStatic {
		t.Error("ServeStatic = false, want true")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data directory not created: %v", err)
	}
	if cfg.DBPath() != filepath.Join(dir, "lsdir.db") {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := `addr = ":1111"
dsn = "file.db"
recent_limit = 7
disable_history = true
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(file), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		env      map[string]string
		flags    Overrides
		wantAddr string
		wantDSN  string
	}{
		{"file only", nil, Overrides{}, ":1111", "file.db"},
		{"env beats file", map[string]string{EnvAddr: ":2222", EnvDSN: "env.db"}, Overrides{}, ":2222", "env.db"},
		{"flag beats env", map[string]string{EnvAddr: ":2222"}, Overrides{Addr: ":3333", DSN: "flag.db"}, ":3333", "flag.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAddr, "")
			t.Setenv(EnvDSN, "")
			t.Setenv(EnvDataDir, dir)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(tt.flags)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.DataDir != dir {
				t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
			}
			if cfg.Addr != tt.wantAddr {
				t.Errorf("Addr = %q, want %q", cfg.Addr, tt.wantAddr)
			}
			if cfg.DSN != tt.wantDSN {
				t.Errorf("DSN = %q, want %q", cfg.DSN, tt.wantDSN)
			}
			if cfg.RecentLimit != 7 || !cfg.DisableHistory {
				t.Errorf("file values not applied: %+v", cfg)
			}
		})
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("addr = "), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(Overrides{DataDir: dir}); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}
