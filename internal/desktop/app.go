package desktop

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/awsl-project/lsdir/internal/bridge"
	"github.com/awsl-project/lsdir/internal/config"
	"github.com/awsl-project/lsdir/internal/core"
	"github.com/awsl-project/lsdir/internal/domain"
	"github.com/awsl-project/lsdir/internal/handler"
	"github.com/awsl-project/lsdir/internal/repository/gormdb"
	"github.com/awsl-project/lsdir/internal/version"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// ServerStatus 本地 HTTP 桥的状态
type ServerStatus struct {
	Ready bool   `json:"ready"`
	Addr  string `json:"addr"`
}

// App is bound to the Wails front end. Exported methods become
// window.go.desktop.App.<Method>; a returned error rejects the JS promise
// with the error text.
type App struct {
	ctx      context.Context
	cfg      *config.Config
	registry *bridge.Registry
	commands *bridge.Commands
	db       *gormdb.DB
	server   *core.ManagedServer

	mu sync.Mutex
}

// NewApp wires the command bridge. History is opened unless disabled; a
// failing database only disables recent directories.
func NewApp(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg, registry: bridge.NewRegistry()}

	deps := bridge.Deps{RecentLimit: cfg.RecentLimit}
	if !cfg.DisableHistory {
		db, err := openDB(cfg)
		if err != nil {
			log.Printf("[App] Recent directories disabled: %v", err)
		} else {
			a.db = db
			deps.RecentDirs = gormdb.NewRecentDirRepository(db)
		}
	}
	a.commands = bridge.NewCommands(a.registry, deps)

	if cfg.DesktopServer {
		components := core.NewServerComponents(a.registry, handler.NewAuthMiddleware())
		server, err := core.NewManagedServer(&core.ServerConfig{
			Addr:        cfg.Addr,
			Components:  components,
			ServeStatic: false,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create server: %w", err)
		}
		a.server = server
	}

	log.Printf("[App] Registered commands: %v", a.registry.Names())
	return a, nil
}

func openDB(cfg *config.Config) (*gormdb.DB, error) {
	if cfg.DSN != "" {
		return gormdb.NewDBWithDSN(cfg.DSN)
	}
	return gormdb.NewDB(cfg.DBPath())
}

// Startup 在 Wails 启动时调用
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	log.Printf("[App] Starting lsdir %s", version.Info())

	if a.server != nil {
		if err := a.server.Start(ctx); err != nil {
			log.Printf("[App] Failed to start local server: %v", err)
		}
	}
}

// DomReady 前端 DOM 加载完成
func (a *App) DomReady(ctx context.Context) {
	log.Println("[App] DOM ready")
}

// Shutdown 应用退出时清理资源
func (a *App) Shutdown(ctx context.Context) {
	log.Println("[App] Shutting down")
	if a.server != nil {
		a.server.Stop(ctx)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("[App] Failed to close database: %v", err)
		}
	}
}

// ListFiles returns the names of the immediate entries of dir
func (a *App) ListFiles(dir string) ([]string, error) {
	return a.commands.ListFiles(dir)
}

// RecentDirs returns the most recently listed directories
func (a *App) RecentDirs(limit int) ([]*domain.RecentDir, error) {
	return a.commands.RecentDirs(limit)
}

// ForgetRecentDir removes a directory from the recent list
func (a *App) ForgetRecentDir(id uint64) error {
	return a.commands.ForgetRecentDir(id)
}

// Invoke runs any registered command by name with a JSON argument object
func (a *App) Invoke(command string, args string) bridge.Response {
	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return a.registry.Dispatch(ctx, bridge.Request{Command: command, Args: json.RawMessage(args)})
}

// Commands returns the registered command names
func (a *App) Commands() []string {
	return a.registry.Names()
}

// Version returns build information
func (a *App) Version() version.Details {
	return version.Get()
}

// CheckServerStatus 检查本地 HTTP 桥状态
func (a *App) CheckServerStatus() ServerStatus {
	if a.server == nil {
		return ServerStatus{}
	}
	return ServerStatus{Ready: a.server.IsRunning(), Addr: a.server.GetAddr()}
}

// GetServerAddress 获取本地 HTTP 桥地址，未启用时为空
func (a *App) GetServerAddress() string {
	if a.server == nil || !a.server.IsRunning() {
		return ""
	}
	return a.server.GetAddr()
}

// RestartServer 重启本地 HTTP 桥
func (a *App) RestartServer() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return fmt.Errorf("local server is disabled")
	}
	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.server.Stop(ctx); err != nil {
		return err
	}
	return a.server.Start(ctx)
}

// Quit 退出应用
func (a *App) Quit() {
	if a.ctx != nil {
		runtime.Quit(a.ctx)
	}
}
