//go:build windows

package desktop

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed icon.ico
var iconData []byte

const (
	trayRecentSlots     = 5
	trayRefreshInterval = 30 * time.Second

	// EventOpenDir is emitted to the front end when a recent directory is picked in the tray
	EventOpenDir = "open-dir"
)

// TrayManager 管理系统托盘
type TrayManager struct {
	ctx              context.Context
	app              *App
	menuShow         *systray.MenuItem
	menuRecent       *systray.MenuItem
	recentSlots      []*systray.MenuItem
	menuServerStatus *systray.MenuItem
	menuRestart      *systray.MenuItem
	menuQuit         *systray.MenuItem

	mu          sync.Mutex
	recentPaths []string
}

// NewTrayManager 创建托盘管理器
func NewTrayManager(ctx context.Context, app *App) *TrayManager {
	return &TrayManager{
		ctx: ctx,
		app: app,
	}
}

// Start 启动托盘（阻塞）
func (t *TrayManager) Start() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayManager) onReady() {
	log.Println("[Tray] Initializing system tray...")

	systray.SetIcon(iconData)
	systray.SetTitle("lsdir")
	systray.SetTooltip("lsdir - directory lister")

	t.menuShow = systray.AddMenuItem("显示窗口", "显示主窗口")
	systray.AddSeparator()

	t.menuRecent = systray.AddMenuItem("最近目录", "最近列出的目录")
	for i := 0; i < trayRecentSlots; i++ {
		slot := t.menuRecent.AddSubMenuItem("-", "")
		slot.Hide()
		t.recentSlots = append(t.recentSlots, slot)
		go t.watchRecentSlot(i, slot)
	}
	systray.AddSeparator()

	t.menuServerStatus = systray.AddMenuItem("本地桥: 检查中...", "本地 HTTP 桥状态")
	t.menuServerStatus.Disable()
	t.menuRestart = systray.AddMenuItem("重启本地桥", "重启 HTTP 桥")
	systray.AddSeparator()

	t.menuQuit = systray.AddMenuItem("退出", "退出应用")

	t.UpdateStatus()
	go t.handleMenuEvents()
}

func (t *TrayManager) onExit() {
	log.Println("[Tray] System tray exited")
}

func (t *TrayManager) handleMenuEvents() {
	ticker := time.NewTicker(trayRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.menuShow.ClickedCh:
			log.Println("[Tray] Show window clicked")
			t.showWindow()

		case <-t.menuRestart.ClickedCh:
			log.Println("[Tray] Restart server clicked")
			if err := t.app.RestartServer(); err != nil {
				log.Printf("[Tray] Restart failed: %v", err)
			}
			t.UpdateStatus()

		case <-t.menuQuit.ClickedCh:
			log.Println("[Tray] Quit clicked")
			t.quit()
			return

		case <-ticker.C:
			t.UpdateStatus()
		}
	}
}

func (t *TrayManager) watchRecentSlot(i int, slot *systray.MenuItem) {
	for range slot.ClickedCh {
		t.mu.Lock()
		var path string
		if i < len(t.recentPaths) {
			path = t.recentPaths[i]
		}
		t.mu.Unlock()

		if path == "" {
			continue
		}
		log.Printf("[Tray] Open recent directory %s", path)
		t.showWindow()
		runtime.EventsEmit(t.ctx, EventOpenDir, path)
	}
}

func (t *TrayManager) showWindow() {
	runtime.WindowShow(t.ctx)
	runtime.WindowUnminimise(t.ctx)
}

func (t *TrayManager) quit() {
	log.Println("[Tray] Quitting application...")
	t.app.Quit()
	systray.Quit()
}

// UpdateStatus 刷新托盘菜单（本地桥状态和最近目录）
func (t *TrayManager) UpdateStatus() {
	status := t.app.CheckServerStatus()
	switch {
	case status.Ready:
		t.menuServerStatus.SetTitle(fmt.Sprintf("本地桥: %s", status.Addr))
		t.menuRestart.Enable()
	case t.app.server == nil:
		t.menuServerStatus.SetTitle("本地桥: 未启用")
		t.menuRestart.Disable()
	default:
		t.menuServerStatus.SetTitle("本地桥: 已停止")
		t.menuRestart.Enable()
	}

	dirs, err := t.app.RecentDirs(trayRecentSlots)
	if err != nil {
		t.menuRecent.Disable()
		return
	}
	t.menuRecent.Enable()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.recentPaths = t.recentPaths[:0]
	for i, slot := range t.recentSlots {
		if i < len(dirs) {
			t.recentPaths = append(t.recentPaths, dirs[i].Path)
			slot.SetTitle(dirs[i].Path)
			slot.Show()
		} else {
			slot.Hide()
		}
	}
}
