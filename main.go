package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"os"
	goruntime "runtime"

	"github.com/awsl-project/lsdir/internal/config"
	"github.com/awsl-project/lsdir/internal/desktop"
	"github.com/awsl-project/lsdir/internal/handler"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	dist, err := fs.Sub(assets, "frontend/dist")
	if err != nil {
		log.Fatal("Failed to load front end assets:", err)
	}
	// 本地 HTTP 桥也使用同一份前端
	handler.StaticFS = dist

	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logWriter := handler.NewWebSocketLogWriter(nil, os.Stdout, cfg.LogPath())
	defer logWriter.Close()
	log.SetOutput(logWriter)

	app, err := desktop.NewApp(cfg)
	if err != nil {
		log.Fatal("Failed to initialize desktop app:", err)
	}

	appReady := make(chan context.Context, 1)
	go func() {
		ctx := <-appReady
		desktop.NewTrayManager(ctx, app).Start()
	}()

	var appCtx context.Context

	// Application menu (macOS only)
	var appMenu *menu.Menu
	if goruntime.GOOS == "darwin" {
		appMenu = menu.NewMenu()
		appMenu.Append(menu.AppMenu())

		fileMenu := appMenu.AddSubmenu("File")
		fileMenu.AddText("Reload", keys.CmdOrCtrl("r"), func(_ *menu.CallbackData) {
			if appCtx != nil {
				runtime.WindowReloadApp(appCtx)
			}
		})
		fileMenu.AddSeparator()
		fileMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
			if appCtx != nil {
				runtime.Quit(appCtx)
			}
		})

		appMenu.Append(menu.EditMenu())
	}

	err = wails.Run(&options.App{
		Title:     "lsdir",
		Width:     960,
		Height:    640,
		MinWidth:  480,
		MinHeight: 360,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup: func(ctx context.Context) {
			appCtx = ctx
			app.Startup(ctx)
			appReady <- ctx
		},
		OnDomReady:    app.DomReady,
		OnBeforeClose: app.BeforeClose,
		OnShutdown:    app.Shutdown,
		Bind: []interface{}{
			app,
		},
		Menu: appMenu,
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
		},
		Mac: &mac.Options{
			Appearance: mac.NSAppearanceNameDarkAqua,
			About: &mac.AboutInfo{
				Title:   "lsdir",
				Message: "List the entries of a directory",
			},
		},
	})

	if err != nil {
		log.Fatal("Error:", err)
	}
}
