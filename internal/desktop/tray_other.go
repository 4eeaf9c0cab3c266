//go:build !windows

package desktop

import "context"

// TrayManager is a no-op outside Windows; the window close button quits there
type TrayManager struct{}

func NewTrayManager(ctx context.Context, app *App) *TrayManager {
	return &TrayManager{}
}

func (t *TrayManager) Start() {}

func (t *TrayManager) UpdateStatus() {}
