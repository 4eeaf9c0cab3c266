//go:build !windows

package desktop

import (
	"context"
	"log"
)

// BeforeClose 非 Windows: 允许正常退出
func (a *App) BeforeClose(ctx context.Context) bool {
	log.Println("[App] Window close requested")
	return false
}
