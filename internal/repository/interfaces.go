package repository

import (
	"github.com/awsl-project/lsdir/internal/domain"
)

type RecentDirRepository interface {
	// Record upserts a listing of path, bumping its count and timestamp
	Record(path string, entryCount int) (*domain.RecentDir, error)
	GetByPath(path string) (*domain.RecentDir, error)
	// List returns the most recently listed directories first; limit <= 0 means all
	List(limit int) ([]*domain.RecentDir, error)
	Delete(id uint64) error
	// Prune keeps only the newest keep entries and returns how many were removed
	Prune(keep int) (int64, error)
}
