package bridge

import (
	"context"
	"fmt"
	"log"

	"github.com/awsl-project/lsdir/internal/domain"
	"github.com/awsl-project/lsdir/internal/lister"
	"github.com/awsl-project/lsdir/internal/repository"
	"github.com/awsl-project/lsdir/internal/version"
)

const (
	CommandListFiles  = "list_files"
	CommandRecentDirs = "recent_dirs"
	CommandVersion    = "version"

	CommandForgetRecentDir = "forget_recent_dir"

	// DefaultRecentLimit is how many recent directories are kept when unset
	DefaultRecentLimit = 50
)

type ListFilesArgs struct {
	Dir string `json:"dir"`
}

type RecentDirsArgs struct {
	Limit int `json:"limit,omitempty"`
}

type ForgetRecentDirArgs struct {
	ID uint64 `json:"id"`
}

// Deps are the optional collaborators of the standard commands
type Deps struct {
	// RecentDirs records successful listings; nil disables recent_dirs
	RecentDirs  repository.RecentDirRepository
	RecentLimit int
}

// Commands holds the standard command implementations
type Commands struct {
	deps Deps
}

// NewCommands registers the standard commands on r
func NewCommands(r *Registry, deps Deps) *Commands {
	if deps.RecentLimit <= 0 {
		deps.RecentLimit = DefaultRecentLimit
	}
	c := &Commands{deps: deps}

	r.Register(CommandListFiles, Command(func(ctx context.Context, in ListFilesArgs) ([]string, error) {
		return c.ListFiles(in.Dir)
	}))
	r.Register(CommandVersion, Command(func(ctx context.Context, _ struct{}) (version.Details, error) {
		return version.Get(), nil
	}))
	if deps.RecentDirs != nil {
		r.Register(CommandRecentDirs, Command(func(ctx context.Context, in RecentDirsArgs) ([]*domain.RecentDir, error) {
			return c.RecentDirs(in.Limit)
		}))
		r.Register(CommandForgetRecentDir, Command(func(ctx context.Context, in ForgetRecentDirArgs) (bool, error) {
			if err := c.ForgetRecentDir(in.ID); err != nil {
				return false, err
			}
			return true, nil
		}))
	}
	return c
}

// ListFiles lists dir and records it as a recent directory on success
func (c *Commands) ListFiles(dir string) ([]string, error) {
	res, err := lister.ListDetailed(dir)
	if err != nil {
		return nil, err
	}
	if res.Skipped > 0 {
		log.Printf("[Bridge] list_files %s: skipped %d unreadable entry batches", dir, res.Skipped)
	}

	if c.deps.RecentDirs != nil {
		if _, err := c.deps.RecentDirs.Record(dir, len(res.Names)); err != nil {
			log.Printf("[Bridge] Failed to record recent directory %s: %v", dir, err)
		} else if n, err := c.deps.RecentDirs.Prune(c.deps.RecentLimit); err != nil {
			log.Printf("[Bridge] Failed to prune recent directories: %v", err)
		} else if n > 0 {
			log.Printf("[Bridge] Pruned %d recent directories", n)
		}
	}
	return res.Names, nil
}

// RecentDirs returns the most recently listed directories, newest first
func (c *Commands) RecentDirs(limit int) ([]*domain.RecentDir, error) {
	if c.deps.RecentDirs == nil {
		return nil, fmt.Errorf("recent directories are not available")
	}
	if limit <= 0 || limit > c.deps.RecentLimit {
		limit = c.deps.RecentLimit
	}
	return c.deps.RecentDirs.List(limit)
}

// ForgetRecentDir removes one directory from the history
func (c *Commands) ForgetRecentDir(id uint64) error {
	if c.deps.RecentDirs == nil {
		return fmt.Errorf("recent directories are not available")
	}
	if id == 0 {
		return fmt.Errorf("%w: missing id", ErrBadArguments)
	}
	if err := c.deps.RecentDirs.Delete(id); err != nil {
		return fmt.Errorf("forget recent directory %d: %w", id, err)
	}
	return nil
}
