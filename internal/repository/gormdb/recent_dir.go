package gormdb

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/awsl-project/lsdir/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecentDirRepository records directories that were listed successfully.
type RecentDirRepository struct {
	db  *DB
	now func() time.Time
}

func NewRecentDirRepository(db *DB) *RecentDirRepository {
	return &RecentDirRepository{db: db, now: time.Now}
}

func hashPath(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])
}

// Record inserts path or bumps its list count in a single upsert on path_hash
func (r *RecentDirRepository) Record(path string, entryCount int) (*domain.RecentDir, error) {
	now := toTimestamp(r.now())
	model := RecentDir{
		BaseModel:    BaseModel{CreatedAt: now, UpdatedAt: now},
		PathHash:     hashPath(path),
		Path:         LongText(path),
		ListCount:    1,
		EntryCount:   entryCount,
		LastListedAt: now,
	}

	err := r.db.gorm.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "path_hash"}},
		DoUpdates: clause.Assignments(map[string]any{
			"path":           path,
			"entry_count":    entryCount,
			"last_listed_at": now,
			"updated_at":     now,
			"list_count":     gorm.Expr("recent_dirs.list_count + 1"),
		}),
	}).Create(&model).Error
	if err != nil {
		return nil, err
	}
	return r.GetByPath(path)
}

func (r *RecentDirRepository) GetByPath(path string) (*domain.RecentDir, error) {
	var model RecentDir
	if err := r.db.gorm.Where("path_hash = ?", hashPath(path)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.toDomain(&model), nil
}

func (r *RecentDirRepository) List(limit int) ([]*domain.RecentDir, error) {
	var models []RecentDir
	q := r.db.gorm.Order("last_listed_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	dirs := make([]*domain.RecentDir, len(models))
	for i := range models {
		dirs[i] = r.toDomain(&models[i])
	}
	return dirs, nil
}

func (r *RecentDirRepository) Delete(id uint64) error {
	res := r.db.gorm.Delete(&RecentDir{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RecentDirRepository) Prune(keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	var ids []uint64
	if err := r.db.gorm.Model(&RecentDir{}).
		Order("last_listed_at DESC").Order("id DESC").
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) <= keep {
		return 0, nil
	}

	res := r.db.gorm.Where("id IN ?", ids[keep:]).Delete(&RecentDir{})
	return res.RowsAffected, res.Error
}

func (r *RecentDirRepository) toDomain(m *RecentDir) *domain.RecentDir {
	return &domain.RecentDir{
		ID:           m.ID,
		CreatedAt:    fromTimestamp(m.CreatedAt),
		UpdatedAt:    fromTimestamp(m.UpdatedAt),
		Path:         m.Path.String(),
		ListCount:    m.ListCount,
		EntryCount:   m.EntryCount,
		LastListedAt: fromTimestamp(m.LastListedAt),
	}
}
