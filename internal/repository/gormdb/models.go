package gormdb

// BaseModel 所有表共用的字段，时间为 Unix 毫秒
type BaseModel struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt int64  `gorm:"not null;default:0"`
	UpdatedAt int64  `gorm:"not null;default:0"`
}

// RecentDir 最近列出的目录
// Path 可能超过 MySQL 索引长度，唯一性由 PathHash 保证
type RecentDir struct {
	BaseModel
	PathHash     string   `gorm:"size:64;not null;uniqueIndex"`
	Path         LongText `gorm:"not null"`
	ListCount    uint64   `gorm:"not null;default:0"`
	EntryCount   int      `gorm:"not null;default:0"`
	LastListedAt int64    `gorm:"not null;default:0;index"`
}

func (RecentDir) TableName() string {
	return "recent_dirs"
}

// AllModels returns every model handled by auto-migration
func AllModels() []any {
	return []any{
		&RecentDir{},
	}
}
