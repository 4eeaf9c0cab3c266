package domain

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// RecentDir 最近成功列出的目录
type RecentDir struct {
	ID        uint64    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Path string `json:"path"`

	// 被列出的次数
	ListCount uint64 `json:"listCount"`

	// 最近一次列出时的条目数
	EntryCount int `json:"entryCount"`

	LastListedAt time.Time `json:"lastListedAt"`
}
