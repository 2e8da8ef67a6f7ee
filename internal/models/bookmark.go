package models

import "time"

type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemberID  uint      `gorm:"uniqueIndex:idx_bookmark_pair;not null" json:"member_id"`
	CastID    uint      `gorm:"uniqueIndex:idx_bookmark_pair;index;not null" json:"cast_id"`
	Cast      *Cast     `gorm:"foreignKey:CastID" json:"cast,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Bookmark) TableName() string { return "bookmarks" }
