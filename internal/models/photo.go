package models

import "time"

type MemberPhoto struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MemberID     uint      `gorm:"index;not null" json:"member_id"`
	PhotoURL     string    `gorm:"size:500;not null" json:"photo_url"`
	StorageKey   string    `gorm:"size:500" json:"-"` // empty for photos added by URL
	DisplayOrder int       `json:"display_order"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

func (MemberPhoto) TableName() string { return "member_photos" }

type CastPhoto struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CastID       uint      `gorm:"index;not null" json:"cast_id"`
	PhotoURL     string    `gorm:"size:500;not null" json:"photo_url"`
	StorageKey   string    `gorm:"size:500" json:"-"`
	DisplayOrder int       `json:"display_order"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

func (CastPhoto) TableName() string { return "cast_photos" }
