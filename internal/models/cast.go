package models

import (
	"time"

	"gorm.io/datatypes"
)

// Cast is a browsable profile. Only active casts are visible in the
// directory or can receive meeting requests.
type Cast struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	UserID             uint                        `gorm:"uniqueIndex;not null" json:"user_id"`
	User               *User                       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TierClassification CastTier                    `gorm:"size:20;index;not null" json:"tier_classification"`
	IsActive           bool                        `gorm:"index" json:"is_active"`
	IsFeatured         bool                        `json:"is_featured"`
	Age                int                         `gorm:"index" json:"age"`
	Birthday           *time.Time                  `json:"birthday"`
	Location           string                      `gorm:"size:100;index" json:"location"`
	Languages          datatypes.JSONSlice[string] `json:"languages"`
	Interests          datatypes.JSONSlice[string] `json:"interests"`
	Hobbies            datatypes.JSONSlice[string] `json:"hobbies"`
	HolidayStyle       datatypes.JSONSlice[string] `json:"holiday_style"`
	Height             *int                        `json:"height"`
	Weight             *int                        `json:"weight"`
	BustSize           string                      `gorm:"size:10" json:"bust_size"`
	EnglishLevel       string                      `gorm:"size:20" json:"english_level"`
	Bio                datatypes.JSON              `json:"bio"`
	Personality        datatypes.JSON              `json:"personality"`
	Appearance         datatypes.JSON              `json:"appearance"`
	ServiceStyle       datatypes.JSON              `json:"service_style"`
	PreferredType      datatypes.JSON              `json:"preferred_type"`
	Photos             []CastPhoto                 `gorm:"foreignKey:CastID" json:"photos,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

func (Cast) TableName() string { return "casts" }

// DisplayName is the nickname of the owning user, when loaded.
func (c *Cast) DisplayName() string {
	if c.User == nil {
		return ""
	}
	return c.User.Nickname
}
