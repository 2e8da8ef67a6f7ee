package models

import "time"

// User is the login identity. Non-admin users own exactly one Member or Cast
// profile, created together with the user and never reassigned.
type User struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	Email              string             `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password           string             `gorm:"size:255" json:"-"` // Hashed password, empty for LDAP users
	Nickname           string             `gorm:"size:100" json:"nickname"`
	Role               Role               `gorm:"size:20;index;not null" json:"role"`
	AuthType           string             `gorm:"size:20;default:local" json:"auth_type"` // local, ldap
	VerificationStatus VerificationStatus `gorm:"size:20;index;default:PENDING" json:"verification_status"`
	VerifiedAt         *time.Time         `json:"verified_at"`
	Locale             string             `gorm:"size:10;default:en" json:"locale"`
	IsActive           bool               `json:"is_active"`
	LastLogin          *time.Time         `json:"last_login"`
	CreatedAt          time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`

	Member *Member `gorm:"foreignKey:UserID" json:"member,omitempty"`
	Cast   *Cast   `gorm:"foreignKey:UserID" json:"cast,omitempty"`
}

func (User) TableName() string { return "users" }
