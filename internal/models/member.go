package models

import (
	"time"

	"gorm.io/datatypes"
)

type Member struct {
	ID                uint                        `gorm:"primaryKey" json:"id"`
	UserID            uint                        `gorm:"uniqueIndex;not null" json:"user_id"`
	User              *User                       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Tier              MemberTier                  `gorm:"size:20;index;not null" json:"tier"`
	IsPaid            bool                        `json:"is_paid"`
	IsActive          bool                        `json:"is_active"`
	Age               *int                        `json:"age"`
	Location          string                      `gorm:"size:100" json:"location"`
	Languages         datatypes.JSONSlice[string] `json:"languages"`
	Occupation        string                      `gorm:"size:100" json:"occupation"`
	AnnualIncome      *int64                      `json:"annual_income"`
	IncomeCurrency    string                      `gorm:"size:3;default:USD" json:"income_currency"`
	Bio               datatypes.JSON              `json:"bio"` // {"en": "...", "ja": "..."}
	Interests         datatypes.JSONSlice[string] `json:"interests"`
	Hobbies           datatypes.JSONSlice[string] `json:"hobbies"`
	IDDocumentURL     string                      `gorm:"size:500" json:"id_document_url"`
	IncomeProofURL    string                      `gorm:"size:500" json:"income_proof_url"`
	VerificationNotes string                      `gorm:"type:text" json:"verification_notes"`
	ApprovedByAdminID *uint                       `json:"approved_by_admin_id"`
	ApprovedAt        *time.Time                  `json:"approved_at"`
	Photos            []MemberPhoto               `gorm:"foreignKey:MemberID" json:"photos,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

func (Member) TableName() string { return "members" }
