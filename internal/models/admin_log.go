package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Admin action types recorded in the audit trail.
const (
	ActionConfirmMeeting      = "CONFIRM_MEETING_REQUEST"
	ActionCompleteMeeting     = "COMPLETE_MEETING_REQUEST"
	ActionCancelMeeting       = "CANCEL_MEETING_REQUEST"
	ActionUpgradeMemberTier   = "UPGRADE_MEMBER_TIER"
	ActionDowngradeMemberTier = "DOWNGRADE_MEMBER_TIER"
	ActionApproveMember       = "APPROVE_MEMBER"
	ActionActivateMember      = "ACTIVATE_MEMBER"
	ActionDeactivateMember    = "DEACTIVATE_MEMBER"
	ActionToggleMemberPayment = "TOGGLE_MEMBER_PAYMENT"
	ActionCreateMember        = "CREATE_MEMBER"
	ActionUpdateMember        = "UPDATE_MEMBER"
	ActionDeleteMember        = "DELETE_MEMBER"
	ActionAddMemberPhotos     = "ADD_MEMBER_PHOTOS"
	ActionUploadMemberPhoto   = "UPLOAD_MEMBER_PHOTO"
	ActionReorderMemberPhotos = "REORDER_MEMBER_PHOTOS"
	ActionVerifyMemberPhoto   = "VERIFY_MEMBER_PHOTO"
	ActionDeleteMemberPhoto   = "DELETE_MEMBER_PHOTO"
	ActionApproveCast         = "APPROVE_CAST"
	ActionDeactivateCast      = "DEACTIVATE_CAST"
	ActionFeatureCast         = "TOGGLE_CAST_FEATURED"
	ActionClassifyCast        = "SET_CAST_TIER"
)

// ErrAppendOnly guards the audit trail against updates and deletes.
var ErrAppendOnly = errors.New("admin action log is append-only")

// AdminActionLog is an audit entry. AdminID and TargetUserID are soft
// references: rows outlive the users they mention.
type AdminActionLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AdminID      uint      `gorm:"index;not null" json:"admin_id"`
	ActionType   string    `gorm:"size:50;index;not null" json:"action_type"`
	TargetUserID *uint     `gorm:"index" json:"target_user_id"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (AdminActionLog) TableName() string { return "admin_action_logs" }

func (AdminActionLog) BeforeUpdate(*gorm.DB) error { return ErrAppendOnly }

func (AdminActionLog) BeforeDelete(*gorm.DB) error { return ErrAppendOnly }
