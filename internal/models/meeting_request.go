package models

import (
	"errors"
	"fmt"
	"time"
)

type MeetingStatus string

const (
	MeetingPending   MeetingStatus = "PENDING"
	MeetingConfirmed MeetingStatus = "CONFIRMED"
	MeetingCompleted MeetingStatus = "COMPLETED"
	MeetingCancelled MeetingStatus = "CANCELLED"
)

// ErrInvalidTransition is returned when a status change is not in the
// transition table.
var ErrInvalidTransition = errors.New("invalid meeting status transition")

// meetingTransitions is the complete set of allowed moves. COMPLETED and
// CANCELLED have no outgoing edges.
var meetingTransitions = map[MeetingStatus][]MeetingStatus{
	MeetingPending:   {MeetingConfirmed, MeetingCancelled},
	MeetingConfirmed: {MeetingCompleted, MeetingCancelled},
}

func (s MeetingStatus) Valid() bool {
	switch s {
	case MeetingPending, MeetingConfirmed, MeetingCompleted, MeetingCancelled:
		return true
	}
	return false
}

func (s MeetingStatus) CanTransitionTo(next MeetingStatus) bool {
	for _, allowed := range meetingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOpen reports whether the request still blocks a new one for the same pair.
func (s MeetingStatus) IsOpen() bool {
	return s == MeetingPending || s == MeetingConfirmed
}

func (s MeetingStatus) IsTerminal() bool {
	return s == MeetingCompleted || s == MeetingCancelled
}

// OpenStatuses are the statuses that count toward the one-open-request rule.
func OpenStatuses() []MeetingStatus {
	return []MeetingStatus{MeetingPending, MeetingConfirmed}
}

type MeetingRequest struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	MemberID      uint          `gorm:"index;not null" json:"member_id"`
	Member        *Member       `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	CastID        uint          `gorm:"index;not null" json:"cast_id"`
	Cast          *Cast         `gorm:"foreignKey:CastID" json:"cast,omitempty"`
	Status        MeetingStatus `gorm:"size:20;index;not null" json:"status"`
	ScheduledDate *time.Time    `json:"scheduled_date"`
	Location      *string       `gorm:"size:255" json:"location"`
	AdminNotes    *string       `gorm:"type:text" json:"admin_notes"`
	ConfirmedAt   *time.Time    `json:"confirmed_at,omitempty"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	// ActiveKey is "<member>:<cast>" while open and NULL once terminal; the
	// unique index allows at most one open request per pair.
	ActiveKey *string   `gorm:"uniqueIndex;size:64" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MeetingRequest) TableName() string { return "meeting_requests" }

func ActiveKeyFor(memberID, castID uint) string {
	return fmt.Sprintf("%d:%d", memberID, castID)
}

// NewMeetingRequest builds a PENDING request with no scheduling fields.
func NewMeetingRequest(memberID, castID uint, now time.Time) *MeetingRequest {
	key := ActiveKeyFor(memberID, castID)
	return &MeetingRequest{
		MemberID:  memberID,
		CastID:    castID,
		Status:    MeetingPending,
		ActiveKey: &key,
		CreatedAt: now,
	}
}

// TransitionTo moves the request to next and stamps the matching timestamp.
// The request is left untouched when the move is not allowed.
func (m *MeetingRequest) TransitionTo(next MeetingStatus, at time.Time) error {
	if !m.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Status, next)
	}
	m.Status = next
	switch next {
	case MeetingConfirmed:
		m.ConfirmedAt = &at
	case MeetingCompleted:
		m.CompletedAt = &at
	case MeetingCancelled:
		m.CancelledAt = &at
	}
	if next.IsTerminal() {
		m.ActiveKey = nil
	}
	return nil
}
