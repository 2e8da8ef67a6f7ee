package models

import "time"

// SchedulerLock is a lease row. The replica that inserts (Job, Period)
// first runs that job for that period.
type SchedulerLock struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Job        string    `gorm:"uniqueIndex:idx_scheduler_job_period;size:100;not null" json:"job"`
	Period     string    `gorm:"uniqueIndex:idx_scheduler_job_period;size:32;not null" json:"period"`
	Holder     string    `gorm:"size:100" json:"holder"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `gorm:"index" json:"expires_at"`
}

func (SchedulerLock) TableName() string { return "scheduler_locks" }

// Expired reports whether another replica may take the lease over.
func (l *SchedulerLock) Expired(now time.Time) bool { return now.After(l.ExpiresAt) }
