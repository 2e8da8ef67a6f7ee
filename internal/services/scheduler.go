package services

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/models"
	"github.com/luneclub/lune/backend/pkg/logger"
)

// Scheduler runs periodic maintenance jobs. Each run first claims a
// SchedulerLock row for (job, period) so that with several replicas only
// one of them does the work.
type Scheduler struct {
	db       *gorm.DB
	cron     *cron.Cron
	instance string
}

func NewScheduler(db *gorm.DB) *Scheduler {
	host, _ := os.Hostname()
	return &Scheduler{
		db:       db,
		cron:     cron.New(),
		instance: host,
	}
}

// Every registers job under name with a standard five-field cron spec.
// period derives the lock key from the fire time, e.g. the calendar day.
func (s *Scheduler) Every(spec, name string, period func(time.Time) string, job func() error) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.runLocked(name, period(timeNow()), job)
	})
	return err
}

func (s *Scheduler) runLocked(name, key string, job func() error) {
	if !TryAcquireSchedulerLock(s.db, name, key, s.instance, 24*time.Hour) {
		logger.Debug().Str("job", name).Str("key", key).Msg("scheduled job already claimed")
		return
	}
	if err := job(); err != nil {
		logger.Error().Err(err).Str("job", name).Msg("scheduled job failed")
		LogError("scheduler", name, err.Error(), nil, "", "", nil)
		return
	}
	logger.Info().Str("job", name).Str("key", key).Msg("scheduled job finished")
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// DailyKey buckets fire times by UTC calendar day.
func DailyKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

// TryAcquireSchedulerLock inserts the (job, period) lease. The unique index
// makes the insert fail for every replica but the first; expired leases
// are cleared first so a crashed holder does not block the next period.
func TryAcquireSchedulerLock(db *gorm.DB, job, period, holder string, ttl time.Duration) bool {
	now := timeNow()
	db.Where("job = ? AND period = ? AND expires_at < ?", job, period, now).
		Delete(&models.SchedulerLock{})

	lock := models.SchedulerLock{
		Job:        job,
		Period:     period,
		Holder:     holder,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}
	return db.Create(&lock).Error == nil
}
