package jobs

import (
	"time"

	"office-portal/logger"
	notificationModel "office-portal/models/notification"
	userModel "office-portal/models/user"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Retention window for read in-app notifications.
const notificationRetention = 90 * 24 * time.Hour

// Scheduler owns the recurring maintenance jobs.
type Scheduler struct {
	db   *gorm.DB
	cron *cron.Cron
}

// NewScheduler creates a new job scheduler
func NewScheduler(db *gorm.DB) *Scheduler {
	return &Scheduler{db: db, cron: cron.New()}
}

// Start registers the nightly cleanup and launches the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 3 * * *", s.runCleanup); err != nil {
		return err
	}
	s.cron.Start()
	logger.Info("Scheduled jobs started")
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runCleanup() {
	s.CleanupExpiredTrustedDevices()
	s.CleanupOldNotifications()
}

// CleanupExpiredTrustedDevices removes trusted-device tokens past their TTL.
func (s *Scheduler) CleanupExpiredTrustedDevices() {
	result := s.db.Where("expires_at <= ?", time.Now()).Delete(&userModel.TrustedDevice{})
	if result.Error != nil {
		logger.Error("Failed to clean up expired trusted devices", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		logger.Printf("Removed %d expired trusted devices", result.RowsAffected)
	}
}

// CleanupOldNotifications removes read notifications older than the retention
// window. Unread notifications are kept regardless of age.
func (s *Scheduler) CleanupOldNotifications() {
	cutoff := time.Now().Add(-notificationRetention)
	result := s.db.Where("read = ? AND created_at < ?", true, cutoff).Delete(&notificationModel.Notification{})
	if result.Error != nil {
		logger.Error("Failed to clean up old notifications", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		logger.Printf("Removed %d old notifications", result.RowsAffected)
	}
}
