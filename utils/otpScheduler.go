package utils

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"nssc-portal/models"
)

// InitializeOTPScheduler purges stale OTP codes every hour. A code is kept for
// retention after it expires so a recent verification still counts at
// registration. Stop the returned scheduler on shutdown.
func InitializeOTPScheduler(db *gorm.DB, log *zap.Logger, retention time.Duration) (*cron.Cron, error) {
	log.Info("[OTP-SCHEDULER] Initializing OTP cleanup scheduler...")

	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		log.Info("[OTP-SCHEDULER] Running hourly OTP cleanup...")
		PurgeStaleOTPs(db, log, time.Now().Add(-retention))
	}); err != nil {
		return nil, err
	}

	c.Start()
	log.Info("[OTP-SCHEDULER] OTP scheduler started - runs hourly")
	return c, nil
}

// PurgeStaleOTPs hard-deletes codes that expired before cutoff or were retired
func PurgeStaleOTPs(db *gorm.DB, log *zap.Logger, cutoff time.Time) int64 {
	result := db.Unscoped().
		Where("expires_at < ? OR is_deleted = ?", cutoff, true).
		Delete(&models.OTP{})
	if result.Error != nil {
		log.Error("[OTP-SCHEDULER] Error purging OTPs", zap.Error(result.Error))
		return 0
	}

	log.Info("[OTP-SCHEDULER] Purged stale OTPs", zap.Int64("count", result.RowsAffected))
	return result.RowsAffected
}
