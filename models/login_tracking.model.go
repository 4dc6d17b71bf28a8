package models

import (
	"time"

	"gorm.io/gorm"
)

// LoginTracking is one successful sign-in of a portal account.
type LoginTracking struct {
	gorm.Model
	UserID    uint      `gorm:"index" json:"userId"`
	UID       string    `gorm:"size:64;index" json:"uid"`
	Role      string    `gorm:"size:32" json:"role"`
	IPAddress string    `gorm:"size:64" json:"ipAddress"`
	Device    string    `gorm:"size:255" json:"device"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}
