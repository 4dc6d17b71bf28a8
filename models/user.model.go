package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin     = "admin"
	RoleStaff     = "staff"
	RoleCandidate = "candidate"

	AccountActive   = "active"
	AccountInactive = "inactive"
)

// User is an authentication account. Candidate data lives in the users document, keyed by UID.
type User struct {
	gorm.Model
	UID                 string     `gorm:"uniqueIndex;size:64;not null" json:"uid"`
	DisplayName         string     `gorm:"default:''" json:"displayName"`
	Email               string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	SecurityQuestion    string     `gorm:"size:255" json:"securityQuestion,omitempty"`
	SecurityAnswer      string     `json:"-"`
	Role                string     `gorm:"default:'candidate'" json:"role"`
	Status              string     `gorm:"default:'active'" json:"status"`
	IsEmailVerified     bool       `gorm:"default:false" json:"isEmailVerified"`
	LastLogin           *time.Time `json:"lastLogin"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LastFailedLogin     *time.Time `json:"-"`
	IsBlocked           bool       `gorm:"default:false" json:"-"`
	BlockedUntil        *time.Time `json:"-"`
	IsDeleted           bool       `gorm:"default:false" json:"-"`
}
