package models

import (
	"gorm.io/gorm"
)

const (
	PermViewProfile        = "view-profile"
	PermEditProfile        = "edit-profile"
	PermApply              = "apply"
	PermBookAppointment    = "book-appointment"
	PermViewCandidates     = "view-candidates"
	PermReviewApplications = "review-applications"
	PermCreateUsers        = "create-users"
	PermManageSettings     = "manage-settings"
)

type Permission struct {
	gorm.Model
	UserID     uint   `gorm:"not null;index"`
	Role       string `gorm:"size:32"`
	Permission string `gorm:"type:varchar(255)"` // e.g., "book-appointment"
	IsDeleted  bool   `gorm:"default:false"`
}

// DefaultPermissions returns the permission strings seeded for a role.
func DefaultPermissions(role string) []string {
	candidate := []string{PermViewProfile, PermEditProfile, PermApply, PermBookAppointment}
	switch role {
	case RoleAdmin:
		return append(candidate, PermViewCandidates, PermReviewApplications, PermCreateUsers, PermManageSettings)
	case RoleStaff:
		return []string{PermViewProfile, PermViewCandidates, PermReviewApplications}
	default:
		return candidate
	}
}
