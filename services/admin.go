package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"nssc-portal/models"
	"nssc-portal/store"
	"nssc-portal/utils"
	"nssc-portal/wizard"
)

const dashboardPageSize = 100

// DashboardStats are the counters on the admin dashboard.
type DashboardStats struct {
	Candidates     int64            `json:"candidates"`
	Staff          int64            `json:"staff"`
	Profiles       int64            `json:"profiles"`
	LockedProfiles int64            `json:"lockedProfiles"`
	Applications   int64            `json:"applications"`
	ByStatus       map[string]int64 `json:"byStatus"`
}

// CandidateSummary is one row of the admin candidate list.
type CandidateSummary struct {
	UID               string  `json:"uid"`
	ProfileID         string  `json:"profileId"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	PrimaryMobile     string  `json:"primaryMobile"`
	ProfileCompletion float64 `json:"profileCompletion"`
	ProfileLocked     bool    `json:"profileLocked"`
	Applications      int     `json:"applications"`
}

// NewUser is the admin create-user form.
type NewUser struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"required,oneof=admin staff candidate"`
	Status    string `json:"status" validate:"required,oneof=active inactive"`
}

type AdminService struct {
	db   *gorm.DB
	auth *AuthService
	apps *ApplicationService
	docs store.DocumentStore
	log  *zap.Logger
	now  func() time.Time
}

func NewAdminService(db *gorm.DB, auth *AuthService, apps *ApplicationService, docs store.DocumentStore, log *zap.Logger) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{db: db, auth: auth, apps: apps, docs: docs, log: log, now: time.Now}
}

// Dashboard counts accounts from the users table and walks the profile
// documents for lock and application counters.
func (s *AdminService) Dashboard(ctx context.Context) (DashboardStats, error) {
	stats := DashboardStats{ByStatus: map[string]int64{}}
	db := s.db.WithContext(ctx).Model(&models.User{}).Where("is_deleted = ?", false).Session(&gorm.Session{})
	if err := db.Where("role = ?", models.RoleCandidate).Count(&stats.Candidates).Error; err != nil {
		return DashboardStats{}, fmt.Errorf("count candidates: %w", err)
	}
	if err := db.Where("role IN ?", []string{models.RoleAdmin, models.RoleStaff}).Count(&stats.Staff).Error; err != nil {
		return DashboardStats{}, fmt.Errorf("count staff: %w", err)
	}

	for offset := 0; ; offset += dashboardPageSize {
		page, total, err := s.docs.List(ctx, models.CollectionUsers, offset, dashboardPageSize)
		if err != nil {
			return DashboardStats{}, err
		}
		stats.Profiles = total
		for _, snap := range page {
			profile, err := decodeProfile(snap)
			if err != nil {
				s.log.Warn("skipping undecodable profile", zap.String("uid", snap.ID), zap.Error(err))
				continue
			}
			if profile.ProfileLocked {
				stats.LockedProfiles++
			}
			for _, app := range profile.AppliedCourses {
				stats.Applications++
				stats.ByStatus[app.Status]++
			}
		}
		if len(page) < dashboardPageSize {
			break
		}
	}
	return stats, nil
}

// Candidates pages through the profile documents.
func (s *AdminService) Candidates(ctx context.Context, page, limit int) ([]CandidateSummary, int64, error) {
	offset, _, limit := utils.Pagination(page, limit)
	snaps, total, err := s.docs.List(ctx, models.CollectionUsers, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CandidateSummary, 0, len(snaps))
	for _, snap := range snaps {
		profile, err := decodeProfile(snap)
		if err != nil {
			s.log.Warn("skipping undecodable profile", zap.String("uid", snap.ID), zap.Error(err))
			continue
		}
		out = append(out, CandidateSummary{
			UID:               snap.ID,
			ProfileID:         profile.ProfileID,
			Name:              profile.FullName(),
			Email:             profile.Email,
			PrimaryMobile:     profile.PrimaryMobile,
			ProfileCompletion: profile.ProfileCompletion,
			ProfileLocked:     profile.ProfileLocked,
			Applications:      len(profile.AppliedCourses),
		})
	}
	return out, total, nil
}

// Candidate returns one profile document for review.
func (s *AdminService) Candidate(ctx context.Context, uid string) (models.CandidateProfile, error) {
	snap, err := s.docs.Get(ctx, models.CollectionUsers, uid)
	if err != nil {
		return models.CandidateProfile{}, err
	}
	return decodeProfile(snap)
}

// CreateUser creates an account on behalf of an admin together with its users document.
func (s *AdminService) CreateUser(ctx context.Context, in NewUser) (models.User, error) {
	user, err := s.auth.CreateAccount(ctx, NewAccount{
		Email:         in.Email,
		Password:      in.Password,
		DisplayName:   joinName(strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)),
		Role:          in.Role,
		Status:        in.Status,
		EmailVerified: true,
	})
	if err != nil {
		return models.User{}, err
	}

	profile := models.NewCandidateProfile(user.UID, user.Email)
	profile.FirstName = strings.TrimSpace(in.FirstName)
	profile.LastName = strings.TrimSpace(in.LastName)
	if user.Role == models.RoleCandidate {
		profile.ProfileID = utils.GenerateProfileID(s.now())
	}
	data, err := wizard.ToMap(profile)
	if err == nil {
		data["role"] = user.Role
		data["status"] = user.Status
		_, err = s.docs.Set(ctx, models.CollectionUsers, user.UID, data)
	}
	if err != nil {
		if derr := s.auth.DeleteAccount(ctx, user.UID); derr != nil {
			s.log.Error("removing account failed", zap.String("uid", user.UID), zap.Error(derr))
		}
		return models.User{}, fmt.Errorf("create user document: %w", err)
	}

	s.log.Info("user created by admin", zap.String("uid", user.UID), zap.String("role", user.Role))
	return user, nil
}

// Review records the decision on a booked application.
func (s *AdminService) Review(ctx context.Context, uid, applicationID, status, remarks string) (models.Application, error) {
	return s.apps.UpdateStatus(ctx, uid, applicationID, status, remarks)
}
