package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nssc-portal/models"
	"nssc-portal/store"
	"nssc-portal/wizard"
)

var (
	ErrApplicationNotFound     = errors.New("application not found")
	ErrInvalidRegistrationYear = errors.New("invalid registration year")
	ErrInvalidTransition       = errors.New("application status cannot change this way")
)

// PaymentSlip is the payment confirmation shown after applying.
type PaymentSlip struct {
	Name             string `json:"name"`
	ApplicationID    string `json:"applicationId"`
	AdmissionSession string `json:"admissionSession"`
	CourseType       string `json:"courseType"`
	Fee              string `json:"fee"`
}

type ApplicationService struct {
	docs store.DocumentStore
	log  *zap.Logger
	now  func() time.Time
}

func NewApplicationService(docs store.DocumentStore, log *zap.Logger) *ApplicationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ApplicationService{docs: docs, log: log, now: time.Now}
}

// RegistrationYears lists the sessions a candidate may apply for today.
func (s *ApplicationService) RegistrationYears() []string {
	return wizard.RegistrationYears(s.now())
}

func (s *ApplicationService) List(ctx context.Context, uid string) ([]models.Application, error) {
	profile, err := s.profile(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return []models.Application{}, nil
	}
	if err != nil {
		return nil, err
	}
	if profile.AppliedCourses == nil {
		return []models.Application{}, nil
	}
	return profile.AppliedCourses, nil
}

func (s *ApplicationService) Get(ctx context.Context, uid, id string) (models.Application, error) {
	profile, err := s.profile(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return models.Application{}, ErrApplicationNotFound
	}
	if err != nil {
		return models.Application{}, err
	}
	for _, app := range profile.AppliedCourses {
		if app.ID == id {
			return app, nil
		}
	}
	return models.Application{}, ErrApplicationNotFound
}

// Apply appends a Pending application for the chosen registration year.
func (s *ApplicationService) Apply(ctx context.Context, uid, registrationYear string) (models.Application, error) {
	now := s.now()
	if !wizard.ValidRegistrationYear(registrationYear, now) {
		return models.Application{}, ErrInvalidRegistrationYear
	}

	var created models.Application
	_, err := s.docs.Transact(ctx, models.CollectionUsers, uid, func(current store.Snapshot) (map[string]any, error) {
		if !current.Exists() {
			return nil, store.ErrNotFound
		}
		profile, err := decodeProfile(current)
		if err != nil {
			return nil, err
		}
		created = models.Application{
			ID:               uuid.NewString(),
			ApplicationID:    wizard.ApplicationID(registrationYear, len(profile.AppliedCourses)),
			RegistrationYear: registrationYear,
			CourseCategory:   models.CourseCategoryNSSC,
			Amount:           models.ApplicationAmount,
			Date:             now.UTC(),
			LastUpdated:      now.UTC(),
			Status:           models.ApplicationPending,
		}
		return appliedCoursesPatch(append(profile.AppliedCourses, created))
	})
	if err != nil {
		return models.Application{}, err
	}

	s.log.Info("application created", zap.String("uid", uid), zap.String("applicationId", created.ApplicationID))
	return created, nil
}

// Slip builds the payment confirmation for one application.
func (s *ApplicationService) Slip(ctx context.Context, uid, id string) (PaymentSlip, error) {
	profile, err := s.profile(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return PaymentSlip{}, ErrApplicationNotFound
	}
	if err != nil {
		return PaymentSlip{}, err
	}
	for _, app := range profile.AppliedCourses {
		if app.ID != id {
			continue
		}
		return PaymentSlip{
			Name:             strings.ToUpper(profile.FullName()),
			ApplicationID:    app.ApplicationID,
			AdmissionSession: app.RegistrationYear,
			CourseType:       app.CourseCategory,
			Fee:              app.Amount,
		}, nil
	}
	return PaymentSlip{}, ErrApplicationNotFound
}

// UpdateStatus records an admin review decision on a booked application.
// Documents follow the decision: Verified marks them verified, anything else rejected.
func (s *ApplicationService) UpdateStatus(ctx context.Context, uid, id, status, remarks string) (models.Application, error) {
	docStatus := models.DocumentRejected
	switch status {
	case models.ApplicationVerified:
		docStatus = models.DocumentVerified
	case models.ApplicationRejected, models.ApplicationRefillRequired:
	default:
		return models.Application{}, ErrInvalidTransition
	}

	var updated models.Application
	err := s.updateApplication(ctx, uid, id, func(app *models.Application) error {
		if app.Status != models.ApplicationAppointmentBooked {
			return ErrInvalidTransition
		}
		app.Status = status
		app.Remarks = remarks
		app.LastUpdated = s.now().UTC()
		for i := range app.Documents {
			app.Documents[i].Status = docStatus
		}
		updated = *app
		return nil
	})
	if err != nil {
		return models.Application{}, err
	}

	s.log.Info("application reviewed", zap.String("uid", uid), zap.String("applicationId", updated.ApplicationID), zap.String("status", status))
	return updated, nil
}

// updateApplication applies fn to the application with the given id and writes
// the list back in one versioned write.
func (s *ApplicationService) updateApplication(ctx context.Context, uid, id string, fn func(*models.Application) error) error {
	_, err := s.docs.Transact(ctx, models.CollectionUsers, uid, func(current store.Snapshot) (map[string]any, error) {
		if !current.Exists() {
			return nil, ErrApplicationNotFound
		}
		profile, err := decodeProfile(current)
		if err != nil {
			return nil, err
		}
		for i := range profile.AppliedCourses {
			if profile.AppliedCourses[i].ID != id {
				continue
			}
			if err := fn(&profile.AppliedCourses[i]); err != nil {
				return nil, err
			}
			return appliedCoursesPatch(profile.AppliedCourses)
		}
		return nil, ErrApplicationNotFound
	})
	return err
}

func (s *ApplicationService) profile(ctx context.Context, uid string) (models.CandidateProfile, error) {
	snap, err := s.docs.Get(ctx, models.CollectionUsers, uid)
	if err != nil {
		return models.CandidateProfile{}, err
	}
	return decodeProfile(snap)
}

func appliedCoursesPatch(apps []models.Application) (map[string]any, error) {
	patch, err := wizard.ToMap(struct {
		AppliedCourses []models.Application `json:"appliedCourses"`
	}{apps})
	if err != nil {
		return nil, fmt.Errorf("encode applications: %w", err)
	}
	return patch, nil
}
