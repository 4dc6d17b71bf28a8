package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"go.uber.org/zap"

	"nssc-portal/models"
	"nssc-portal/store"
	"nssc-portal/utils"
	"nssc-portal/validators"
	"nssc-portal/wizard"
)

var (
	ErrNotBookable       = errors.New("application cannot be booked in its current status")
	ErrDetailsIncomplete = errors.New("student details are incomplete")
)

// DetailsError lists the student detail fields that failed validation.
type DetailsError struct {
	Fields validators.FieldErrors
}

func (e *DetailsError) Error() string { return ErrDetailsIncomplete.Error() }

func (e *DetailsError) Unwrap() error { return ErrDetailsIncomplete }

// BookingRequest carries everything the appointment wizard collected.
type BookingRequest struct {
	ApplicationID string                    `json:"applicationId"`
	Details       models.AppointmentDetails `json:"details"`
	Documents     []string                  `json:"documents"`
	Uploads       map[string]wizard.FileRef `json:"uploads"`
	Date          string                    `json:"date"`
	Slot          string                    `json:"slot"`
}

type AppointmentService struct {
	apps  *ApplicationService
	files store.FileStore
	log   *zap.Logger
	now   func() time.Time
}

func NewAppointmentService(apps *ApplicationService, files store.FileStore, log *zap.Logger) *AppointmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AppointmentService{apps: apps, files: files, log: log, now: time.Now}
}

// Calendar is today's availability.
func (s *AppointmentService) Calendar() wizard.Calendar {
	return wizard.DefaultCalendar(s.now())
}

// Upload stores one checklist document for the candidate and records it on the
// profile. Only recorded uploads can be attached to a booking.
func (s *AppointmentService) Upload(ctx context.Context, uid, docType string, fh *multipart.FileHeader) (wizard.FileRef, error) {
	if _, ok := wizard.DocumentLabel(docType); !ok {
		return wizard.FileRef{}, wizard.ErrUnknownDocument
	}
	stored, err := utils.SaveUploadedFile(ctx, s.files, fh, "users/"+uid+"/documents/"+docType)
	if err != nil {
		return wizard.FileRef{}, err
	}

	record := models.UploadedDocument{Name: stored.Name, URL: stored.URL, Object: stored.Object, UploadedAt: s.now().UTC()}
	_, err = s.apps.docs.Transact(ctx, models.CollectionUsers, uid, func(current store.Snapshot) (map[string]any, error) {
		if !current.Exists() {
			return nil, store.ErrNotFound
		}
		profile, err := decodeProfile(current)
		if err != nil {
			return nil, err
		}
		uploads := make(map[string]models.UploadedDocument, len(profile.DocumentUploads)+1)
		for k, v := range profile.DocumentUploads {
			uploads[k] = v
		}
		uploads[docType] = record
		patch, err := wizard.ToMap(struct {
			DocumentUploads map[string]models.UploadedDocument `json:"documentUploads"`
		}{uploads})
		if err != nil {
			return nil, fmt.Errorf("encode uploads: %w", err)
		}
		return patch, nil
	})
	if err != nil {
		s.log.Error("recording document upload failed", zap.String("uid", uid), zap.String("documentType", docType), zap.Error(err))
		return wizard.FileRef{}, err
	}

	s.log.Info("document uploaded", zap.String("uid", uid), zap.String("documentType", docType), zap.String("object", stored.Object))
	return wizard.FileRef{Name: stored.Name, URL: stored.URL}, nil
}

// Replay runs the wizard over a request and returns the resulting booking.
// A client upload reference is attached only when it names the upload recorded
// for that document type.
func (s *AppointmentService) Replay(req BookingRequest, uploaded map[string]models.UploadedDocument) (wizard.Booking, error) {
	if errs := validators.Struct(normalizeDetails(req.Details)); !errs.OK() {
		return wizard.Booking{}, &DetailsError{Fields: errs}
	}

	cal := s.Calendar()
	w := wizard.NewAppointmentWizard(cal)

	for _, id := range req.Documents {
		if err := w.SelectDocument(id, true); err != nil {
			return wizard.Booking{}, err
		}
	}
	if err := w.ToUploads(); err != nil {
		return wizard.Booking{}, err
	}
	for _, id := range w.SelectedDocuments() {
		ref, ok := req.Uploads[id]
		rec, recorded := uploaded[id]
		if !ok || !recorded || ref.URL != rec.URL {
			continue
		}
		if err := w.AttachUpload(id, wizard.FileRef{Name: rec.Name, URL: rec.URL}); err != nil {
			return wizard.Booking{}, err
		}
	}
	if err := w.ToConfirm(); err != nil {
		return wizard.Booking{}, err
	}

	date, err := cal.ParseDate(req.Date)
	if err != nil {
		return wizard.Booking{}, wizard.ErrDateUnavailable
	}
	if err := w.PickDate(date); err != nil {
		return wizard.Booking{}, err
	}
	if err := w.PickSlot(req.Slot); err != nil {
		return wizard.Booking{}, err
	}
	return w.Booking()
}

// Book validates the request and marks the application booked. The status,
// appointment and documents change together or not at all.
func (s *AppointmentService) Book(ctx context.Context, uid string, req BookingRequest) (models.Application, error) {
	profile, err := s.apps.profile(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return models.Application{}, ErrApplicationNotFound
	}
	if err != nil {
		return models.Application{}, err
	}
	booking, err := s.Replay(req, profile.DocumentUploads)
	if err != nil {
		return models.Application{}, err
	}
	details := normalizeDetails(req.Details)

	now := s.now().UTC()
	var updated models.Application
	err = s.apps.updateApplication(ctx, uid, req.ApplicationID, func(app *models.Application) error {
		if !app.Bookable() {
			return ErrNotBookable
		}
		docs := make([]models.ApplicationDocument, 0, len(booking.Documents))
		for _, d := range booking.Documents {
			docs = append(docs, models.ApplicationDocument{
				ID:         d.ID,
				Label:      d.Label,
				Name:       d.File.Name,
				URL:        d.File.URL,
				Object:     profile.DocumentUploads[d.ID].Object,
				Status:     models.DocumentPending,
				UploadedAt: now,
			})
		}
		date := booking.Date
		app.Status = models.ApplicationAppointmentBooked
		app.AppointmentDate = &date
		app.TimeSlot = booking.Slot
		app.Documents = docs
		app.Details = &details
		app.Remarks = ""
		app.LastUpdated = now
		updated = *app
		return nil
	})
	if err != nil {
		s.log.Error("booking appointment failed", zap.String("uid", uid), zap.String("application", req.ApplicationID), zap.Error(err))
		return models.Application{}, err
	}

	s.log.Info("appointment booked",
		zap.String("uid", uid), zap.String("applicationId", updated.ApplicationID),
		zap.Time("date", booking.Date), zap.String("slot", booking.Slot))
	return updated, nil
}

func normalizeDetails(d models.AppointmentDetails) models.AppointmentDetails {
	d.FullName = strings.TrimSpace(d.FullName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.DOB = strings.TrimSpace(d.DOB)
	d.Course = strings.ToLower(strings.TrimSpace(d.Course))
	d.Section = strings.ToUpper(strings.TrimSpace(d.Section))
	return d
}
