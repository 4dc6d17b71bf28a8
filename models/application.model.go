package models

import "time"

const (
	ApplicationPending           = "Pending"
	ApplicationAppointmentBooked = "Appointment Booked"
	ApplicationVerified          = "Verified"
	ApplicationRejected          = "Rejected"
	ApplicationRefillRequired    = "Refill Required"

	DocumentPending  = "Pending"
	DocumentVerified = "Verified"
	DocumentRejected = "Rejected"

	CourseCategoryNSSC = "National Skill Sector Council"
	CourseNSSC         = "nssc"
	ApplicationAmount  = "2000.00"
)

// Application is one "apply for registration" record inside the candidate profile.
type Application struct {
	ID               string                `json:"id"`
	ApplicationID    string                `json:"applicationId"`
	RegistrationYear string                `json:"registrationYear"`
	CourseCategory   string                `json:"courseCategory"`
	Amount           string                `json:"amount"`
	Date             time.Time             `json:"date"`
	LastUpdated      time.Time             `json:"lastUpdated"`
	Status           string                `json:"status"`
	AppointmentDate  *time.Time            `json:"appointmentDate,omitempty"`
	TimeSlot         string                `json:"timeSlot,omitempty"`
	Documents        []ApplicationDocument `json:"documents,omitempty"`
	Details          *AppointmentDetails   `json:"details,omitempty"`
	Remarks          string                `json:"remarks,omitempty"`
}

// AppointmentDetails are the student details confirmed in the first step of the
// appointment wizard.
type AppointmentDetails struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	LastName string `json:"lastName" validate:"required,max=50"`
	DOB      string `json:"dob" validate:"required,datetime=2006-01-02"`
	Course   string `json:"course" validate:"required,oneof=nssc"`
	Section  string `json:"section" validate:"required,oneof=A B"`
}

// Bookable reports whether the appointment wizard may be opened for this application.
func (a Application) Bookable() bool {
	switch a.Status {
	case ApplicationAppointmentBooked, ApplicationVerified, ApplicationRejected:
		return false
	}
	return true
}

type ApplicationDocument struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Object     string    `json:"object,omitempty"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UploadedDocument is the latest checklist upload of one document type.
type UploadedDocument struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Object     string    `json:"object"`
	UploadedAt time.Time `json:"uploadedAt"`
}
