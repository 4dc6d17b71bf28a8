package models

import "time"

const (
	CollectionUsers    = "users"
	CollectionSettings = "settings"

	FinalizeStateNone       = ""
	FinalizeStateFinalizing = "finalizing"
	FinalizeStateSealed     = "sealed"
)

// CandidateProfile is the users/{uid} document. Sections are top-level keys so a
// wizard step can be merged without touching unrelated sections.
type CandidateProfile struct {
	UID              string `json:"uid"`
	ProfileID        string `json:"profileId,omitempty"`
	FirstName        string `json:"firstName,omitempty"`
	MiddleName       string `json:"middleName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	DOB              string `json:"dob,omitempty"`
	Gender           string `json:"gender,omitempty"`
	Email            string `json:"email"`
	PrimaryMobile    string `json:"primaryMobile,omitempty"`
	SecondaryMobile  string `json:"secondaryMobile,omitempty"`
	SecurityQuestion string `json:"securityQuestion,omitempty"`

	Address           *Address              `json:"address,omitempty"`
	Parent            *ParentDetails        `json:"parent,omitempty"`
	Category          *CategoryDetails      `json:"category,omitempty"`
	Qualifications    []QualificationEntry  `json:"qualifications"`
	CompletedTraining string                `json:"completedTraining,omitempty"`
	Languages         []string              `json:"languages"`
	Additional        *AdditionalDetails    `json:"additional,omitempty"`
	Bank              *BankDetails          `json:"bank,omitempty"`
	HasWorkExperience string                `json:"hasWorkExperience,omitempty"`
	Experiences       []WorkExperienceEntry `json:"experiences"`
	PhotoURL          string                `json:"photoUrl,omitempty"`
	SignURL           string                `json:"signUrl,omitempty"`

	ProfileCompletion float64       `json:"profileCompletion"`
	ProfileLocked     bool          `json:"profileLocked"`
	FinalizeState     string        `json:"finalizeState,omitempty"`
	CurrentStep       int           `json:"currentStep,omitempty"`
	AppliedCourses    []Application `json:"appliedCourses,omitempty"`
	// DocumentUploads holds the appointment checklist uploads by document type.
	DocumentUploads map[string]UploadedDocument `json:"documentUploads,omitempty"`
	CreatedAt       time.Time                   `json:"createdAt"`
}

// FullName joins the non-empty name parts.
func (p CandidateProfile) FullName() string {
	name := ""
	for _, part := range []string{p.FirstName, p.MiddleName, p.LastName} {
		if part == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += part
	}
	return name
}

type Address struct {
	Line1    string `json:"line1" validate:"required"`
	Line2    string `json:"line2"`
	City     string `json:"city" validate:"required"`
	District string `json:"district" validate:"required"`
	State    string `json:"state" validate:"required"`
	Pincode  string `json:"pincode" validate:"required,pincode"`
}

type ParentDetails struct {
	FatherName     string `json:"fatherName" validate:"required"`
	MotherName     string `json:"motherName" validate:"required"`
	GuardianName   string `json:"guardianName"`
	GuardianMobile string `json:"guardianMobile" validate:"omitempty,mobile"`
}

type CategoryDetails struct {
	Category    string `json:"category" validate:"required,oneof=General OBC SC ST EWS"`
	Disability  string `json:"disability" validate:"required,oneof=Yes No"`
	Nationality string `json:"nationality" validate:"required"`
	Religion    string `json:"religion"`
}

// QualificationEntry holds the raw marks inputs as entered plus the derived
// percentage and class grade.
type QualificationEntry struct {
	Examination      string `json:"examination" validate:"required,oneof=SSC HSC Diploma 'Advanced Diploma' Degree 'Master Degree' 'Post Graduation Diploma'"`
	BoardUniversity  string `json:"boardUniversity" validate:"required"`
	SchoolCollege    string `json:"schoolCollege" validate:"required"`
	PassingMonthYear string `json:"passingMonthYear" validate:"required"`
	Result           string `json:"result" validate:"required,oneof=Pass Fail"`
	Mode             string `json:"mode" validate:"required,oneof=Regular Distance Part-Time"`
	MarksSystem      string `json:"marksSystem" validate:"required,oneof=Marks Grade CGPA"`
	MarksObtained    string `json:"marksObtained"`
	OutOfMarks       string `json:"outOfMarks"`
	CGPA             string `json:"cgpa"`
	Percentage       string `json:"percentage" validate:"required"`
	ClassGrade       string `json:"classGrade" validate:"required"`
}

type AdditionalDetails struct {
	MaritalStatus  string `json:"maritalStatus" validate:"required,oneof=Single Married Other"`
	IdentityMark   string `json:"identityMark"`
	EmploymentType string `json:"employmentType"`
}

type BankDetails struct {
	AccountHolderName string `json:"accountHolderName" validate:"required"`
	AccountNumber     string `json:"accountNumber" validate:"required,numeric,min=9,max=18"`
	IFSC              string `json:"ifsc" validate:"required,ifsc"`
	BankName          string `json:"bankName" validate:"required"`
	Branch            string `json:"branch"`
}

type WorkExperienceEntry struct {
	Organization string `json:"organization" validate:"required"`
	Designation  string `json:"designation" validate:"required"`
	From         string `json:"from" validate:"required"`
	To           string `json:"to" validate:"required"`
}

// NewCandidateProfile returns the defaults used when a profile is first visited.
func NewCandidateProfile(uid, email string) CandidateProfile {
	return CandidateProfile{
		UID:            uid,
		Email:          email,
		Qualifications: []QualificationEntry{},
		Languages:      []string{},
		Experiences:    []WorkExperienceEntry{},
		ProfileLocked:  false,
		CreatedAt:      time.Now().UTC(),
	}
}
