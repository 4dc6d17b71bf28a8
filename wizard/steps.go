package wizard

import (
	"encoding/json"
	"errors"
	"fmt"

	"nssc-portal/models"
	"nssc-portal/validators"
)

// ProfileStep is a 1-based index into the profile wizard.
type ProfileStep int

const (
	StepPrimary ProfileStep = iota + 1
	StepAddress
	StepParent
	StepCategory
	StepQualification
	StepTraining
	StepAdditional
	StepBank
	StepWorkExperience
	StepLock
)

// ProfileSteps is the number of steps in the profile wizard.
const ProfileSteps = int(StepLock)

var stepNames = [...]string{
	"Primary", "Address", "Parent", "Category", "Qualification",
	"Training", "Additional", "Bank", "Work Experience", "Lock",
}

func (s ProfileStep) String() string {
	if s < StepPrimary || s > StepLock {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s-1]
}

// StepNames lists the profile wizard steps in order.
func StepNames() []string {
	out := make([]string, len(stepNames))
	copy(out, stepNames[:])
	return out
}

var ErrUnknownStep = errors.New("unknown wizard step")

// StepPayload is the data submitted for exactly one profile step. The set of
// implementations is closed; see DecodeStep.
type StepPayload interface {
	Step() ProfileStep
	isStepPayload()
}

type PrimaryStep struct {
	FirstName       string `json:"firstName" validate:"required"`
	MiddleName      string `json:"middleName"`
	LastName        string `json:"lastName" validate:"required"`
	DOB             string `json:"dob" validate:"required,datetime=2006-01-02"`
	Gender          string `json:"gender" validate:"required,oneof=male female other"`
	PrimaryMobile   string `json:"primaryMobile" validate:"required,mobile"`
	SecondaryMobile string `json:"secondaryMobile" validate:"omitempty,mobile"`
}

type AddressStep struct {
	Address models.Address `json:"address"`
}

type ParentStep struct {
	Parent models.ParentDetails `json:"parent"`
}

type CategoryStep struct {
	Category models.CategoryDetails `json:"category"`
}

type QualificationStep struct {
	Qualifications []models.QualificationEntry `json:"qualifications" validate:"required,min=1,dive"`
}

type TrainingStep struct {
	CompletedTraining string `json:"completedTraining" validate:"required,oneof=Yes No"`
}

type AdditionalStep struct {
	Additional models.AdditionalDetails `json:"additional"`
	Languages  []string                 `json:"languages" validate:"required,min=1,dive,required"`
	PhotoURL   string                   `json:"photoUrl" validate:"required,url"`
	SignURL    string                   `json:"signUrl" validate:"required,url"`
}

type BankStep struct {
	Bank models.BankDetails `json:"bank"`
}

type WorkExperienceStep struct {
	HasWorkExperience string                       `json:"hasWorkExperience" validate:"required,oneof=Yes No"`
	Experiences       []models.WorkExperienceEntry `json:"experiences" validate:"dive"`
}

// LockStep confirms the declaration on the final step; submitting it finalizes the profile.
type LockStep struct {
	Declaration bool `json:"declaration" validate:"required"`
}

func (PrimaryStep) Step() ProfileStep        { return StepPrimary }
func (AddressStep) Step() ProfileStep        { return StepAddress }
func (ParentStep) Step() ProfileStep         { return StepParent }
func (CategoryStep) Step() ProfileStep       { return StepCategory }
func (QualificationStep) Step() ProfileStep  { return StepQualification }
func (TrainingStep) Step() ProfileStep       { return StepTraining }
func (AdditionalStep) Step() ProfileStep     { return StepAdditional }
func (BankStep) Step() ProfileStep           { return StepBank }
func (WorkExperienceStep) Step() ProfileStep { return StepWorkExperience }
func (LockStep) Step() ProfileStep           { return StepLock }

func (PrimaryStep) isStepPayload()        {}
func (AddressStep) isStepPayload()        {}
func (ParentStep) isStepPayload()         {}
func (CategoryStep) isStepPayload()       {}
func (QualificationStep) isStepPayload()  {}
func (TrainingStep) isStepPayload()       {}
func (AdditionalStep) isStepPayload()     {}
func (BankStep) isStepPayload()           {}
func (WorkExperienceStep) isStepPayload() {}
func (LockStep) isStepPayload()           {}

// DecodeStep parses the JSON body submitted for step.
func DecodeStep(step ProfileStep, body []byte) (StepPayload, error) {
	var p StepPayload
	switch step {
	case StepPrimary:
		p = &PrimaryStep{}
	case StepAddress:
		p = &AddressStep{}
	case StepParent:
		p = &ParentStep{}
	case StepCategory:
		p = &CategoryStep{}
	case StepQualification:
		p = &QualificationStep{}
	case StepTraining:
		p = &TrainingStep{}
	case StepAdditional:
		p = &AdditionalStep{}
	case StepBank:
		p = &BankStep{}
	case StepWorkExperience:
		p = &WorkExperienceStep{}
	case StepLock:
		p = &LockStep{}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStep, int(step))
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, p); err != nil {
			return nil, fmt.Errorf("decode %s step: %w", step, err)
		}
	}
	return deref(p), nil
}

func deref(p StepPayload) StepPayload {
	switch v := p.(type) {
	case *PrimaryStep:
		return *v
	case *AddressStep:
		return *v
	case *ParentStep:
		return *v
	case *CategoryStep:
		return *v
	case *QualificationStep:
		return *v
	case *TrainingStep:
		return *v
	case *AdditionalStep:
		return *v
	case *BankStep:
		return *v
	case *WorkExperienceStep:
		return *v
	case *LockStep:
		return *v
	}
	return p
}

// Normalize recomputes derived fields and enforces list invariants before validation.
func Normalize(p StepPayload) StepPayload {
	switch v := p.(type) {
	case QualificationStep:
		entries := make([]models.QualificationEntry, len(v.Qualifications))
		for i, q := range v.Qualifications {
			entries[i] = ApplyDerived(q)
		}
		v.Qualifications = entries
		return v
	case WorkExperienceStep:
		if v.HasWorkExperience != "Yes" || v.Experiences == nil {
			v.Experiences = []models.WorkExperienceEntry{}
		}
		return v
	case AdditionalStep:
		if v.Languages == nil {
			v.Languages = []string{}
		}
		return v
	}
	return p
}

// ValidateStep runs the declarative rules for one step plus the cross-field rules
// the tags cannot express.
func ValidateStep(p StepPayload) validators.FieldErrors {
	errs := validators.Struct(p)
	if v, ok := p.(WorkExperienceStep); ok && v.HasWorkExperience == "Yes" && len(v.Experiences) == 0 {
		errs.Add("experiences", "Add at least one work experience entry!")
	}
	if v, ok := p.(LockStep); ok && !v.Declaration {
		errs.Add("declaration", "Please accept the declaration before locking your profile!")
	}
	return errs
}

// Patch returns the top-level JSON keys written by a step.
func Patch(p StepPayload) (map[string]any, error) {
	if _, ok := p.(LockStep); ok {
		return map[string]any{}, nil
	}
	return ToMap(p)
}

// ToMap converts a JSON-tagged value to a generic document map.
func ToMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
