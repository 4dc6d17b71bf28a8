package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nssc-portal/models"
	"nssc-portal/store"
	"nssc-portal/utils"
	"nssc-portal/wizard"
)

var ErrEmailNotVerified = errors.New("email has not been verified with an OTP")

// Registration is the candidate sign-up form.
type Registration struct {
	FirstName        string `json:"firstName" validate:"required"`
	MiddleName       string `json:"middleName"`
	LastName         string `json:"lastName" validate:"required"`
	DOB              string `json:"dob" validate:"required,datetime=2006-01-02"`
	Gender           string `json:"gender" validate:"required,oneof=male female other"`
	Email            string `json:"email" validate:"required,email"`
	PrimaryMobile    string `json:"primaryMobile" validate:"required,mobile"`
	SecondaryMobile  string `json:"secondaryMobile" validate:"omitempty,mobile"`
	SecurityQuestion string `json:"securityQuestion" validate:"required"`
	SecurityAnswer   string `json:"securityAnswer" validate:"required"`
	Password         string `json:"password" validate:"required,password"`
	ConfirmPassword  string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Registered is returned to the registration success page.
type Registered struct {
	UID       string `json:"uid"`
	ProfileID string `json:"profileId"`
	Email     string `json:"email"`
}

type RegistrationService struct {
	auth *AuthService
	otp  *OTPService
	docs store.DocumentStore
	log  *zap.Logger
	now  func() time.Time
}

func NewRegistrationService(auth *AuthService, otp *OTPService, docs store.DocumentStore, log *zap.Logger) *RegistrationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{auth: auth, otp: otp, docs: docs, log: log, now: time.Now}
}

// Register creates the account and its users document. The account is removed
// again when the document cannot be written.
func (s *RegistrationService) Register(ctx context.Context, in Registration) (Registered, error) {
	verified, err := s.otp.IsVerified(ctx, in.Email)
	if err != nil {
		return Registered{}, err
	}
	if !verified {
		return Registered{}, ErrEmailNotVerified
	}

	user, err := s.auth.CreateAccount(ctx, NewAccount{
		Email:            in.Email,
		Password:         in.Password,
		DisplayName:      joinName(in.FirstName, in.LastName),
		Role:             models.RoleCandidate,
		Status:           models.AccountActive,
		SecurityQuestion: in.SecurityQuestion,
		SecurityAnswer:   in.SecurityAnswer,
		EmailVerified:    true,
	})
	if err != nil {
		return Registered{}, err
	}

	now := s.now()
	profile := models.NewCandidateProfile(user.UID, user.Email)
	profile.ProfileID = utils.GenerateProfileID(now)
	profile.FirstName = in.FirstName
	profile.MiddleName = in.MiddleName
	profile.LastName = in.LastName
	profile.DOB = in.DOB
	profile.Gender = in.Gender
	profile.PrimaryMobile = in.PrimaryMobile
	profile.SecondaryMobile = in.SecondaryMobile
	profile.SecurityQuestion = in.SecurityQuestion
	profile.CreatedAt = now.UTC()

	data, err := wizard.ToMap(profile)
	if err == nil {
		_, err = s.docs.Set(ctx, models.CollectionUsers, user.UID, data)
	}
	if err != nil {
		s.log.Error("writing profile document failed, removing account", zap.String("uid", user.UID), zap.Error(err))
		if derr := s.auth.DeleteAccount(ctx, user.UID); derr != nil {
			s.log.Error("removing account failed", zap.String("uid", user.UID), zap.Error(derr))
		}
		return Registered{}, fmt.Errorf("create profile: %w", err)
	}

	if err := s.otp.Consume(ctx, user.Email); err != nil {
		s.log.Warn("retiring otp failed", zap.String("email", user.Email), zap.Error(err))
	}

	s.log.Info("candidate registered", zap.String("uid", user.UID), zap.String("profileId", profile.ProfileID))
	return Registered{UID: user.UID, ProfileID: profile.ProfileID, Email: user.Email}, nil
}

func joinName(first, last string) string {
	if last == "" {
		return first
	}
	return first + " " + last
}
