package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"nssc-portal/mailer"
	"nssc-portal/models"
	"nssc-portal/utils"
)

var (
	ErrInvalidOTP = errors.New("otp: invalid code")
	ErrOTPExpired = errors.New("otp: code expired")
	ErrOTPLocked  = errors.New("otp: too many wrong attempts")
)

const (
	otpDescription = "Email Registration OTP"
	maxOTPAttempts = 5
)

// OTPService issues and checks the email codes that gate registration.
type OTPService struct {
	db       *gorm.DB
	mail     mailer.Mailer
	validity time.Duration
	log      *zap.Logger
	now      func() time.Time
	generate func() string
}

func NewOTPService(db *gorm.DB, mail mailer.Mailer, validity time.Duration, log *zap.Logger) *OTPService {
	if log == nil {
		log = zap.NewNop()
	}
	if validity <= 0 {
		validity = 10 * time.Minute
	}
	return &OTPService{db: db, mail: mail, validity: validity, log: log, now: time.Now, generate: utils.GenerateOTP}
}

// Send mails a fresh code and stores it. Earlier unused codes for the address
// stop working. Nothing is stored when the email could not be sent.
func (s *OTPService) Send(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ? AND is_deleted = ?", email, false).Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return ErrEmailInUse
	}

	otp := s.generate()
	subject, html := mailer.OTPEmail(otp, s.validity)
	if err := s.mail.Send(ctx, email, subject, html); err != nil {
		return err
	}

	now := s.now()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OTP{}).
			Where("email = ? AND is_used = ? AND is_deleted = ?", email, false, false).
			Update("is_deleted", true).Error; err != nil {
			return err
		}
		return tx.Create(&models.OTP{
			Email:       email,
			Code:        otp,
			ExpiresAt:   now.Add(s.validity),
			Description: otpDescription,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	s.log.Info("otp sent", zap.String("email", email))
	return nil
}

// Verify marks the latest code of the address as used when code matches. Each
// wrong guess counts against that code, which is retired after maxOTPAttempts.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	db := s.db.WithContext(ctx)

	var otpRecord models.OTP
	err := db.Where("email = ? AND is_used = ? AND is_deleted = ?", email, false, false).
		Order("id desc").First(&otpRecord).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidOTP
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}

	now := s.now()
	if otpRecord.ExpiresAt.Before(now) {
		return ErrOTPExpired
	}

	if subtle.ConstantTimeCompare([]byte(otpRecord.Code), []byte(code)) != 1 {
		attempts := otpRecord.Attempts + 1
		updates := map[string]any{"attempts": gorm.Expr("attempts + 1")}
		if attempts >= maxOTPAttempts {
			updates["is_deleted"] = true
		}
		if err := db.Model(&otpRecord).Updates(updates).Error; err != nil {
			return fmt.Errorf("count otp attempt: %w", err)
		}
		if attempts >= maxOTPAttempts {
			s.log.Warn("otp retired after wrong attempts", zap.String("email", email), zap.Int("attempts", attempts))
			return ErrOTPLocked
		}
		return ErrInvalidOTP
	}

	otpRecord.IsUsed = true
	otpRecord.UsedAt = &now
	if err := db.Save(&otpRecord).Error; err != nil {
		return fmt.Errorf("update otp: %w", err)
	}
	return nil
}

// IsVerified reports whether the address verified a code within the validity window.
func (s *OTPService) IsVerified(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.OTP{}).
		Where("email = ? AND is_used = ? AND is_deleted = ? AND used_at > ?",
			normalizeEmail(email), true, false, s.now().Add(-s.validity)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check otp: %w", err)
	}
	return count > 0, nil
}

// Consume retires the verified codes of an address once registration succeeded.
func (s *OTPService) Consume(ctx context.Context, email string) error {
	return s.db.WithContext(ctx).Model(&models.OTP{}).
		Where("email = ? AND is_deleted = ?", normalizeEmail(email), false).
		Update("is_deleted", true).Error
}
