package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"nssc-portal/middleware"
	"nssc-portal/models"
)

var (
	ErrEmailInUse      = errors.New("auth: email already in use")
	ErrWrongPassword   = errors.New("auth: wrong password")
	ErrUserNotFound    = errors.New("auth: user not found")
	ErrUserDisabled    = errors.New("auth: user disabled")
	ErrTooManyAttempts = errors.New("auth: too many failed attempts")
)

const (
	TokenTTL          = 24 * time.Hour
	maxFailedLogins   = 3
	blockDuration     = time.Minute
	failedLoginWindow = 15 * time.Minute
	revokedKeyPrefix  = "revoked:"
)

// AuthErrorMessage turns an auth failure into the text shown to the user.
func AuthErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmailInUse):
		return "This email address is already in use by another account."
	case errors.Is(err, ErrWrongPassword):
		return "Incorrect password. Please try again."
	case errors.Is(err, ErrUserNotFound):
		return "No user found with this email. Please sign up first."
	case errors.Is(err, ErrUserDisabled):
		return "This user account has been disabled."
	case errors.Is(err, ErrTooManyAttempts):
		return "Your account is temporarily blocked. Try again later."
	default:
		return "An unknown error occurred. Please try again."
	}
}

// NewAccount is the input to CreateAccount. Empty Role and Status default to
// candidate and active.
type NewAccount struct {
	Email            string
	Password         string
	DisplayName      string
	Role             string
	Status           string
	SecurityQuestion string
	SecurityAnswer   string
	EmailVerified    bool
}

// LoginMeta is recorded in login tracking on successful sign-in.
type LoginMeta struct {
	IP     string
	Device string
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

type AuthService struct {
	db        *gorm.DB
	rdb       *redis.Client
	secret    string
	saltRound int
	log       *zap.Logger
	now       func() time.Time
}

// NewAuthService builds the account service. rdb may be nil, which disables sign-out.
func NewAuthService(db *gorm.DB, rdb *redis.Client, secret string, saltRound int, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	if saltRound < bcrypt.MinCost {
		saltRound = bcrypt.DefaultCost
	}
	return &AuthService{db: db, rdb: rdb, secret: secret, saltRound: saltRound, log: log, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount stores a new account with a bcrypt hash and seeds its role permissions.
func (s *AuthService) CreateAccount(ctx context.Context, in NewAccount) (models.User, error) {
	email := normalizeEmail(in.Email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return models.User{}, ErrEmailInUse
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.saltRound)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		UID:              uuid.NewString(),
		DisplayName:      strings.TrimSpace(in.DisplayName),
		Email:            email,
		Password:         string(hashedPassword),
		SecurityQuestion: in.SecurityQuestion,
		Role:             in.Role,
		Status:           in.Status,
		IsEmailVerified:  in.EmailVerified,
	}
	if user.Role == "" {
		user.Role = models.RoleCandidate
	}
	if user.Status == "" {
		user.Status = models.AccountActive
	}
	if in.SecurityAnswer != "" {
		answer, err := bcrypt.GenerateFromPassword([]byte(strings.ToLower(strings.TrimSpace(in.SecurityAnswer))), s.saltRound)
		if err != nil {
			return models.User{}, fmt.Errorf("hash security answer: %w", err)
		}
		user.SecurityAnswer = string(answer)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return SeedPermissions(tx, user.Role, user.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrEmailInUse
		}
		return models.User{}, fmt.Errorf("create account: %w", err)
	}

	s.log.Info("account created", zap.String("uid", user.UID), zap.String("role", user.Role))
	return user, nil
}

// SeedPermissions seeds default permissions for a given role and user ID
func SeedPermissions(db *gorm.DB, role string, userID uint) error {
	var permissionRecords []models.Permission
	for _, p := range models.DefaultPermissions(role) {
		permissionRecords = append(permissionRecords, models.Permission{
			UserID:     userID,
			Role:       role,
			Permission: p,
		})
	}
	return db.Create(&permissionRecords).Error
}

// SignIn checks the password, applies the failed-login lockout and issues a token.
func (s *AuthService) SignIn(ctx context.Context, email, password string, meta LoginMeta) (Session, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("email = ? AND is_deleted = ?", normalizeEmail(email), false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, ErrUserNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}

	if user.Status != models.AccountActive {
		return Session{}, ErrUserDisabled
	}

	now := s.now()
	if user.IsBlocked && user.BlockedUntil != nil && user.BlockedUntil.After(now) {
		return Session{}, ErrTooManyAttempts
	}
	if user.IsBlocked {
		user.IsBlocked = false
		user.BlockedUntil = nil
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
	}

	if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > failedLoginWindow {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		user.FailedLoginAttempts++
		user.LastFailedLogin = &now

		// Block user after 3 failed attempts
		if user.FailedLoginAttempts >= maxFailedLogins {
			user.IsBlocked = true
			unblockTime := now.Add(blockDuration)
			user.BlockedUntil = &unblockTime
		}
		if err := db.Save(&user).Error; err != nil {
			s.log.Error("saving failed login", zap.String("uid", user.UID), zap.Error(err))
		}
		return Session{}, ErrWrongPassword
	}

	user.LastLogin = &now
	user.FailedLoginAttempts = 0
	user.LastFailedLogin = nil
	user.IsBlocked = false
	user.BlockedUntil = nil
	if err := db.Save(&user).Error; err != nil {
		s.log.Error("saving last login time", zap.String("uid", user.UID), zap.Error(err))
	}

	loginTracking := models.LoginTracking{
		UserID:    user.ID,
		UID:       user.UID,
		Role:      user.Role,
		IPAddress: meta.IP,
		Device:    meta.Device,
		Timestamp: now,
	}
	if err := db.Create(&loginTracking).Error; err != nil {
		s.log.Error("saving login tracking details", zap.String("uid", user.UID), zap.Error(err))
	}

	token, claims, err := middleware.GenerateJWT(s.secret, user, TokenTTL)
	if err != nil {
		return Session{}, fmt.Errorf("generate token: %w", err)
	}

	s.log.Info("user signed in", zap.String("uid", user.UID), zap.String("ip", meta.IP))
	return Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// SignOut revokes a token id until the token would have expired anyway.
func (s *AuthService) SignOut(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil || jti == "" {
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *AuthService) GetUser(ctx context.Context, uid string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("uid = ? AND is_deleted = ?", uid, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *AuthService) UpdateDisplayName(ctx context.Context, uid, name string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("uid = ? AND is_deleted = ?", uid, false).
		Update("display_name", strings.TrimSpace(name))
	if res.Error != nil {
		return fmt.Errorf("update display name: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteAccount removes an account and its permissions. Used to undo a
// registration whose profile document could not be written.
func (s *AuthService) DeleteAccount(ctx context.Context, uid string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("uid = ?", uid).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.Permission{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&user).Error
	})
}
