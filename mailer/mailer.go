package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nssc-portal/config"
)

// ErrMissingAPIKey is a configuration error: no request is attempted without a key.
var ErrMissingAPIKey = errors.New("email API key is not configured (set EMAIL_API_KEY)")

// SendError is an upstream delivery failure. Message carries the provider's own
// error text when it returned one.
type SendError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send email via %s: %s", e.Provider, e.Message)
}

func (e *SendError) Unwrap() error { return e.Err }

// Mailer sends a single transactional HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type Sender struct {
	Name  string
	Email string
}

// New picks the provider named by cfg.EmailProvider; anything other than
// "sendgrid" uses Brevo.
func New(cfg *config.Config, log *zap.Logger) Mailer {
	sender := Sender{Name: cfg.EmailSenderName, Email: cfg.EmailSender}
	if cfg.EmailProvider == "sendgrid" {
		return NewSendGrid(cfg.EmailAPIKey, cfg.EmailAPIBaseURL, sender, log)
	}
	return NewBrevo(cfg.EmailAPIKey, cfg.EmailAPIBaseURL, sender, log)
}

const OTPSubject = "Your OTP for NSSC Registration"

// OTPEmail renders the verification email.
func OTPEmail(otp string, validity time.Duration) (subject, html string) {
	html = fmt.Sprintf(`
	<div style="font-family: Arial, sans-serif; text-align: center; background: #fff; padding: 20px; border-radius: 8px;">
		<h2 style="color: #007bff;">NSSC Verification</h2>
		<p>Your One-Time Password (OTP) is:</p>
		<h1 style="letter-spacing: 2px; color: #333;">%s</h1>
		<p>This OTP is valid for <strong>%d minutes</strong>. Do not share it with anyone.</p>
	</div>
	`, otp, int(validity.Minutes()))
	return OTPSubject, html
}
