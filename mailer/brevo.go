package mailer

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const brevoBaseURL = "https://api.brevo.com"

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type brevoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BrevoMailer sends through the Brevo transactional email API.
type BrevoMailer struct {
	client *resty.Client
	apiKey string
	sender Sender
	log    *zap.Logger
}

func NewBrevo(apiKey, baseURL string, sender Sender, log *zap.Logger) *BrevoMailer {
	if baseURL == "" {
		baseURL = brevoBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("accept", "application/json")
	return &BrevoMailer{client: client, apiKey: apiKey, sender: sender, log: log}
}

func (m *BrevoMailer) Send(ctx context.Context, to, subject, html string) error {
	if m.apiKey == "" {
		return ErrMissingAPIKey
	}

	var apiErr brevoError
	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("api-key", m.apiKey).
		SetBody(brevoRequest{
			Sender:      brevoContact{Name: m.sender.Name, Email: m.sender.Email},
			To:          []brevoContact{{Email: to}},
			Subject:     subject,
			HTMLContent: html,
		}).
		SetError(&apiErr).
		Post("/v3/smtp/email")
	if err != nil {
		m.log.Error("brevo request failed", zap.String("to", to), zap.Error(err))
		return &SendError{Provider: "brevo", Message: err.Error(), Err: err}
	}
	if resp.IsError() {
		msg := apiErr.Message
		if msg == "" {
			msg = resp.Status()
		}
		m.log.Error("brevo rejected email", zap.String("to", to), zap.Int("status", resp.StatusCode()), zap.String("message", msg))
		return &SendError{Provider: "brevo", StatusCode: resp.StatusCode(), Message: msg}
	}

	m.log.Info("email sent", zap.String("provider", "brevo"), zap.String("to", to))
	return nil
}
