package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// SendGridMailer sends through the SendGrid v3 mail API.
type SendGridMailer struct {
	apiKey string
	host   string
	sender Sender
	log    *zap.Logger
}

func NewSendGrid(apiKey, host string, sender Sender, log *zap.Logger) *SendGridMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &SendGridMailer{apiKey: apiKey, host: host, sender: sender, log: log}
}

func (m *SendGridMailer) Send(ctx context.Context, to, subject, html string) error {
	if m.apiKey == "" {
		return ErrMissingAPIKey
	}

	message := mail.NewV3MailInit(
		mail.NewEmail(m.sender.Name, m.sender.Email),
		subject,
		mail.NewEmail("", to),
		mail.NewContent("text/html", html),
	)
	req := sendgrid.GetRequest(m.apiKey, "/v3/mail/send", m.host)
	req.Method = rest.Post
	req.Body = mail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		m.log.Error("sendgrid request failed", zap.String("to", to), zap.Error(err))
		return &SendError{Provider: "sendgrid", Message: err.Error(), Err: err}
	}
	if resp.StatusCode >= 300 {
		msg := sendGridMessage(resp.Body)
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		m.log.Error("sendgrid rejected email", zap.String("to", to), zap.Int("status", resp.StatusCode), zap.String("message", msg))
		return &SendError{Provider: "sendgrid", StatusCode: resp.StatusCode, Message: msg}
	}

	m.log.Info("email sent", zap.String("provider", "sendgrid"), zap.String("to", to))
	return nil
}

func sendGridMessage(body string) string {
	var payload struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(payload.Errors))
	for _, e := range payload.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}
