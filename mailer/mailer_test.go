package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nssc-portal/config"
)

var nssc = Sender{Name: "NSSC", Email: "no-reply@nssc.com"}

func TestBrevo_Send(t *testing.T) {
	var got brevoRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/smtp/email", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<1@brevo>"}`))
	}))
	defer srv.Close()

	m := NewBrevo("key-123", srv.URL, nssc, nil)
	subject, html := OTPEmail("123456", 10*time.Minute)
	require.NoError(t, m.Send(context.Background(), "cand@example.com", subject, html))

	assert.Equal(t, "Your OTP for NSSC Registration", got.Subject)
	assert.Equal(t, "no-reply@nssc.com", got.Sender.Email)
	assert.Equal(t, "NSSC", got.Sender.Name)
	assert.Equal(t, "cand@example.com", got.To[0].Email)
	assert.Contains(t, got.HTMLContent, "123456")
	assert.Contains(t, got.HTMLContent, "10 minutes")
}

func TestBrevo_MissingKeyFailsBeforeNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	err := NewBrevo("", srv.URL, nssc, nil).Send(context.Background(), "cand@example.com", "s", "h")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	var sendErr *SendError
	assert.False(t, errors.As(err, &sendErr))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestBrevo_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","message":"Key not found"}`))
	}))
	defer srv.Close()

	err := NewBrevo("bad", srv.URL, nssc, nil).Send(context.Background(), "cand@example.com", "s", "h")
	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, http.StatusUnauthorized, sendErr.StatusCode)
	assert.Equal(t, "Key not found", sendErr.Message)
	assert.False(t, errors.Is(err, ErrMissingAPIKey))
}

func TestBrevo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewBrevo("key", url, nssc, nil).Send(context.Background(), "cand@example.com", "s", "h")
	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.NotNil(t, sendErr.Err)
}

func TestSendGrid_Send(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewSendGrid("sg-key", srv.URL, nssc, nil)
	require.NoError(t, m.Send(context.Background(), "cand@example.com", OTPSubject, "<b>1</b>"))
	assert.Equal(t, OTPSubject, body["subject"])
	assert.Equal(t, "no-reply@nssc.com", body["from"].(map[string]any)["email"])
}

func TestSendGrid_Errors(t *testing.T) {
	assert.ErrorIs(t, NewSendGrid("", "", nssc, nil).Send(context.Background(), "a@b.com", "s", "h"), ErrMissingAPIKey)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"message":"The from address does not match a verified Sender Identity."}]}`))
	}))
	defer srv.Close()

	err := NewSendGrid("sg-key", srv.URL, nssc, nil).Send(context.Background(), "a@b.com", "s", "h")
	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, http.StatusForbidden, sendErr.StatusCode)
	assert.Contains(t, sendErr.Message, "verified Sender Identity")
}

func TestNew_PicksProvider(t *testing.T) {
	_, ok := New(&config.Config{EmailProvider: "sendgrid"}, nil).(*SendGridMailer)
	assert.True(t, ok)
	_, ok = New(&config.Config{EmailProvider: "brevo"}, nil).(*BrevoMailer)
	assert.True(t, ok)
}
