package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
)

const sendgridMailSendURL = "https://api.sendgrid.com/v3/mail/send"

// SendgridMailer delivers notifications through the SendGrid v3 mail-send
// API. It is a best-effort collaborator: callers dispatch it off the request
// path and only log failures.
type SendgridMailer struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
	logger   Logger
}

// NewSendgridMailer returns a new SendgridMailer
func NewSendgridMailer(apiKey, from string) *SendgridMailer {
	return &SendgridMailer{
		apiKey:   apiKey,
		from:     from,
		endpoint: sendgridMailSendURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   defLogger{},
	}
}

func (m *SendgridMailer) WithLogger(logger Logger) *SendgridMailer {
	m.logger = logger
	return m
}

func (m *SendgridMailer) WithHTTPClient(client *http.Client) *SendgridMailer {
	m.client = client
	return m
}

// WithEndpoint overrides the mail-send URL, mostly for tests.
func (m *SendgridMailer) WithEndpoint(endpoint string) *SendgridMailer {
	m.endpoint = endpoint
	return m
}

// SendWelcomeEmail greets a freshly registered user.
func (m *SendgridMailer) SendWelcomeEmail(ctx context.Context, email, name string) error {
	return m.send(ctx, email,
		"Welcome to the app",
		fmt.Sprintf("Welcome to the app, %s!", name),
	)
}

// SendCancelationEmail says goodbye after account deletion.
func (m *SendgridMailer) SendCancelationEmail(ctx context.Context, email, name string) error {
	return m.send(ctx, email,
		"Sorry to see you go",
		fmt.Sprintf("Goodbye %s", name),
	)
}

type sendgridPayload struct {
	Personalizations []sendgridPersonalization `json:"personalizations"`
	From             sendgridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendgridContent         `json:"content"`
}

type sendgridPersonalization struct {
	To []sendgridAddress `json:"to"`
}

type sendgridAddress struct {
	Email string `json:"email"`
}

type sendgridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (m *SendgridMailer) send(ctx context.Context, to, subject, body string) error {
	payload := sendgridPayload{
		Personalizations: []sendgridPersonalization{
			{To: []sendgridAddress{{Email: to}}},
		},
		From:    sendgridAddress{Email: m.from},
		Subject: subject,
		Content: []sendgridContent{
			{Type: "text/plain", Value: body},
		},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode mail payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build mail request")
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "mail transport error")
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return errors.New("mail send rejected", errors.CategoryOperation).
			WithMetadata(map[string]any{
				"status": res.StatusCode,
			})
	}

	return nil
}

// NoopMailer drops every notification. Used when no mail API key is
// configured, and in tests.
type NoopMailer struct{}

func (NoopMailer) SendWelcomeEmail(ctx context.Context, email, name string) error     { return nil }
func (NoopMailer) SendCancelationEmail(ctx context.Context, email, name string) error { return nil }
