package services

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// EmailService delivers transactional mail through an HTTP mail provider.
// When no API key is configured every send becomes a logged no-op, so
// checkout and reminders keep working in development.
type EmailService struct {
	baseURL string
	apiKey  string
	sender  string
	client  *http.Client
	log     zerolog.Logger
}

// NewEmailService creates a new EmailService.
func NewEmailService(baseURL, apiKey, sender string, log zerolog.Logger) *EmailService {
	return &EmailService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		sender:  sender,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

type emailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send delivers one message.
func (s *EmailService) Send(to, subject, html string) error {
	if s.apiKey == "" {
		s.log.Info().Str("to", to).Str("subject", subject).Msg("email not configured, skipping send")
		return nil
	}

	payload, err := json.Marshal(emailMessage{
		From:    s.sender,
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().Err(err).Str("to", to).Msg("email send failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.log.Error().Int("status", resp.StatusCode).Str("to", to).Msg("email provider returned non-2xx")
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}

	return nil
}

// PurchaseLine is one item row in a confirmation email.
type PurchaseLine struct {
	Name     string
	Quantity int
	Price    float64
}

// SendPurchaseConfirmation emails an order summary after checkout.
func (s *EmailService) SendPurchaseConfirmation(to, name, number string, lines []PurchaseLine, total float64) error {
	var rows strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&rows, "<li>%s &times; %d — %.2f</li>", line.Name, line.Quantity, line.Price*float64(line.Quantity))
	}

	html := fmt.Sprintf(
		`<h2>Thanks for your order, %s!</h2>
<p>Order <b>%s</b> has been placed.</p>
<ul>%s</ul>
<p>Total: <b>%.2f</b></p>`,
		name, number, rows.String(), total,
	)

	return s.Send(to, fmt.Sprintf("Order %s confirmed", number), html)
}

// SendBookingReminder emails an upcoming-appointment reminder.
func (s *EmailService) SendBookingReminder(to, name, service string, scheduledAt time.Time) error {
	html := fmt.Sprintf(
		`<h2>Reminder</h2>
<p>Hi %s, your <b>%s</b> appointment is on %s.</p>`,
		name, service, scheduledAt.Format("Mon, 2 Jan 2006 at 15:04"),
	)

	return s.Send(to, "Your upcoming appointment", html)
}

// SendPasswordReset emails a reset link token.
func (s *EmailService) SendPasswordReset(to, token string) error {
	html := fmt.Sprintf(
		`<h2>Password reset</h2>
<p>Use this code to reset your password: <b>%s</b></p>
<p>It expires in 30 minutes. Ignore this email if you did not request it.</p>`,
		token,
	)

	return s.Send(to, "Reset your password", html)
}
