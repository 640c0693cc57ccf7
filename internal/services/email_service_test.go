package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestEmailServiceSend(t *testing.T) {
	log := zerolog.Nop()

	t.Run("posts the message to the provider", func(t *testing.T) {
		var got emailMessage
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer key-test" {
				t.Errorf("authorization header = %q", r.Header.Get("Authorization"))
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("bad request body: %v", err)
			}
		}))
		defer server.Close()

		svc := NewEmailService(server.URL, "key-test", "noreply@velora.test", log)
		if err := svc.Send("user@example.com", "Hello", "<p>hi</p>"); err != nil {
			t.Fatalf("Send returned error: %v", err)
		}

		if got.From != "noreply@velora.test" || got.To != "user@example.com" || got.Subject != "Hello" {
			t.Errorf("message = %+v", got)
		}
	})

	t.Run("missing api key is a logged no-op", func(t *testing.T) {
		svc := NewEmailService("http://unreachable.invalid", "", "noreply@velora.test", log)
		if err := svc.Send("user@example.com", "Hello", "<p>hi</p>"); err != nil {
			t.Errorf("unconfigured send should succeed, got %v", err)
		}
	})

	t.Run("provider failure surfaces as an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		svc := NewEmailService(server.URL, "key-test", "noreply@velora.test", log)
		if err := svc.Send("user@example.com", "Hello", "<p>hi</p>"); err == nil {
			t.Error("expected an error for a non-2xx response")
		}
	})
}

func TestEmailTemplates(t *testing.T) {
	log := zerolog.Nop()

	var got emailMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer server.Close()

	svc := NewEmailService(server.URL, "key-test", "noreply@velora.test", log)

	t.Run("purchase confirmation", func(t *testing.T) {
		lines := []PurchaseLine{{Name: "Argan Oil", Quantity: 2, Price: 15}}
		if err := svc.SendPurchaseConfirmation("user@example.com", "Dana", "#123", lines, 30); err != nil {
			t.Fatalf("SendPurchaseConfirmation: %v", err)
		}
		if got.Subject != "Order #123 confirmed" {
			t.Errorf("subject = %q", got.Subject)
		}
	})

	t.Run("booking reminder", func(t *testing.T) {
		when := time.Date(2026, 9, 3, 14, 30, 0, 0, time.UTC)
		if err := svc.SendBookingReminder("user@example.com", "Dana", "Haircut", when); err != nil {
			t.Fatalf("SendBookingReminder: %v", err)
		}
		if got.Subject != "Your upcoming appointment" {
			t.Errorf("subject = %q", got.Subject)
		}
	})

	t.Run("password reset", func(t *testing.T) {
		if err := svc.SendPasswordReset("user@example.com", "tok-abc"); err != nil {
			t.Fatalf("SendPasswordReset: %v", err)
		}
		if got.Subject != "Reset your password" {
			t.Errorf("subject = %q", got.Subject)
		}
	})
}

func TestPaymentServiceCreateIntent(t *testing.T) {
	log := zerolog.Nop()

	t.Run("sends minor units and returns the intent id", func(t *testing.T) {
		var got paymentIntentRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("bad request body: %v", err)
			}
			_, _ = w.Write([]byte(`{"id": "pi_123"}`))
		}))
		defer server.Close()

		svc := NewPaymentService(server.URL, "sk-test", log)
		id, err := svc.CreateIntent(49.99, "USD", "order #42")
		if err != nil {
			t.Fatalf("CreateIntent returned error: %v", err)
		}
		if id != "pi_123" {
			t.Errorf("intent id = %q", id)
		}
		if got.Amount != 4999 || got.Currency != "usd" {
			t.Errorf("request = %+v", got)
		}
	})

	t.Run("unconfigured provider returns the sentinel", func(t *testing.T) {
		svc := NewPaymentService("", "", log)
		_, err := svc.CreateIntent(10, "USD", "order")
		if !errors.Is(err, ErrPaymentNotConfigured) {
			t.Errorf("expected ErrPaymentNotConfigured, got %v", err)
		}
	})

	t.Run("empty intent id is rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		svc := NewPaymentService(server.URL, "sk-test", log)
		if _, err := svc.CreateIntent(10, "USD", "order"); err == nil {
			t.Error("expected an error for an empty intent id")
		}
	})
}
