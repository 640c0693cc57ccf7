package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	token, err := GenerateToken(secret, userID, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if parsed != userID {
		t.Errorf("parsed user id %v, want %v", parsed, userID)
	}
}

func TestParseTokenRejections(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken(secret, userID, time.Hour)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		if _, err := ParseToken("other-secret", token); err == nil {
			t.Error("expected an error for a token signed with another secret")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := GenerateToken(secret, userID, -time.Minute)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		if _, err := ParseToken(secret, token); err == nil {
			t.Error("expected an error for an expired token")
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := ParseToken(secret, "not.a.token"); err == nil {
			t.Error("expected an error for a malformed token")
		}
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("correct password should verify")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Error("wrong password should not verify")
	}
}
