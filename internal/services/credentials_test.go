package services

import (
	"testing"

	"monex/internal/config"
	"monex/internal/models"
)

func TestCredentialVerifier(t *testing.T) {
	user := models.User{Email: "Asha@Example.com"}

	t.Run("email_mode", func(t *testing.T) {
		v := NewCredentialVerifier(config.AuthModeEmail)
		if !v.Verify(user, LoginInput{Email: "asha@example.COM"}) {
			t.Error("expected case-insensitive match")
		}
		if v.Verify(user, LoginInput{Email: "asha@example.org"}) {
			t.Error("expected different email to fail")
		}
	})

	t.Run("password_mode", func(t *testing.T) {
		v := &passwordVerifier{cost: 4}
		u := user
		if err := v.Enroll(&u, "s3cret-pass"); err != nil {
			t.Fatalf("enroll failed: %v", err)
		}
		if u.PasswordHash == "" || u.PasswordHash == "s3cret-pass" {
			t.Fatal("expected a bcrypt hash to be stored")
		}
		if !v.Verify(u, LoginInput{Email: "asha@example.com", Password: "s3cret-pass"}) {
			t.Error("expected matching credentials to verify")
		}
		if v.Verify(u, LoginInput{Email: "asha@example.com", Password: "nope"}) {
			t.Error("expected wrong password to fail")
		}
		if v.Verify(user, LoginInput{Email: "asha@example.com", Password: "s3cret-pass"}) {
			t.Error("a user without a hash must never verify in password mode")
		}
	})

	t.Run("unknown_mode_falls_back_to_email", func(t *testing.T) {
		if _, ok := NewCredentialVerifier("sso").(emailVerifier); !ok {
			t.Error("expected email verifier fallback")
		}
	})
}
