package services

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"monex/internal/config"
	apperrors "monex/internal/errors"
	"monex/internal/models"
)

const minPasswordLength = 8

// NewCredentialVerifier returns the verifier for an AUTH_MODE value.
func NewCredentialVerifier(mode string) CredentialVerifier {
	if mode == config.AuthModePassword {
		return &passwordVerifier{cost: bcrypt.DefaultCost}
	}
	return emailVerifier{}
}

// emailVerifier only matches the email, case-insensitively. This is the
// compatibility mode for records created without a password; it proves
// nothing about who is at the keyboard.
type emailVerifier struct{}

func (emailVerifier) Enroll(*models.User, string) error { return nil }

func (emailVerifier) Verify(user models.User, input LoginInput) bool {
	return user.EmailMatches(input.Email)
}

// passwordVerifier additionally requires a bcrypt-hashed password.
type passwordVerifier struct {
	cost int
}

func (v *passwordVerifier) Enroll(user *models.User, password string) error {
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.PasswordHash = string(hash)
	return nil
}

func (v *passwordVerifier) Verify(user models.User, input LoginInput) bool {
	if !user.EmailMatches(input.Email) || user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) == nil
}
