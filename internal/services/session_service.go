package services

import (
	"errors"
	"net/mail"
	"strings"

	apperrors "monex/internal/errors"
	"monex/internal/logger"
	"monex/internal/models"
	"monex/internal/uuid"
)

// sessionService moves the ledger between SignedOut and SignedIn(user).
type sessionService struct {
	ledger   *Ledger
	verifier CredentialVerifier
	audit    AuditServicer
}

// NewSessionService creates a new SessionServicer.
func NewSessionService(ledger *Ledger, verifier CredentialVerifier, audit AuditServicer) SessionServicer {
	return &sessionService{ledger: ledger, verifier: verifier, audit: audit}
}

// Signup creates the local user record with empty partitions and signs it
// in. The device holds a single user record, so signing up replaces it.
func (s *sessionService) Signup(input SignupInput) (*Session, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	email := strings.TrimSpace(input.Email)
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "first name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a valid email is required")
	}

	now := l.now()
	start := input.BalanceStartDate
	if start.IsZero() {
		start = now
	}
	user := &models.User{
		ID:        uuid.New(),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     email,
	}
	user.SetStartingBalance(input.MonthlyStartBalance, start)
	if err := s.verifier.Enroll(user, input.Password); err != nil {
		return nil, err
	}

	if l.user != nil {
		s.signOutLocked()
	}

	l.user = user
	l.budgets = []models.Budget{}
	l.misc = models.NewMiscellaneousBudget(uuid.New())
	l.assets = models.Portfolio{}
	l.session = &Session{UserID: user.ID, Email: user.Email, Name: user.Name(), SignedInAt: now}
	l.settle(partAll)
	l.repo.MarkSession(user.ID, now)

	s.audit.Log(user.ID, AuditSignup, "user", user.ID, map[string]any{"email": user.Email})
	logger.Get().Infow("User signed up", "user_id", user.ID)

	sess := *l.session
	return &sess, nil
}

// Login checks the presented credentials against the stored user record and
// loads that user's partitions.
func (s *sessionService) Login(input LoginInput) (*Session, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, err := l.repo.LoadUser()
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.verifier.Verify(*stored, input) {
		logger.Get().Warnw("Login rejected", "user_id", stored.ID)
		return nil, apperrors.ErrInvalidCredentials
	}

	if l.user != nil {
		if l.user.ID == stored.ID {
			sess := *l.session
			return &sess, nil
		}
		s.signOutLocked()
	}

	now := l.now()
	l.load(stored, now)
	l.settle(0)
	l.repo.MarkSession(stored.ID, now)

	s.audit.Log(stored.ID, AuditLogin, "user", stored.ID, nil)
	logger.Get().Infow("User logged in", "user_id", stored.ID)

	sess := *l.session
	return &sess, nil
}

// Logout persists the active partitions, waits for them to reach storage
// and clears the in-memory state.
func (s *sessionService) Logout() error {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.user == nil {
		return apperrors.ErrNotSignedIn
	}
	userID := l.user.ID
	s.signOutLocked()

	s.audit.Log(userID, AuditLogout, "user", userID, nil)
	logger.Get().Infow("User logged out", "user_id", userID)
	return nil
}

// Restore signs the stored user back in at process start when the session
// marker names them. Otherwise the ledger stays signed out and
// ErrNotSignedIn is returned.
func (s *sessionService) Restore() (*Session, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.session != nil {
		sess := *l.session
		return &sess, nil
	}

	marker, ok := l.repo.ActiveSession()
	if !ok {
		return nil, apperrors.ErrNotSignedIn
	}
	stored, err := l.repo.LoadUser()
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrNotSignedIn
		}
		return nil, err
	}
	if stored.ID != marker.UserID {
		logger.Get().Warnw("Session marker does not match stored user", "marker", marker.UserID, "user_id", stored.ID)
		return nil, apperrors.ErrNotSignedIn
	}

	l.load(stored, marker.SignedInAt)
	l.settle(0)

	logger.Get().Infow("Session restored", "user_id", stored.ID)
	sess := *l.session
	return &sess, nil
}

// Current returns the active session, if any.
func (s *sessionService) Current() (*Session, bool) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.session == nil {
		return nil, false
	}
	sess := *l.session
	return &sess, true
}

// signOutLocked saves everything for the active user, clears the session
// marker, drains the write queue and resets the ledger.
func (s *sessionService) signOutLocked() {
	l := s.ledger
	l.recalculate()
	l.persist(partAll)
	l.repo.ClearSession()
	l.repo.Flush()
	l.reset()
}
