package services

import (
	"testing"

	"monex/internal/config"
	"monex/internal/repository"
	"monex/internal/storage"
	"monex/internal/testutil"
)

type harness struct {
	store   storage.Storage
	queue   *repository.WriteQueue
	repo    *repository.PartitionRepository
	ledger  *Ledger
	finance FinanceServicer
	session SessionServicer
}

func newHarness(t *testing.T, store storage.Storage) *harness {
	t.Helper()
	return newHarnessWithMode(t, store, config.AuthModeEmail)
}

func newHarnessWithMode(t *testing.T, store storage.Storage, mode string) *harness {
	t.Helper()

	queue := repository.NewWriteQueue(store)
	t.Cleanup(queue.Close)
	repo := repository.NewPartitionRepository(store, queue)
	ledger := NewLedger(repo)
	audit := NewAuditService(repo)
	verifier := NewCredentialVerifier(mode)
	if pv, ok := verifier.(*passwordVerifier); ok {
		pv.cost = 4
	}

	return &harness{
		store:   store,
		queue:   queue,
		repo:    repo,
		ledger:  ledger,
		finance: NewFinanceService(ledger, audit),
		session: NewSessionService(ledger, verifier, audit),
	}
}

// signedIn returns a harness with a fresh user whose starting balance is
// the given amount.
func signedIn(t *testing.T, balance string) *harness {
	t.Helper()

	h := newHarness(t, testutil.NewTestStorage(t))
	_, err := h.session.Signup(SignupInput{
		FirstName:           "Asha",
		LastName:            "Rao",
		Email:               "Asha@Example.com",
		MonthlyStartBalance: testutil.Dec(balance),
		BalanceStartDate:    testutil.FixedTime,
	})
	testutil.AssertNoError(t, err)
	return h
}

func assertInvariants(t *testing.T, h *harness) {
	t.Helper()
	if err := h.finance.CheckInvariants(); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}
}
