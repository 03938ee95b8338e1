package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "monex/internal/errors"
	"monex/internal/logger"
	"monex/internal/models"
	"monex/internal/repository"
	"monex/internal/uuid"
)

// partition selects which stored records a settle step writes.
type partition uint8

const (
	partBudgets partition = 1 << iota
	partMisc
	partAssets
	partUser

	partAll = partBudgets | partMisc | partAssets | partUser
)

// Session identifies the signed-in user. It is a value: holding one does not
// keep the user signed in.
type Session struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	SignedInAt time.Time `json:"signed_in_at"`
}

// Ledger is the in-memory financial state of the active user. The finance
// and session services share one Ledger and serialize on its lock.
type Ledger struct {
	mu   sync.Mutex
	repo *repository.PartitionRepository
	now  func() time.Time

	session *Session
	user    *models.User
	budgets []models.Budget
	misc    models.Budget
	assets  models.Portfolio
}

// NewLedger returns a signed-out ledger backed by repo.
func NewLedger(repo *repository.PartitionRepository) *Ledger {
	l := &Ledger{repo: repo, now: time.Now}
	l.reset()
	return l
}

// reset clears the collections back to empty and a fresh misc budget.
func (l *Ledger) reset() {
	l.session = nil
	l.user = nil
	l.budgets = []models.Budget{}
	l.misc = models.NewMiscellaneousBudget(uuid.New())
	l.assets = models.Portfolio{}
}

func (l *Ledger) requireUser() error {
	if l.user == nil {
		return apperrors.ErrNotSignedIn
	}
	return nil
}

func (l *Ledger) userID() string {
	if l.user == nil {
		return ""
	}
	return l.user.ID
}

func (l *Ledger) totalSpent() decimal.Decimal {
	total := l.misc.TotalSpent()
	for _, b := range l.budgets {
		total = total.Add(b.TotalSpent())
	}
	return total
}

// findBudget resolves budgetID to the misc budget or a named budget.
func (l *Ledger) findBudget(budgetID string) (*models.Budget, partition, error) {
	if budgetID == l.misc.ID {
		return &l.misc, partMisc, nil
	}
	for i := range l.budgets {
		if l.budgets[i].ID == budgetID {
			return &l.budgets[i], partBudgets, nil
		}
	}
	return nil, 0, apperrors.ErrBudgetNotFound
}

func (l *Ledger) assetIndex(assetID string) int {
	for i := range l.assets {
		if l.assets[i].ID == assetID {
			return i
		}
	}
	return -1
}

// recalculate applies the balance identity to the active user.
func (l *Ledger) recalculate() {
	if l.user != nil {
		l.user.ApplySpend(l.totalSpent())
	}
}

// settle is the post-mutation step: recompute the balance, queue writes for
// the touched records, then verify the invariants.
func (l *Ledger) settle(parts partition) {
	if l.user == nil {
		return
	}
	before := l.user.CurrentBalance
	l.recalculate()
	if !before.Equal(l.user.CurrentBalance) {
		parts |= partUser
	}
	l.persist(parts)

	if err := l.checkInvariants(); err != nil {
		logger.Get().Errorw("Invariant violated after mutation", "user_id", l.user.ID, "error", err)
	}
}

func (l *Ledger) persist(parts partition) {
	id := l.user.ID
	if parts&partBudgets != 0 {
		l.repo.SaveBudgets(id, l.budgets)
	}
	if parts&partMisc != 0 {
		l.repo.SaveMiscBudget(id, l.misc)
	}
	if parts&partAssets != 0 {
		l.repo.SaveAssets(id, l.assets)
	}
	if parts&partUser != 0 {
		l.repo.SaveUser(*l.user)
	}
}

// load replaces the collections with the stored partitions of user.
func (l *Ledger) load(user *models.User, at time.Time) {
	l.user = user
	l.budgets = l.repo.LoadBudgets(user.ID)
	l.misc = l.repo.LoadMiscBudget(user.ID)
	l.assets = l.repo.LoadAssets(user.ID)
	l.session = &Session{
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name(),
		SignedInAt: at,
	}
}

// checkInvariants returns every violated invariant joined into one error.
func (l *Ledger) checkInvariants() error {
	var errs []error

	if l.user != nil {
		want := l.user.MonthlyStartBalance.Sub(l.totalSpent())
		if !l.user.CurrentBalance.Equal(want) {
			errs = append(errs, fmt.Errorf("current balance %s != start balance %s - spent %s",
				l.user.CurrentBalance, l.user.MonthlyStartBalance, l.totalSpent()))
		}
	}

	if !l.misc.IsMiscellaneous {
		errs = append(errs, errors.New("miscellaneous budget is not flagged"))
	}
	seen := map[string]bool{l.misc.ID: true}
	for _, b := range l.budgets {
		if b.IsMiscellaneous {
			errs = append(errs, fmt.Errorf("budget %s is a second miscellaneous budget", b.ID))
		}
		if seen[b.ID] {
			errs = append(errs, fmt.Errorf("duplicate budget id %s", b.ID))
		}
		seen[b.ID] = true
	}

	for _, a := range l.assets {
		if a.Category != a.Type.Category() {
			errs = append(errs, fmt.Errorf("asset %s: type %s is not in category %s", a.ID, a.Type, a.Category))
		}
		if loan := a.Loan(); loan != nil {
			if !a.Amount.Equal(loan.RemainingAmount) {
				errs = append(errs, fmt.Errorf("loan %s: amount %s != remaining %s", a.ID, a.Amount, loan.RemainingAmount))
			}
			if loan.RemainingAmount.IsNegative() {
				errs = append(errs, fmt.Errorf("loan %s: negative remaining amount", a.ID))
			}
		}
	}

	return errors.Join(errs...)
}
