package repository

import (
	"encoding/json"
	"errors"
	"time"

	apperrors "monex/internal/errors"
	"monex/internal/logger"
	"monex/internal/models"
	"monex/internal/storage"
	"monex/internal/uuid"
)

// SessionMarker records which user was signed in when the process last ran.
type SessionMarker struct {
	UserID     string    `json:"user_id"`
	SignedInAt time.Time `json:"signed_in_at"`
}

// PartitionRepository loads a user's collections synchronously and saves
// them through the write queue. Every load waits for pending writes first,
// so reads observe the latest saves.
type PartitionRepository struct {
	store storage.Storage
	queue *WriteQueue
}

// NewPartitionRepository wires a repository to its storage and queue.
func NewPartitionRepository(store storage.Storage, queue *WriteQueue) *PartitionRepository {
	return &PartitionRepository{store: store, queue: queue}
}

// LoadBudgets returns the user's named budgets, or an empty list when the
// record is missing or unreadable.
func (r *PartitionRepository) LoadBudgets(userID string) []models.Budget {
	r.queue.Flush()

	budgets := []models.Budget{}
	if !r.load(BudgetsKey(userID), &budgets) {
		return []models.Budget{}
	}
	for i := range budgets {
		budgets[i].IsMiscellaneous = false
		if budgets[i].Expenses == nil {
			budgets[i].Expenses = []models.Expense{}
		}
	}
	return budgets
}

// LoadMiscBudget returns the user's miscellaneous budget, or a fresh default.
func (r *PartitionRepository) LoadMiscBudget(userID string) models.Budget {
	r.queue.Flush()

	var misc models.Budget
	if !r.load(MiscBudgetKey(userID), &misc) || misc.ID == "" {
		return models.NewMiscellaneousBudget(uuid.New())
	}
	misc.IsMiscellaneous = true
	if misc.Expenses == nil {
		misc.Expenses = []models.Expense{}
	}
	return misc
}

// LoadAssets returns the user's assets, or an empty portfolio.
func (r *PartitionRepository) LoadAssets(userID string) models.Portfolio {
	r.queue.Flush()

	assets := models.Portfolio{}
	if !r.load(AssetsKey(userID), &assets) {
		return models.Portfolio{}
	}
	return assets
}

// LoadUser returns the stored user record. A missing record is
// ErrUserNotFound; an unreadable one is ErrPersistence.
func (r *PartitionRepository) LoadUser() (*models.User, error) {
	r.queue.Flush()

	data, err := r.store.Load(CurrentUserKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var user models.User
	if err := decode(data, &user); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return &user, nil
}

// ActiveSession returns the session marker, if one is stored.
func (r *PartitionRepository) ActiveSession() (SessionMarker, bool) {
	r.queue.Flush()

	var marker SessionMarker
	if !r.load(SessionKey, &marker) || marker.UserID == "" {
		return SessionMarker{}, false
	}
	return marker, true
}

func (r *PartitionRepository) SaveBudgets(userID string, budgets []models.Budget) {
	r.save(BudgetsKey(userID), budgets)
}

func (r *PartitionRepository) SaveMiscBudget(userID string, misc models.Budget) {
	r.save(MiscBudgetKey(userID), misc)
}

func (r *PartitionRepository) SaveAssets(userID string, assets models.Portfolio) {
	r.save(AssetsKey(userID), assets)
}

func (r *PartitionRepository) SaveUser(user models.User) {
	r.save(CurrentUserKey, user)
}

// MarkSession records userID as the signed-in user.
func (r *PartitionRepository) MarkSession(userID string, at time.Time) {
	r.save(SessionKey, SessionMarker{UserID: userID, SignedInAt: at})
}

// ClearSession removes the session marker.
func (r *PartitionRepository) ClearSession() {
	r.queue.EnqueueDelete(SessionKey)
}

// AppendAudit queues an audit entry under its user's audit prefix.
func (r *PartitionRepository) AppendAudit(entry models.AuditEntry) {
	r.save(AuditKey(entry.UserID, entry.ID), entry)
}

// AuditEntries returns the user's stored audit entries, oldest first.
// Unreadable entries are skipped.
func (r *PartitionRepository) AuditEntries(userID string) ([]models.AuditEntry, error) {
	r.queue.Flush()

	keys, err := r.store.Keys(AuditPrefix(userID))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	// Entry ids are UUIDv7, so sorted keys are in creation order.

	entries := make([]models.AuditEntry, 0, len(keys))
	for _, key := range keys {
		var entry models.AuditEntry
		if r.load(key, &entry) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Flush waits for all pending writes.
func (r *PartitionRepository) Flush() {
	r.queue.Flush()
}

// Export returns the stored records of the user's partitions and the user
// record, keyed by storage key. Pending writes are flushed first.
func (r *PartitionRepository) Export(userID string) (map[string]json.RawMessage, error) {
	r.queue.Flush()

	out := make(map[string]json.RawMessage)
	for _, key := range append(PartitionKeys(userID), CurrentUserKey) {
		data, err := r.store.Load(key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		out[key] = json.RawMessage(data)
	}
	return out, nil
}

// load decodes key into v, reporting false when the default should be used.
func (r *PartitionRepository) load(key string, v any) bool {
	data, err := r.store.Load(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		logger.Get().Warnw("Failed to load record, using default", "key", key, "error", err)
		return false
	}
	if err := decode(data, v); err != nil {
		logger.Get().Warnw("Corrupt record, using default", "key", key, "error", err)
		return false
	}
	return true
}

// save encodes v now and hands the bytes to the queue, so later mutations of
// the caller's state cannot leak into this write.
func (r *PartitionRepository) save(key string, v any) {
	data, err := encode(v)
	if err != nil {
		logger.Get().Errorw("Failed to encode record", "key", key, "error", err)
		return
	}
	r.queue.Enqueue(key, data)
}
