// Package repository maps the financial state of one user onto storage keys
// and writes it through an ordered background queue.
package repository

// Storage key layout. Collections are namespaced by user id so that two
// accounts on the same device never see each other's data.
const (
	budgetsPrefix    = "budgets/"
	miscBudgetPrefix = "miscBudget/"
	assetsPrefix     = "assets/"
	auditPrefix      = "audit/"

	CurrentUserKey = "currentUser"
	SessionKey     = "session"
)

// BudgetsKey is the key of a user's named budgets.
func BudgetsKey(userID string) string { return budgetsPrefix + userID }

// MiscBudgetKey is the key of a user's miscellaneous budget.
func MiscBudgetKey(userID string) string { return miscBudgetPrefix + userID }

// AssetsKey is the key of a user's assets.
func AssetsKey(userID string) string { return assetsPrefix + userID }

// PartitionKeys lists every per-user key, in a stable order.
func PartitionKeys(userID string) []string {
	return []string{BudgetsKey(userID), MiscBudgetKey(userID), AssetsKey(userID)}
}

// AuditPrefix is the key prefix under which a user's audit entries live.
func AuditPrefix(userID string) string { return auditPrefix + userID + "/" }

// AuditKey is the key of one audit entry.
func AuditKey(userID, entryID string) string { return AuditPrefix(userID) + entryID }
