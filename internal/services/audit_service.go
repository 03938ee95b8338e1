package services

import (
	"encoding/json"
	"time"

	"monex/internal/logger"
	"monex/internal/models"
	"monex/internal/repository"
	"monex/internal/uuid"
)

// Audit actions.
const (
	AuditCreate = "create"
	AuditUpdate = "update"
	AuditDelete = "delete"
	AuditSignup = "signup"
	AuditLogin  = "login"
	AuditLogout = "logout"
)

// auditService handles audit log recording.
type auditService struct {
	repo *repository.PartitionRepository
	now  func() time.Time
}

// NewAuditService creates a new AuditServicer. Entries are always logged;
// when repo is non-nil they are also stored under the user's audit prefix.
func NewAuditService(repo *repository.PartitionRepository) AuditServicer {
	return &auditService{repo: repo, now: time.Now}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(userID, action, resourceType, resourceID string, changes map[string]any) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	logger.Get().Infow("audit",
		"user_id", userID,
		"action", action,
		"resource_type", resourceType,
		"resource_id", resourceID,
		"changes", changesJSON,
	)

	if s.repo == nil || userID == "" {
		return
	}
	s.repo.AppendAudit(models.AuditEntry{
		ID:           uuid.New(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Changes:      changesJSON,
		CreatedAt:    s.now(),
	})
}
