package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"office-portal/logger"
	auditModel "office-portal/models/audit"
	"office-portal/types"

	"gorm.io/gorm"
)

// Service appends audit records through the async writer and serves the
// admin listing endpoint. Appends are best-effort and never block a handler.
type Service struct {
	DB     *gorm.DB
	Writer *logger.AsyncLogger
}

// NewService creates a new audit service
func NewService(db *gorm.DB, writer *logger.AsyncLogger) *Service {
	return &Service{DB: db, Writer: writer}
}

// Append records an action against an entity. detail is marshalled to JSON;
// marshal failures degrade to a plain string rather than losing the record.
func (s *Service) Append(actorID uint, actorEmail, action, entityType string, entityID uint, detail interface{}) {
	detailJSON := ""
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			detailJSON = string(b)
		} else {
			detailJSON = fmt.Sprintf("%v", detail)
		}
	}

	s.Writer.Log(types.AuditEntry{
		ActorID:    actorID,
		ActorEmail: actorEmail,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detailJSON,
		CreatedAt:  time.Now(),
	})
}

// ListFilter narrows the audit listing.
type ListFilter struct {
	EntityType string
	EntityID   *uint
	ActorID    *uint
	Limit      int
}

// List returns audit records newest first.
func (s *Service) List(filter ListFilter) ([]auditModel.AuditLog, error) {
	query := s.DB.Model(&auditModel.AuditLog{})
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var logs []auditModel.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	return logs, nil
}
