package logger

import (
	"log"

	auditModel "office-portal/models/audit"
	"office-portal/types"

	"gorm.io/gorm"
)

// AsyncLogger drains audit entries from a buffered channel into the
// audit_logs table so handlers never wait on the audit write.
type AsyncLogger struct {
	db      *gorm.DB
	channel chan types.AuditEntry
}

func NewAsyncLogger(db *gorm.DB) *AsyncLogger {
	return &AsyncLogger{
		db:      db,
		channel: make(chan types.AuditEntry, 100), // Buffered channel to hold audit entries
	}
}

func (logger *AsyncLogger) ProcessLog() {
	log.Println("Starting asynchronous audit writer...")

	for entry := range logger.channel {
		dbLog := auditModel.AuditLog{
			ActorID:    entry.ActorID,
			ActorEmail: entry.ActorEmail,
			Action:     entry.Action,
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID,
			Detail:     entry.Detail,
			CreatedAt:  entry.CreatedAt,
		}

		if err := logger.db.Create(&dbLog).Error; err != nil {
			log.Printf("Failed to insert audit entry: %v", err)
		}
	}
}

// Log pushes an audit entry into the channel. Drops the entry instead of
// blocking when the buffer is full; the audit trail is best-effort.
func (logger *AsyncLogger) Log(entry types.AuditEntry) {
	select {
	case logger.channel <- entry:
	default:
		log.Printf("Audit buffer full, dropping entry: %s %s", entry.Action, entry.EntityType)
	}
}
