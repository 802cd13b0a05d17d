package audit

import "time"

// AuditLog records who did what to which entity. Append-only.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID    uint      `gorm:"not null;index" json:"actor_id"`
	ActorEmail string    `gorm:"type:varchar(255);not null" json:"actor_email"`
	Action     string    `gorm:"type:varchar(100);not null;index" json:"action"`
	EntityType string    `gorm:"type:varchar(50);not null;index" json:"entity_type"`
	EntityID   uint      `gorm:"index" json:"entity_id"`
	Detail     string    `gorm:"type:text" json:"detail"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
