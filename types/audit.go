package types

import "time"

// AuditEntry is the in-flight form of an audit record before it is
// persisted by the async audit writer.
type AuditEntry struct {
	ActorID    uint
	ActorEmail string
	Action     string
	EntityType string
	EntityID   uint
	Detail     string
	CreatedAt  time.Time
}
