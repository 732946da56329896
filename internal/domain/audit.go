package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry describes a lifecycle transition for an external audit sink.
// The engine only builds the entry; the caller persists it after the
// underlying write has succeeded, so audit durability never gates
// validation latency.
type AuditEntry struct {
	EventID    uuid.UUID      `json:"event_id"`
	AdminID    int64          `json:"admin_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   int64          `json:"entity_id"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
	Summary    string         `json:"summary"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewAuditEntry builds an audit entry with a fresh event id
func NewAuditEntry(adminID int64, action, entityType string, entityID int64) *AuditEntry {
	return &AuditEntry{
		EventID:    uuid.New(),
		AdminID:    adminID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
}
