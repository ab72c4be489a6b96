package domain

import "time"

// Idempotency records that a lead submission completed, keyed by
// (scope, client_id, key). A replay of the same key returns the recorded
// status without dispatching again. Only the key metadata is stored, never
// the submitted fields.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Scope     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_scope_client_key,priority:1"`
	ClientID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_scope_client_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_scope_client_key,priority:3"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
