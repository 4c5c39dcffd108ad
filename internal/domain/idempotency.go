package domain

import "time"

// Idempotency records the response produced for an Idempotency-Key so that a
// retried POST replays the stored body instead of repeating side effects
// (a second mint in particular). Rows are unique per (scope, key), where the
// scope is the caller identity plus the route.
type Idempotency struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Scope     string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_scope_key,priority:1"`
	Key       string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_scope_key,priority:2"`
	Status    int       `gorm:"not null"`
	Body      []byte    // bytea on postgres, blob on sqlite
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// ProvisionKey pins the completion synthesized for a deterministic
// (patient, exercise, time bucket) key. The unique key column makes two
// racing provisioning requests converge on one completion.
type ProvisionKey struct {
	Key                  string    `gorm:"type:varchar(64);primaryKey"`
	PatientID            string    `gorm:"type:char(36);not null;index"`
	ExerciseCompletionID string    `gorm:"type:char(36);not null"`
	CreatedAt            time.Time `gorm:"autoCreateTime"`
}

// TableName implements the GORM tabler interface.
func (ProvisionKey) TableName() string { return "provision_keys" }
