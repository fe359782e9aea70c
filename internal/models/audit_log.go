package models

// AuditKind classifies an audited action.
type AuditKind string

const (
	AuditInput    AuditKind = "input"
	AuditOutput   AuditKind = "output"
	AuditQuery    AuditKind = "consulta"
	AuditMutation AuditKind = "alteração"
)

// AuditLog is an append-only trace entry of who did what and when.
type AuditLog struct {
	Base
	Username    *string   `gorm:"size:150;index" json:"username"`
	Transaction string    `gorm:"column:transaction_name;size:50;not null;index" json:"transaction"`
	Kind        AuditKind `gorm:"size:20;not null;index" json:"kind"`
}
