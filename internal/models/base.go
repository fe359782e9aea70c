package models

import (
	"time"

	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate stamps created_at in UTC. The value is never updated afterwards.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	} else {
		b.CreatedAt = b.CreatedAt.UTC()
	}
	return nil
}

// GetID returns the primary key.
func (b Base) GetID() uint { return b.ID }

// Owned holds the creator of a record. Both columns are nullable because
// records written before ownership tracking have no owner.
type Owned struct {
	Owner   *string `gorm:"size:150;index" json:"owner"`
	OwnerID *uint   `gorm:"index" json:"owner_id"`
}

// OwnerName returns the username that created the record, if known.
func (o Owned) OwnerName() *string { return o.Owner }

// SetOwner stamps the owner columns.
func (o *Owned) SetOwner(name *string, id *uint) {
	o.Owner = name
	o.OwnerID = id
}

// Record is implemented by every owner-gated entity kind.
type Record interface {
	GetID() uint
	OwnerName() *string
	SetOwner(name *string, id *uint)
}

// ProtectedColumns can never be changed by an update.
var ProtectedColumns = []string{"id", "owner", "owner_id", "created_at"}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC date at midnight.
func Today() time.Time {
	return DateOnly(time.Now())
}
