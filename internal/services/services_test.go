package services

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stockdesk/internal/models"
	"stockdesk/internal/repository"
	"stockdesk/internal/testutil"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

// setup returns a migrated database, its store and an audit service.
func setup(t *testing.T) (*gorm.DB, *repository.Store, AuditServicer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	store := repository.NewStore(db)
	return db, store, NewAuditService(store)
}

// auditKinds returns the kinds recorded for transaction, oldest first.
func auditKinds(t *testing.T, db *gorm.DB, transaction string) []models.AuditKind {
	t.Helper()
	var kinds []models.AuditKind
	if err := db.Model(&models.AuditLog{}).Where(&models.AuditLog{Transaction: transaction}).
		Order("id ASC").Pluck("kind", &kinds).Error; err != nil {
		t.Fatalf("failed to read audit log: %v", err)
	}
	return kinds
}

func ptr[T any](v T) *T { return &v }
