package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"stockdesk/internal/models"
	"stockdesk/internal/session"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain secret of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a USER account with a unique username.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, fmt.Sprintf("user%d", nextID()), session.RoleUser)
}

// CreateTestAdmin creates an ADMINISTRATOR account with a unique username.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, fmt.Sprintf("admin%d", nextID()), session.RoleAdministrator)
}

// CreateTestUserWithRole creates a user with the given username and role.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, username string, role session.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Password: string(hash),
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// Identity returns the session identity for a fixture user.
func Identity(u *models.User) session.Identity {
	return u.Identity()
}

func ownerOf(u *models.User) models.Owned {
	if u == nil {
		return models.Owned{}
	}
	name := u.Username
	id := u.ID
	return models.Owned{Owner: &name, OwnerID: &id}
}

// CreateTestBlockedItem creates a blocked item owned by u (nil for an ownerless legacy row).
func CreateTestBlockedItem(t *testing.T, db *gorm.DB, u *models.User) *models.BlockedItem {
	t.Helper()

	item := &models.BlockedItem{
		Owned:             ownerOf(u),
		ItemCode:          1000 + nextID(),
		Quantity:          5,
		Reason:            "Avaria na embalagem",
		ResponsibleSector: "Qualidade",
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test blocked item: %v", err)
	}
	return item
}

// CreateTestBlockedItemAt creates a blocked item with an explicit created_at.
func CreateTestBlockedItemAt(t *testing.T, db *gorm.DB, u *models.User, createdAt time.Time) *models.BlockedItem {
	t.Helper()

	item := &models.BlockedItem{
		Base:              models.Base{CreatedAt: createdAt},
		Owned:             ownerOf(u),
		ItemCode:          1000 + nextID(),
		Quantity:          1,
		Reason:            "Contagem divergente",
		ResponsibleSector: "Controle de Estoque",
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test blocked item: %v", err)
	}
	return item
}

// CreateTestMonitoring creates a monitoring record owned by u.
func CreateTestMonitoring(t *testing.T, db *gorm.DB, u *models.User) *models.MonitoringRecord {
	t.Helper()

	n := nextID()
	rec := &models.MonitoringRecord{
		Owned:       ownerOf(u),
		Wave:        fmt.Sprintf("W%d", n),
		Load:        fmt.Sprintf("L%d", n),
		Container:   fmt.Sprintf("C%d", n),
		Responsible: "JOAO",
		Sector:      "Expedição",
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("failed to create test monitoring record: %v", err)
	}
	return rec
}

// CreateTestSupplyWithdrawal creates a supply withdrawal owned by u.
func CreateTestSupplyWithdrawal(t *testing.T, db *gorm.DB, u *models.User) *models.SupplyWithdrawal {
	t.Helper()

	rec := &models.SupplyWithdrawal{
		Owned:       ownerOf(u),
		Sector:      "RECEBIMENTO",
		Shift:       models.ShiftFirst,
		Badge:       nextID(),
		Responsible: "MARIA",
		Supply:      "Fita adesiva",
		Quantity:    2,
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("failed to create test supply withdrawal: %v", err)
	}
	return rec
}

// CreateTestPPEIssue creates a PPE issue with two lines owned by u.
func CreateTestPPEIssue(t *testing.T, db *gorm.DB, u *models.User, refDate time.Time) *models.PPEIssue {
	t.Helper()

	issue := &models.PPEIssue{
		Owned:         ownerOf(u),
		Badge:         nextID(),
		Sector:        "PRODUÇÃO",
		Shift:         models.ShiftSecond,
		ReferenceDate: models.DateOnly(refDate),
		ApproverBadge: 42,
		Items: []models.PPEItem{
			{Code: "EPI-1", Description: "Luva", Quantity: 2, UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("3.50"))},
			{Code: "EPI-2", Description: "Óculos", Quantity: 1},
		},
	}
	if err := db.Create(issue).Error; err != nil {
		t.Fatalf("failed to create test ppe issue: %v", err)
	}
	return issue
}

// CreateTestCutPasswordOrder creates an in-progress order with one item owned by u.
func CreateTestCutPasswordOrder(t *testing.T, db *gorm.DB, u *models.User) *models.CutPasswordOrder {
	t.Helper()

	order := &models.CutPasswordOrder{
		Owned:       ownerOf(u),
		OrderNumber: 10000 + nextID(),
		LoadNumber:  1000 + nextID(),
		Value:       decimal.RequireFromString("150.00"),
		OrderDate:   models.Today(),
		Status:      models.CutPasswordInProgress,
		Items: []models.CutPasswordItem{
			{ItemCode: 77, Quantity: 3, Status: models.CutPasswordInProgress},
		},
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("failed to create test cut password order: %v", err)
	}
	return order
}

// CreateTestCatalogEntry creates a catalog entry with a price.
func CreateTestCatalogEntry(t *testing.T, db *gorm.DB, u *models.User, code, description, price string) *models.CatalogEntry {
	t.Helper()

	entry := &models.CatalogEntry{
		Owned:       ownerOf(u),
		Code:        code,
		Description: description,
	}
	if price != "" {
		entry.Price = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test catalog entry: %v", err)
	}
	return entry
}
