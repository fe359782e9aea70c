package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stockdesk/internal/filter"
	"stockdesk/internal/models"
	"stockdesk/internal/session"
)

// UserServicer defines the contract for accounts and authentication.
type UserServicer interface {
	Authenticate(ctx context.Context, sess *session.Session, username, secret string) (bool, error)
	Register(ctx context.Context, username, secret, role, apiKey string) (*models.User, error)
	ChangePassword(ctx context.Context, username, current, next string) (bool, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	CreateUser(ctx context.Context, actor session.Identity, username, secret string, role session.Role) (*models.User, error)
	ListUsers(ctx context.Context, actor session.Identity, role *session.Role) ([]models.User, error)
	AdminResetPassword(ctx context.Context, actor session.Identity, username, next string) (bool, error)
	DeleteUser(ctx context.Context, actor session.Identity, username string) (bool, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Record(ctx context.Context, actor session.Identity, transaction string, kind models.AuditKind)
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// BlockedItemInput holds the fields of a new blocked item.
type BlockedItemInput struct {
	ItemCode          int64
	Quantity          int64
	Reason            string
	ResponsibleSector string
	Badge             *int64
	MovementDate      *time.Time
}

// BlockedItemUpdate holds the editable fields of a blocked item; nil fields are kept.
type BlockedItemUpdate struct {
	Quantity          *int64
	Reason            *string
	ResponsibleSector *string
	Badge             *int64
	MovementDate      *time.Time
}

// BlockedItemFilter holds optional filters for listing blocked items.
type BlockedItemFilter struct {
	Range          filter.Range
	ReasonContains string
	Limit          int
}

// BlockedItemServicer defines the contract for blocked items.
type BlockedItemServicer interface {
	Create(ctx context.Context, actor session.Identity, in BlockedItemInput) (*models.BlockedItem, error)
	Get(ctx context.Context, actor session.Identity, id uint) (*models.BlockedItem, error)
	Update(ctx context.Context, actor session.Identity, id uint, upd BlockedItemUpdate) (bool, error)
	Delete(ctx context.Context, actor session.Identity, id uint) (bool, error)
	ListByItem(ctx context.Context, actor session.Identity, itemCode int64) ([]models.BlockedItem, error)
	ListFiltered(ctx context.Context, actor session.Identity, f BlockedItemFilter) ([]models.BlockedItem, error)
	ListAll(ctx context.Context, actor session.Identity, limit int) ([]models.BlockedItem, error)
}

// MonitoringInput holds the fields of a new monitoring record.
type MonitoringInput struct {
	Wave        string
	Load        string
	Container   string
	Responsible string
	Sector      string
	Note        *string
}

// MonitoringUpdate holds the editable fields of a monitoring record.
type MonitoringUpdate struct {
	Responsible *string
	Sector      *string
	Note        *string
}

// MonitoringServicer defines the contract for monitoring records.
type MonitoringServicer interface {
	Create(ctx context.Context, actor session.Identity, in MonitoringInput) (*models.MonitoringRecord, error)
	Get(ctx context.Context, actor session.Identity, id uint) (*models.MonitoringRecord, error)
	Update(ctx context.Context, actor session.Identity, id uint, upd MonitoringUpdate) (bool, error)
	Delete(ctx context.Context, actor session.Identity, id uint) (bool, error)
	ListByField(ctx context.Context, actor session.Identity, field, value string) ([]models.MonitoringRecord, error)
	ListByDateRange(ctx context.Context, actor session.Identity, r filter.Range, limit int) ([]models.MonitoringRecord, error)
	ListAll(ctx context.Context, actor session.Identity, limit int) ([]models.MonitoringRecord, error)
	ListResponsibles(ctx context.Context, prefix string, limit int) ([]string, error)
}

// SupplyInput holds the fields of a new supply withdrawal.
type SupplyInput struct {
	Sector      string
	Shift       string
	Badge       int64
	Responsible string
	Supply      string
	Quantity    int64
	Note        *string
}

// SupplyUpdate holds the editable fields of a supply withdrawal.
type SupplyUpdate struct {
	Sector      *string
	Shift       *string
	Badge       *int64
	Responsible *string
	Supply      *string
	Quantity    *int64
	Note        *string
}

// SupplyServicer defines the contract for supply-room withdrawals.
type SupplyServicer interface {
	Create(ctx context.Context, actor session.Identity, in SupplyInput) (*models.SupplyWithdrawal, error)
	Get(ctx context.Context, actor session.Identity, id uint) (*models.SupplyWithdrawal, error)
	Update(ctx context.Context, actor session.Identity, id uint, upd SupplyUpdate) (bool, error)
	Delete(ctx context.Context, actor session.Identity, id uint) (bool, error)
	List(ctx context.Context, actor session.Identity, shift string, r filter.Range, limit int) ([]models.SupplyWithdrawal, error)
	ListAll(ctx context.Context, actor session.Identity, limit int) ([]models.SupplyWithdrawal, error)
}

// PPEItemInput is one requested line of a PPE issue.
type PPEItemInput struct {
	Code        string
	Description string
	Quantity    int64
	Unit        string
	UnitPrice   decimal.NullDecimal
	LineTotal   decimal.NullDecimal
}

// PPEIssueInput holds the header and lines of a new PPE issue.
type PPEIssueInput struct {
	Badge         int64
	Sector        string
	Shift         string
	FirstIssue    bool
	ReferenceDate time.Time
	ApproverBadge int64
	Note          *string
	Items         []PPEItemInput
}

// PPEIssueUpdate holds the editable header fields of a PPE issue.
type PPEIssueUpdate struct {
	Sector        *string
	Shift         *string
	FirstIssue    *bool
	ReferenceDate *time.Time
	ApproverBadge *int64
	Note          *string
}

// PPEServicer defines the contract for PPE issues.
type PPEServicer interface {
	Create(ctx context.Context, actor session.Identity, in PPEIssueInput) (*models.PPEIssue, error)
	Get(ctx context.Context, actor session.Identity, id uint) (*models.PPEIssue, error)
	Update(ctx context.Context, actor session.Identity, id uint, upd PPEIssueUpdate) (bool, error)
	Delete(ctx context.Context, actor session.Identity, id uint) (bool, error)
	ListByPeriod(ctx context.Context, actor session.Identity, r filter.Range) ([]models.PPEIssueSummary, error)
	ListByBadge(ctx context.Context, actor session.Identity, badge int64, r filter.Range) ([]models.PPEIssueSummary, error)
	ListItems(ctx context.Context, actor session.Identity, issueID uint) ([]models.PPEItem, error)
	ListAll(ctx context.Context, actor session.Identity, limit int) ([]models.PPEIssue, error)
}

// CutPasswordItemInput is one item cut from an order.
type CutPasswordItemInput struct {
	ItemCode int64
	Quantity int64
}

// CutPasswordInput holds the header and items of a new cut-password order.
type CutPasswordInput struct {
	OrderNumber int64
	LoadNumber  int64
	Value       decimal.Decimal
	OrderDate   time.Time
	Status      models.CutPasswordStatus
	ClosingDate *time.Time
	Note        *string
	Items       []CutPasswordItemInput
}

// CutPasswordUpdate holds the editable header fields of an order.
type CutPasswordUpdate struct {
	LoadNumber *int64
	Value      *decimal.Decimal
	OrderDate  *time.Time
	Note       *string
}

// CutPasswordServicer defines the contract for cut-password orders.
type CutPasswordServicer interface {
	Create(ctx context.Context, actor session.Identity, in CutPasswordInput) (*models.CutPasswordOrder, error)
	Get(ctx context.Context, actor session.Identity, id uint) (*models.CutPasswordOrder, error)
	GetByOrderNumber(ctx context.Context, actor session.Identity, orderNumber int64) (*models.CutPasswordOrder, error)
	Update(ctx context.Context, actor session.Identity, id uint, upd CutPasswordUpdate) (bool, error)
	UpdateStatus(ctx context.Context, actor session.Identity, id uint, status models.CutPasswordStatus, note *string) (bool, error)
	Delete(ctx context.Context, actor session.Identity, id uint) (bool, error)
	ListInProgress(ctx context.Context, actor session.Identity) ([]models.CutPasswordOrder, error)
	ListByDateRange(ctx context.Context, actor session.Identity, r filter.Range, limit int) ([]models.CutPasswordOrder, error)
	ListItems(ctx context.Context, actor session.Identity, orderID uint) ([]models.CutPasswordItem, error)
	ListAll(ctx context.Context, actor session.Identity, limit int) ([]models.CutPasswordOrder, error)
}

// ConsolidatedInput is one branch row of a consolidated snapshot.
type ConsolidatedInput struct {
	Warehouse            *int64
	BranchDescription    *string
	StockValue           decimal.NullDecimal
	MixItems             *int64
	ItemsWithStock       *int64
	ItemsWithoutStock    *int64
	BlockedTotal         decimal.NullDecimal
	BlockedInStock       decimal.NullDecimal
	BlockedInNegotiation decimal.NullDecimal
	BlockedBalance       decimal.NullDecimal
	PctItemsWithStock    decimal.NullDecimal
}

// ConsolidatedServicer defines the contract for consolidated snapshots.
type ConsolidatedServicer interface {
	Insert(ctx context.Context, actor session.Identity, date time.Time, lines []ConsolidatedInput) (int, error)
	ReplaceForDate(ctx context.Context, actor session.Identity, date time.Time, lines []ConsolidatedInput) (int, error)
	ExistsForDate(ctx context.Context, date time.Time) (bool, error)
	ListByPeriod(ctx context.Context, actor session.Identity, r filter.Range) ([]models.ConsolidatedLine, error)
	Update(ctx context.Context, actor session.Identity, id uint, in ConsolidatedInput) (bool, error)
	Delete(ctx context.Context, actor session.Identity, id uint) (bool, error)
}

// CatalogInput is one catalog row.
type CatalogInput struct {
	Code        string
	Description string
	Price       decimal.NullDecimal
}

// CatalogServicer defines the contract for the product catalog.
type CatalogServicer interface {
	List(ctx context.Context, actor session.Identity) ([]models.CatalogEntry, error)
	Lookup(ctx context.Context, code string) (*models.CatalogEntry, error)
	Upsert(ctx context.Context, actor session.Identity, in CatalogInput) (*models.CatalogEntry, error)
	Delete(ctx context.Context, actor session.Identity, code string) (bool, error)
	Replace(ctx context.Context, actor session.Identity, entries []CatalogInput) (int, error)
}
