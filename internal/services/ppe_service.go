package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "stockdesk/internal/errors"
	"stockdesk/internal/filter"
	"stockdesk/internal/logger"
	"stockdesk/internal/models"
	"stockdesk/internal/repository"
	"stockdesk/internal/session"
)

// ppeService handles PPE issues and their lines.
type ppeService struct {
	repo    *repository.Repository[models.PPEIssue, *models.PPEIssue]
	catalog CatalogServicer
	audit   AuditServicer
}

// NewPPEService creates a new PPEServicer. catalog may be nil, in which case
// lines are stored exactly as given.
func NewPPEService(store *repository.Store, catalog CatalogServicer, audit AuditServicer) PPEServicer {
	return &ppeService{
		repo:    repository.New[models.PPEIssue](store),
		catalog: catalog,
		audit:   audit,
	}
}

// normalizeUnit keeps the known units and drops anything else.
func normalizeUnit(u string) *string {
	switch v := upper(u); v {
	case models.UnitPairs, models.UnitUnits:
		return &v
	}
	return nil
}

// buildItems turns requested lines into items. Lines without a code or a
// positive quantity are skipped. Missing descriptions and prices come from
// the catalog, and a missing total is quantity times unit price.
func (s *ppeService) buildItems(ctx context.Context, in []PPEItemInput) []models.PPEItem {
	items := make([]models.PPEItem, 0, len(in))
	for _, line := range in {
		code := strings.TrimSpace(line.Code)
		if code == "" || line.Quantity <= 0 {
			continue
		}
		item := models.PPEItem{
			Code:        code,
			Description: strings.TrimSpace(line.Description),
			Quantity:    line.Quantity,
			Unit:        normalizeUnit(line.Unit),
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		}

		if s.catalog != nil && (item.Description == "" || !item.UnitPrice.Valid) {
			entry, err := s.catalog.Lookup(ctx, code)
			switch {
			case err == nil:
				if item.Description == "" {
					item.Description = entry.Description
				}
				if !item.UnitPrice.Valid {
					item.UnitPrice = entry.Price
				}
			case !errors.Is(err, apperrors.ErrNotFound):
				logger.Get().Warnw("catalog lookup failed", "code", code, "error", err)
			}
		}
		if item.Description == "" {
			continue
		}
		if !item.LineTotal.Valid && item.UnitPrice.Valid {
			total := item.UnitPrice.Decimal.Mul(decimal.NewFromInt(item.Quantity)).Round(2)
			item.LineTotal = decimal.NewNullDecimal(total)
		}
		items = append(items, item)
	}
	return items
}

// Create stores a PPE issue with its lines in one transaction.
func (s *ppeService) Create(ctx context.Context, actor session.Identity, in PPEIssueInput) (*models.PPEIssue, error) {
	issue := &models.PPEIssue{
		Badge:         in.Badge,
		Sector:        upper(in.Sector),
		Shift:         strings.TrimSpace(in.Shift),
		FirstIssue:    in.FirstIssue,
		ApproverBadge: in.ApproverBadge,
		Note:          optionalUpper(in.Note),
	}

	switch {
	case issue.Badge <= 0:
		return nil, invalid("badge must be greater than zero")
	case issue.ApproverBadge <= 0:
		return nil, invalid("approver badge must be greater than zero")
	case issue.Sector == "":
		return nil, invalid("sector is required")
	case !models.ValidShift(issue.Shift):
		return nil, invalid("shift must be one of 1° Turno or 2° Turno")
	case in.ReferenceDate.IsZero():
		return nil, invalid("reference date is required")
	}
	issue.ReferenceDate = models.DateOnly(in.ReferenceDate)

	issue.Items = s.buildItems(ctx, in.Items)
	if len(issue.Items) == 0 {
		return nil, invalid("at least one item with code, description and quantity is required")
	}

	if err := s.repo.Insert(ctx, actor, issue); err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxPPE, models.AuditInput)
	return issue, nil
}

// Get returns an issue with its lines.
func (s *ppeService) Get(ctx context.Context, actor session.Identity, id uint) (*models.PPEIssue, error) {
	var issue models.PPEIssue
	err := s.repo.Store().DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&issue, id).Error
	if err != nil {
		return nil, repository.StorageError(err)
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return &issue, nil
}

// Update edits the header of an issue. Lines are immutable once issued.
func (s *ppeService) Update(ctx context.Context, actor session.Identity, id uint, upd PPEIssueUpdate) (bool, error) {
	updates := map[string]interface{}{}
	if upd.Sector != nil {
		v := upper(*upd.Sector)
		if v == "" {
			return false, invalid("sector is required")
		}
		updates["sector"] = v
	}
	if upd.Shift != nil {
		v := strings.TrimSpace(*upd.Shift)
		if !models.ValidShift(v) {
			return false, invalid("shift must be one of 1° Turno or 2° Turno")
		}
		updates["shift"] = v
	}
	if upd.FirstIssue != nil {
		updates["first_issue"] = *upd.FirstIssue
	}
	if upd.ReferenceDate != nil {
		if upd.ReferenceDate.IsZero() {
			return false, invalid("reference date is required")
		}
		updates["reference_date"] = models.DateOnly(*upd.ReferenceDate)
	}
	if upd.ApproverBadge != nil {
		if *upd.ApproverBadge <= 0 {
			return false, invalid("approver badge must be greater than zero")
		}
		updates["approver_badge"] = *upd.ApproverBadge
	}
	if upd.Note != nil {
		updates["note"] = optionalUpper(upd.Note)
	}

	ok, err := s.repo.Update(ctx, actor, id, updates)
	if ok {
		record(ctx, s.audit, actor, TxPPE, models.AuditMutation)
	}
	return ok, err
}

// Delete removes an issue and all of its lines.
func (s *ppeService) Delete(ctx context.Context, actor session.Identity, id uint) (bool, error) {
	ok, err := s.repo.Delete(ctx, actor, id)
	if ok {
		record(ctx, s.audit, actor, TxPPE, models.AuditMutation)
	}
	return ok, err
}

func (s *ppeService) summaries(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) ([]models.PPEIssueSummary, error) {
	var out []models.PPEIssueSummary
	err := s.repo.Store().DB(ctx).
		Table("ppe_issues").
		Select("ppe_issues.*, (SELECT COUNT(*) FROM ppe_items WHERE ppe_items.issue_id = ppe_issues.id) AS item_count").
		Scopes(scopes...).
		Order("reference_date DESC").
		Order("created_at DESC").
		Order("id DESC").
		Scan(&out).Error
	if err != nil {
		return nil, repository.StorageError(err)
	}
	if out == nil {
		out = []models.PPEIssueSummary{}
	}
	return out, nil
}

// ListByPeriod returns issue headers whose reference date falls within r, with line counts.
func (s *ppeService) ListByPeriod(ctx context.Context, actor session.Identity, r filter.Range) ([]models.PPEIssueSummary, error) {
	out, err := s.summaries(ctx, r.DateScope("reference_date"))
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return out, nil
}

// ListByBadge returns the issues of one employee, optionally limited to r.
func (s *ppeService) ListByBadge(ctx context.Context, actor session.Identity, badge int64, r filter.Range) ([]models.PPEIssueSummary, error) {
	if badge <= 0 {
		return nil, invalid("badge must be greater than zero")
	}
	out, err := s.summaries(ctx, r.DateScope("reference_date"), func(db *gorm.DB) *gorm.DB {
		return db.Where("badge = ?", badge)
	})
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return out, nil
}

// ListItems returns the lines of an issue in insertion order.
func (s *ppeService) ListItems(ctx context.Context, actor session.Identity, issueID uint) ([]models.PPEItem, error) {
	var items []models.PPEItem
	err := s.repo.Store().DB(ctx).
		Where("issue_id = ?", issueID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, repository.StorageError(err)
	}
	if items == nil {
		items = []models.PPEItem{}
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return items, nil
}

// ListAll returns up to limit issue headers, newest first.
func (s *ppeService) ListAll(ctx context.Context, actor session.Identity, limit int) ([]models.PPEIssue, error) {
	out, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return out, nil
}
