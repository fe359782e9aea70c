package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"stockdesk/internal/filter"
	"stockdesk/internal/models"
	"stockdesk/internal/repository"
	"stockdesk/internal/session"
)

// consolidatedService handles daily consolidated-stock snapshots.
type consolidatedService struct {
	repo  *repository.Repository[models.ConsolidatedLine, *models.ConsolidatedLine]
	audit AuditServicer
}

// NewConsolidatedService creates a new ConsolidatedServicer.
func NewConsolidatedService(store *repository.Store, audit AuditServicer) ConsolidatedServicer {
	return &consolidatedService{
		repo:  repository.New[models.ConsolidatedLine](store),
		audit: audit,
	}
}

func toConsolidatedLine(date time.Time, in ConsolidatedInput) models.ConsolidatedLine {
	return models.ConsolidatedLine{
		ReferenceDate:        date,
		Warehouse:            in.Warehouse,
		BranchDescription:    optionalTrim(in.BranchDescription),
		StockValue:           in.StockValue,
		MixItems:             in.MixItems,
		ItemsWithStock:       in.ItemsWithStock,
		ItemsWithoutStock:    in.ItemsWithoutStock,
		BlockedTotal:         in.BlockedTotal,
		BlockedInStock:       in.BlockedInStock,
		BlockedInNegotiation: in.BlockedInNegotiation,
		BlockedBalance:       in.BlockedBalance,
		PctItemsWithStock:    in.PctItemsWithStock,
	}
}

func (s *consolidatedService) rows(actor session.Identity, date time.Time, lines []ConsolidatedInput) []models.ConsolidatedLine {
	owner, ownerID := actor.OwnerRef()
	day := models.DateOnly(date)
	rows := make([]models.ConsolidatedLine, 0, len(lines))
	for _, in := range lines {
		row := toConsolidatedLine(day, in)
		row.SetOwner(owner, ownerID)
		rows = append(rows, row)
	}
	return rows
}

// Insert appends lines to the snapshot of date.
func (s *consolidatedService) Insert(ctx context.Context, actor session.Identity, date time.Time, lines []ConsolidatedInput) (int, error) {
	if date.IsZero() {
		return 0, invalid("reference date is required")
	}
	rows := s.rows(actor, date, lines)
	if len(rows) == 0 {
		return 0, nil
	}

	err := s.repo.Store().Transaction(ctx, func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, 200).Error
	})
	if err != nil {
		return 0, err
	}
	record(ctx, s.audit, actor, TxConsolidated, models.AuditInput)
	return len(rows), nil
}

// ReplaceForDate deletes the snapshot of date and inserts lines in the same transaction.
func (s *consolidatedService) ReplaceForDate(ctx context.Context, actor session.Identity, date time.Time, lines []ConsolidatedInput) (int, error) {
	if date.IsZero() {
		return 0, invalid("reference date is required")
	}
	day := models.DateOnly(date)
	rows := s.rows(actor, day, lines)

	err := s.repo.Store().Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("reference_date = ?", day).Delete(&models.ConsolidatedLine{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, 200).Error
	})
	if err != nil {
		return 0, err
	}
	record(ctx, s.audit, actor, TxConsolidated, models.AuditInput)
	return len(rows), nil
}

// ExistsForDate reports whether a snapshot was loaded for date.
func (s *consolidatedService) ExistsForDate(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	err := s.repo.Store().DB(ctx).Model(&models.ConsolidatedLine{}).
		Where("reference_date = ?", models.DateOnly(date)).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, repository.StorageError(err)
	}
	return count > 0, nil
}

// ListByPeriod returns snapshot lines within r, latest date first and branches alphabetically.
func (s *consolidatedService) ListByPeriod(ctx context.Context, actor session.Identity, r filter.Range) ([]models.ConsolidatedLine, error) {
	lines, err := s.repo.Find(ctx, r.DateScope("reference_date"), func(db *gorm.DB) *gorm.DB {
		return db.Order("reference_date DESC").Order("branch_description ASC").Order("id ASC")
	})
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxConsolidated, models.AuditQuery)
	return lines, nil
}

// Update rewrites the figures of one line. The reference date is kept.
func (s *consolidatedService) Update(ctx context.Context, actor session.Identity, id uint, in ConsolidatedInput) (bool, error) {
	ok, err := s.repo.Modify(ctx, actor, id, func(tx *gorm.DB, line *models.ConsolidatedLine) error {
		next := toConsolidatedLine(line.ReferenceDate, in)
		return tx.Model(line).
			Select("warehouse", "branch_description", "stock_value", "mix_items", "items_with_stock",
				"items_without_stock", "blocked_total", "blocked_in_stock", "blocked_in_negotiation",
				"blocked_balance", "pct_items_with_stock").
			Updates(&next).Error
	})
	if ok {
		record(ctx, s.audit, actor, TxConsolidated, models.AuditMutation)
	}
	return ok, err
}

// Delete removes one line.
func (s *consolidatedService) Delete(ctx context.Context, actor session.Identity, id uint) (bool, error) {
	ok, err := s.repo.Delete(ctx, actor, id)
	if ok {
		record(ctx, s.audit, actor, TxConsolidated, models.AuditMutation)
	}
	return ok, err
}
