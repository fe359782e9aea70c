package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"stockdesk/internal/models"
	"stockdesk/internal/repository"
	"stockdesk/internal/session"
)

// blockedItemService handles blocked-item business logic.
type blockedItemService struct {
	repo  *repository.Repository[models.BlockedItem, *models.BlockedItem]
	audit AuditServicer
}

// NewBlockedItemService creates a new BlockedItemServicer.
func NewBlockedItemService(store *repository.Store, audit AuditServicer) BlockedItemServicer {
	return &blockedItemService{
		repo:  repository.New[models.BlockedItem](store),
		audit: audit,
	}
}

// Create validates and stores a blocked item owned by actor.
func (s *blockedItemService) Create(ctx context.Context, actor session.Identity, in BlockedItemInput) (*models.BlockedItem, error) {
	reason := strings.TrimSpace(in.Reason)
	sector := strings.TrimSpace(in.ResponsibleSector)

	switch {
	case in.ItemCode <= 0:
		return nil, invalid("item code must be greater than zero")
	case in.Quantity <= 0:
		return nil, invalid("quantity must be greater than zero")
	case reason == "":
		return nil, invalid("reason is required")
	case len(reason) > maxReasonLength:
		return nil, invalid("reason is too long")
	case sector == "":
		return nil, invalid("responsible sector is required")
	case in.Badge != nil && *in.Badge <= 0:
		return nil, invalid("badge must be greater than zero")
	}

	item := &models.BlockedItem{
		ItemCode:          in.ItemCode,
		Quantity:          in.Quantity,
		Reason:            reason,
		ResponsibleSector: sector,
		Badge:             in.Badge,
	}
	if in.MovementDate != nil {
		d := models.DateOnly(*in.MovementDate)
		item.MovementDate = &d
	}

	if err := s.repo.Insert(ctx, actor, item); err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxBlockedItems, models.AuditInput)
	return item, nil
}

// Get returns one blocked item.
func (s *blockedItemService) Get(ctx context.Context, actor session.Identity, id uint) (*models.BlockedItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return item, nil
}

// Update edits a blocked item the actor is allowed to modify.
func (s *blockedItemService) Update(ctx context.Context, actor session.Identity, id uint, upd BlockedItemUpdate) (bool, error) {
	updates := map[string]interface{}{}
	if upd.Quantity != nil {
		if *upd.Quantity <= 0 {
			return false, invalid("quantity must be greater than zero")
		}
		updates["quantity"] = *upd.Quantity
	}
	if upd.Reason != nil {
		reason := strings.TrimSpace(*upd.Reason)
		if reason == "" || len(reason) > maxReasonLength {
			return false, invalid("reason must be between 1 and 2000 characters")
		}
		updates["reason"] = reason
	}
	if upd.ResponsibleSector != nil {
		sector := strings.TrimSpace(*upd.ResponsibleSector)
		if sector == "" {
			return false, invalid("responsible sector is required")
		}
		updates["responsible_sector"] = sector
	}
	if upd.Badge != nil {
		if *upd.Badge <= 0 {
			return false, invalid("badge must be greater than zero")
		}
		updates["badge"] = *upd.Badge
	}
	if upd.MovementDate != nil {
		updates["movement_date"] = models.DateOnly(*upd.MovementDate)
	}

	ok, err := s.repo.Update(ctx, actor, id, updates)
	if ok {
		record(ctx, s.audit, actor, TxBlockedItems, models.AuditMutation)
	}
	return ok, err
}

// Delete removes a blocked item the actor is allowed to modify.
func (s *blockedItemService) Delete(ctx context.Context, actor session.Identity, id uint) (bool, error) {
	ok, err := s.repo.Delete(ctx, actor, id)
	if ok {
		record(ctx, s.audit, actor, TxBlockedItems, models.AuditMutation)
	}
	return ok, err
}

// ListByItem returns every blocked entry for an item code, newest first.
func (s *blockedItemService) ListByItem(ctx context.Context, actor session.Identity, itemCode int64) ([]models.BlockedItem, error) {
	if itemCode <= 0 {
		return nil, invalid("item code must be greater than zero")
	}
	items, err := s.repo.List(ctx, 0, func(db *gorm.DB) *gorm.DB {
		return db.Where("item_code = ?", itemCode)
	})
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return items, nil
}

// ListFiltered returns blocked items created within the range whose reason
// contains the given text, ignoring case.
func (s *blockedItemService) ListFiltered(ctx context.Context, actor session.Identity, f BlockedItemFilter) ([]models.BlockedItem, error) {
	scopes := []func(*gorm.DB) *gorm.DB{f.Range.Scope("created_at")}
	if sub := strings.TrimSpace(f.ReasonContains); sub != "" {
		pattern := "%" + strings.ToLower(sub) + "%"
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("LOWER(reason) LIKE ?", pattern)
		})
	}

	items, err := s.repo.List(ctx, f.Limit, scopes...)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return items, nil
}

// ListAll returns up to limit blocked items, newest first. A non-positive limit returns every row.
func (s *blockedItemService) ListAll(ctx context.Context, actor session.Identity, limit int) ([]models.BlockedItem, error) {
	items, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return items, nil
}
