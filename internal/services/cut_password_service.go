package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "stockdesk/internal/errors"
	"stockdesk/internal/filter"
	"stockdesk/internal/models"
	"stockdesk/internal/repository"
	"stockdesk/internal/session"
)

// cutPasswordService handles cut-password orders.
type cutPasswordService struct {
	repo  *repository.Repository[models.CutPasswordOrder, *models.CutPasswordOrder]
	audit AuditServicer
}

// NewCutPasswordService creates a new CutPasswordServicer.
func NewCutPasswordService(store *repository.Store, audit AuditServicer) CutPasswordServicer {
	return &cutPasswordService{
		repo:  repository.New[models.CutPasswordOrder](store),
		audit: audit,
	}
}

func (s *cutPasswordService) duplicateOrder(ctx context.Context, orderNumber int64) error {
	var existing models.CutPasswordOrder
	err := s.repo.Store().DB(ctx).Where("order_number = ?", orderNumber).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return repository.StorageError(err)
	}
	owner := "unknown"
	if existing.Owner != nil {
		owner = *existing.Owner
	}
	return apperrors.WithMessage(apperrors.ErrDuplicate,
		fmt.Sprintf("order %d was already registered by %s", orderNumber, owner))
}

// Create stores an order with its items. A terminal status requires a
// closing date and defaults it to today.
func (s *cutPasswordService) Create(ctx context.Context, actor session.Identity, in CutPasswordInput) (*models.CutPasswordOrder, error) {
	status := in.Status
	if status == "" {
		status = models.CutPasswordInProgress
	}

	switch {
	case in.OrderNumber < models.MinOrderNumber:
		return nil, invalid(fmt.Sprintf("order number must be at least %d", models.MinOrderNumber))
	case in.LoadNumber < models.MinLoadNumber:
		return nil, invalid(fmt.Sprintf("load number must be at least %d", models.MinLoadNumber))
	case in.Value.IsNegative():
		return nil, invalid("value must not be negative")
	case in.OrderDate.IsZero():
		return nil, invalid("order date is required")
	case !status.Valid():
		return nil, invalid("status must be one of IN_PROGRESS, FINISHED or CANCELLED")
	}

	order := &models.CutPasswordOrder{
		OrderNumber: in.OrderNumber,
		LoadNumber:  in.LoadNumber,
		Value:       in.Value.Round(2),
		OrderDate:   models.DateOnly(in.OrderDate),
		Status:      status,
		Note:        optionalTrim(in.Note),
	}
	if status.Terminal() {
		closing := models.Today()
		if in.ClosingDate != nil {
			closing = models.DateOnly(*in.ClosingDate)
		}
		order.ClosingDate = &closing
	}

	for _, it := range in.Items {
		if it.ItemCode < models.MinItemCode || it.Quantity <= 0 {
			continue
		}
		order.Items = append(order.Items, models.CutPasswordItem{
			ItemCode: it.ItemCode,
			Quantity: it.Quantity,
			Status:   status,
		})
	}
	if len(order.Items) == 0 {
		return nil, invalid("at least one item with code of 1000 or more and a positive quantity is required")
	}

	if err := s.duplicateOrder(ctx, in.OrderNumber); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, actor, order); err != nil {
		if apperrors.HasCode(err, apperrors.ErrDuplicate.Code) {
			// Lost a race with a concurrent insert of the same order.
			if dup := s.duplicateOrder(ctx, in.OrderNumber); dup != nil {
				return nil, dup
			}
		}
		return nil, err
	}
	record(ctx, s.audit, actor, TxCutPassword, models.AuditInput)
	return order, nil
}

func (s *cutPasswordService) load(ctx context.Context, where string, arg interface{}) (*models.CutPasswordOrder, error) {
	var order models.CutPasswordOrder
	err := s.repo.Store().DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where(where, arg).
		First(&order).Error
	if err != nil {
		return nil, repository.StorageError(err)
	}
	return &order, nil
}

// Get returns an order with its items.
func (s *cutPasswordService) Get(ctx context.Context, actor session.Identity, id uint) (*models.CutPasswordOrder, error) {
	order, err := s.load(ctx, "id = ?", id)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return order, nil
}

// GetByOrderNumber returns the order with the given number.
func (s *cutPasswordService) GetByOrderNumber(ctx context.Context, actor session.Identity, orderNumber int64) (*models.CutPasswordOrder, error) {
	order, err := s.load(ctx, "order_number = ?", orderNumber)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return order, nil
}

// Update edits the header fields of an order.
func (s *cutPasswordService) Update(ctx context.Context, actor session.Identity, id uint, upd CutPasswordUpdate) (bool, error) {
	updates := map[string]interface{}{}
	if upd.LoadNumber != nil {
		if *upd.LoadNumber < models.MinLoadNumber {
			return false, invalid(fmt.Sprintf("load number must be at least %d", models.MinLoadNumber))
		}
		updates["load_number"] = *upd.LoadNumber
	}
	if upd.Value != nil {
		if upd.Value.IsNegative() {
			return false, invalid("value must not be negative")
		}
		updates["value"] = upd.Value.Round(2)
	}
	if upd.OrderDate != nil {
		if upd.OrderDate.IsZero() {
			return false, invalid("order date is required")
		}
		updates["order_date"] = models.DateOnly(*upd.OrderDate)
	}
	if upd.Note != nil {
		updates["note"] = optionalTrim(upd.Note)
	}

	ok, err := s.repo.Update(ctx, actor, id, updates)
	if ok {
		record(ctx, s.audit, actor, TxCutPassword, models.AuditMutation)
	}
	return ok, err
}

// UpdateStatus closes an in-progress order as finished or cancelled. The
// closing date is set to today and the items follow the order's status.
func (s *cutPasswordService) UpdateStatus(ctx context.Context, actor session.Identity, id uint, status models.CutPasswordStatus, note *string) (bool, error) {
	status = models.CutPasswordStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if !status.Terminal() {
		return false, invalid("status must be FINISHED or CANCELLED")
	}

	ok, err := s.repo.Modify(ctx, actor, id, func(tx *gorm.DB, order *models.CutPasswordOrder) error {
		if order.Status != models.CutPasswordInProgress {
			return apperrors.ErrInvalidStatusTransition
		}
		updates := map[string]interface{}{
			"status":       status,
			"closing_date": models.Today(),
		}
		if note != nil {
			updates["note"] = optionalTrim(note)
		}
		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&models.CutPasswordItem{}).
			Where("order_id = ?", order.ID).
			Update("status", status).Error
	})
	if ok {
		record(ctx, s.audit, actor, TxCutPassword, models.AuditMutation)
	}
	return ok, err
}

// Delete removes an order and its items.
func (s *cutPasswordService) Delete(ctx context.Context, actor session.Identity, id uint) (bool, error) {
	ok, err := s.repo.Delete(ctx, actor, id)
	if ok {
		record(ctx, s.audit, actor, TxCutPassword, models.AuditMutation)
	}
	return ok, err
}

// ListInProgress returns open orders. Administrators see every order,
// other users only their own.
func (s *cutPasswordService) ListInProgress(ctx context.Context, actor session.Identity) ([]models.CutPasswordOrder, error) {
	if actor.IsAnonymous() {
		return nil, apperrors.ErrUnauthorized
	}
	scopes := []func(*gorm.DB) *gorm.DB{func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", models.CutPasswordInProgress)
	}}
	if !actor.IsAdmin() {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("owner = ?", actor.Username)
		})
	}

	orders, err := s.repo.List(ctx, 0, scopes...)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return orders, nil
}

// ListByDateRange returns orders whose order date falls within r.
func (s *cutPasswordService) ListByDateRange(ctx context.Context, actor session.Identity, r filter.Range, limit int) ([]models.CutPasswordOrder, error) {
	orders, err := s.repo.List(ctx, limit, r.DateScope("order_date"))
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return orders, nil
}

// ListItems returns the items of an order in insertion order.
func (s *cutPasswordService) ListItems(ctx context.Context, actor session.Identity, orderID uint) ([]models.CutPasswordItem, error) {
	var items []models.CutPasswordItem
	err := s.repo.Store().DB(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, repository.StorageError(err)
	}
	if items == nil {
		items = []models.CutPasswordItem{}
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return items, nil
}

// ListAll returns up to limit orders, newest first.
func (s *cutPasswordService) ListAll(ctx context.Context, actor session.Identity, limit int) ([]models.CutPasswordOrder, error) {
	orders, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return orders, nil
}
