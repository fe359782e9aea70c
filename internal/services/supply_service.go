package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"stockdesk/internal/filter"
	"stockdesk/internal/models"
	"stockdesk/internal/repository"
	"stockdesk/internal/session"
)

// supplyService handles supply-room withdrawals.
type supplyService struct {
	repo  *repository.Repository[models.SupplyWithdrawal, *models.SupplyWithdrawal]
	audit AuditServicer
}

// NewSupplyService creates a new SupplyServicer.
func NewSupplyService(store *repository.Store, audit AuditServicer) SupplyServicer {
	return &supplyService{
		repo:  repository.New[models.SupplyWithdrawal](store),
		audit: audit,
	}
}

// Create stores a withdrawal. Sector, responsible and note are upper-cased.
func (s *supplyService) Create(ctx context.Context, actor session.Identity, in SupplyInput) (*models.SupplyWithdrawal, error) {
	rec := &models.SupplyWithdrawal{
		Sector:      upper(in.Sector),
		Shift:       strings.TrimSpace(in.Shift),
		Badge:       in.Badge,
		Responsible: upper(in.Responsible),
		Supply:      strings.TrimSpace(in.Supply),
		Quantity:    in.Quantity,
		Note:        optionalUpper(in.Note),
	}

	switch {
	case rec.Sector == "" || rec.Responsible == "" || rec.Supply == "":
		return nil, invalid("sector, responsible and supply are required")
	case !models.ValidShift(rec.Shift):
		return nil, invalid("shift must be one of 1° Turno or 2° Turno")
	case rec.Badge <= 0:
		return nil, invalid("badge must be greater than zero")
	case rec.Quantity <= 0:
		return nil, invalid("quantity must be greater than zero")
	}

	if err := s.repo.Insert(ctx, actor, rec); err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxSupplyRoom, models.AuditInput)
	return rec, nil
}

// Get returns one withdrawal.
func (s *supplyService) Get(ctx context.Context, actor session.Identity, id uint) (*models.SupplyWithdrawal, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return rec, nil
}

// Update edits any business field of a withdrawal with the same rules as Create.
func (s *supplyService) Update(ctx context.Context, actor session.Identity, id uint, upd SupplyUpdate) (bool, error) {
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
	if upd.Badge != nil {
		if *upd.Badge <= 0 {
			return false, invalid("badge must be greater than zero")
		}
		updates["badge"] = *upd.Badge
	}
	if upd.Responsible != nil {
		v := upper(*upd.Responsible)
		if v == "" {
			return false, invalid("responsible is required")
		}
		updates["responsible"] = v
	}
	if upd.Supply != nil {
		v := strings.TrimSpace(*upd.Supply)
		if v == "" {
			return false, invalid("supply is required")
		}
		updates["supply"] = v
	}
	if upd.Quantity != nil {
		if *upd.Quantity <= 0 {
			return false, invalid("quantity must be greater than zero")
		}
		updates["quantity"] = *upd.Quantity
	}
	if upd.Note != nil {
		updates["note"] = optionalUpper(upd.Note)
	}

	ok, err := s.repo.Update(ctx, actor, id, updates)
	if ok {
		record(ctx, s.audit, actor, TxSupplyRoom, models.AuditMutation)
	}
	return ok, err
}

// Delete removes a withdrawal.
func (s *supplyService) Delete(ctx context.Context, actor session.Identity, id uint) (bool, error) {
	ok, err := s.repo.Delete(ctx, actor, id)
	if ok {
		record(ctx, s.audit, actor, TxSupplyRoom, models.AuditMutation)
	}
	return ok, err
}

// List returns withdrawals for an optional shift created within r.
func (s *supplyService) List(ctx context.Context, actor session.Identity, shift string, r filter.Range, limit int) ([]models.SupplyWithdrawal, error) {
	scopes := []func(*gorm.DB) *gorm.DB{r.Scope("created_at")}
	if shift = strings.TrimSpace(shift); shift != "" {
		if !models.ValidShift(shift) {
			return nil, invalid("shift must be one of 1° Turno or 2° Turno")
		}
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("shift = ?", shift)
		})
	}

	recs, err := s.repo.List(ctx, limit, scopes...)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return recs, nil
}

// ListAll returns up to limit withdrawals, newest first.
func (s *supplyService) ListAll(ctx context.Context, actor session.Identity, limit int) ([]models.SupplyWithdrawal, error) {
	recs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return recs, nil
}
