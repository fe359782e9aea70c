package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"stockdesk/internal/filter"
	"stockdesk/internal/models"
	"stockdesk/internal/pagination"
	"stockdesk/internal/repository"
	"stockdesk/internal/session"
)

// MatchAll is the search value that returns every monitoring record.
const MatchAll = "%"

// monitoringService handles reprint-monitoring business logic.
type monitoringService struct {
	repo  *repository.Repository[models.MonitoringRecord, *models.MonitoringRecord]
	audit AuditServicer
}

// NewMonitoringService creates a new MonitoringServicer.
func NewMonitoringService(store *repository.Store, audit AuditServicer) MonitoringServicer {
	return &monitoringService{
		repo:  repository.New[models.MonitoringRecord](store),
		audit: audit,
	}
}

// Create stores a monitoring record. The responsible name is kept upper-case.
func (s *monitoringService) Create(ctx context.Context, actor session.Identity, in MonitoringInput) (*models.MonitoringRecord, error) {
	rec := &models.MonitoringRecord{
		Wave:        strings.TrimSpace(in.Wave),
		Load:        strings.TrimSpace(in.Load),
		Container:   strings.TrimSpace(in.Container),
		Responsible: upper(in.Responsible),
		Sector:      strings.TrimSpace(in.Sector),
		Note:        optionalTrim(in.Note),
	}
	if rec.Wave == "" || rec.Load == "" || rec.Container == "" || rec.Responsible == "" || rec.Sector == "" {
		return nil, invalid("wave, load, container, responsible and sector are required")
	}

	if err := s.repo.Insert(ctx, actor, rec); err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxMonitoring, models.AuditInput)
	return rec, nil
}

// Get returns one monitoring record.
func (s *monitoringService) Get(ctx context.Context, actor session.Identity, id uint) (*models.MonitoringRecord, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return rec, nil
}

// Update edits responsible, sector or note.
func (s *monitoringService) Update(ctx context.Context, actor session.Identity, id uint, upd MonitoringUpdate) (bool, error) {
	updates := map[string]interface{}{}
	if upd.Responsible != nil {
		v := upper(*upd.Responsible)
		if v == "" {
			return false, invalid("responsible is required")
		}
		updates["responsible"] = v
	}
	if upd.Sector != nil {
		v := strings.TrimSpace(*upd.Sector)
		if v == "" {
			return false, invalid("sector is required")
		}
		updates["sector"] = v
	}
	if upd.Note != nil {
		updates["note"] = optionalTrim(upd.Note)
	}

	ok, err := s.repo.Update(ctx, actor, id, updates)
	if ok {
		record(ctx, s.audit, actor, TxMonitoring, models.AuditMutation)
	}
	return ok, err
}

// Delete removes a monitoring record.
func (s *monitoringService) Delete(ctx context.Context, actor session.Identity, id uint) (bool, error) {
	ok, err := s.repo.Delete(ctx, actor, id)
	if ok {
		record(ctx, s.audit, actor, TxMonitoring, models.AuditMutation)
	}
	return ok, err
}

// ListByField matches wave, load or container by case-insensitive equality.
// MatchAll returns every record.
func (s *monitoringService) ListByField(ctx context.Context, actor session.Identity, field, value string) ([]models.MonitoringRecord, error) {
	column, ok := models.MonitoringFields[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		return nil, invalid("field must be one of wave, load or container")
	}

	var scopes []func(*gorm.DB) *gorm.DB
	if v := strings.TrimSpace(value); v != MatchAll {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("LOWER("+column+") = ?", strings.ToLower(v))
		})
	}

	recs, err := s.repo.List(ctx, 0, scopes...)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return recs, nil
}

// ListByDateRange returns records created within r.
func (s *monitoringService) ListByDateRange(ctx context.Context, actor session.Identity, r filter.Range, limit int) ([]models.MonitoringRecord, error) {
	recs, err := s.repo.List(ctx, limit, r.Scope("created_at"))
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return recs, nil
}

// ListAll returns up to limit records, newest first.
func (s *monitoringService) ListAll(ctx context.Context, actor session.Identity, limit int) ([]models.MonitoringRecord, error) {
	recs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return recs, nil
}

// ListResponsibles returns distinct responsible names, optionally by prefix, in ascending order.
// It feeds autocompletion and is not audited.
func (s *monitoringService) ListResponsibles(ctx context.Context, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	q := s.repo.Store().DB(ctx).Model(&models.MonitoringRecord{}).
		Where("TRIM(responsible) <> ''")
	if p := strings.TrimSpace(prefix); p != "" {
		q = q.Where("LOWER(responsible) LIKE ?", strings.ToLower(p)+"%")
	}

	var names []string
	err := q.Distinct("responsible").
		Order("responsible ASC").
		Limit(limit).
		Pluck("responsible", &names).Error
	if err != nil {
		return nil, repository.StorageError(err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
