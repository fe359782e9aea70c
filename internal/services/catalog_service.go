package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"stockdesk/internal/authz"
	apperrors "stockdesk/internal/errors"
	"stockdesk/internal/models"
	"stockdesk/internal/repository"
	"stockdesk/internal/session"
)

var (
	catalogCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockdesk_catalog_cache_hits_total",
		Help: "Catalog lookups served from the cache.",
	})
	catalogCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockdesk_catalog_cache_misses_total",
		Help: "Catalog lookups that went to the database.",
	})
)

// catalogService handles the product catalog used to fill PPE lines.
type catalogService struct {
	repo  *repository.Repository[models.CatalogEntry, *models.CatalogEntry]
	audit AuditServicer
	cache *expirable.LRU[string, models.CatalogEntry]
}

// NewCatalogService creates a new CatalogServicer whose lookups are cached
// for ttl in an LRU of at most size entries.
func NewCatalogService(store *repository.Store, audit AuditServicer, size int, ttl time.Duration) CatalogServicer {
	if size <= 0 {
		size = 512
	}
	return &catalogService{
		repo:  repository.New[models.CatalogEntry](store),
		audit: audit,
		cache: expirable.NewLRU[string, models.CatalogEntry](size, nil, ttl),
	}
}

// List returns the whole catalog ordered by code.
func (s *catalogService) List(ctx context.Context, actor session.Identity) ([]models.CatalogEntry, error) {
	entries, err := s.repo.Find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Order("code ASC")
	})
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxQueries, models.AuditQuery)
	return entries, nil
}

// Lookup returns the entry for code, or ErrNotFound.
func (s *catalogService) Lookup(ctx context.Context, code string) (*models.CatalogEntry, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalid("code is required")
	}
	if entry, ok := s.cache.Get(code); ok {
		catalogCacheHits.Inc()
		return &entry, nil
	}
	catalogCacheMisses.Inc()

	entry, err := s.findByCode(s.repo.Store().DB(ctx), code)
	if err != nil {
		return nil, err
	}
	s.cache.Add(code, *entry)
	return entry, nil
}

func (s *catalogService) findByCode(db *gorm.DB, code string) (*models.CatalogEntry, error) {
	var entry models.CatalogEntry
	if err := db.Where("code = ?", code).First(&entry).Error; err != nil {
		return nil, repository.StorageError(err)
	}
	return &entry, nil
}

// Upsert creates the entry for code or edits the existing one. Editing
// follows the owner-or-administrator rule like any other record.
func (s *catalogService) Upsert(ctx context.Context, actor session.Identity, in CatalogInput) (*models.CatalogEntry, error) {
	code := strings.TrimSpace(in.Code)
	description := strings.TrimSpace(in.Description)
	if code == "" || description == "" {
		return nil, invalid("code and description are required")
	}
	defer s.cache.Remove(code)

	existing, err := s.findByCode(s.repo.Store().DB(ctx), code)
	switch {
	case err == nil:
		ok, err := s.repo.Modify(ctx, actor, existing.ID, func(tx *gorm.DB, rec *models.CatalogEntry) error {
			rec.Description = description
			rec.Price = in.Price
			return tx.Model(rec).Select("description", "price").Updates(rec).Error
		})
		if err := repository.ErrIfDenied(ok, err); err != nil {
			return nil, err
		}
		existing.Description = description
		existing.Price = in.Price
		record(ctx, s.audit, actor, TxCatalog, models.AuditMutation)
		return existing, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	entry := &models.CatalogEntry{Code: code, Description: description, Price: in.Price}
	if err := s.repo.Insert(ctx, actor, entry); err != nil {
		return nil, err
	}
	record(ctx, s.audit, actor, TxCatalog, models.AuditInput)
	return entry, nil
}

// Delete removes the entry for code. It returns false when the code is
// unknown or the actor may not modify it.
func (s *catalogService) Delete(ctx context.Context, actor session.Identity, code string) (bool, error) {
	code = strings.TrimSpace(code)
	existing, err := s.findByCode(s.repo.Store().DB(ctx), code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	ok, err := s.repo.Delete(ctx, actor, existing.ID)
	if ok {
		s.cache.Remove(code)
		record(ctx, s.audit, actor, TxCatalog, models.AuditMutation)
	}
	return ok, err
}

// Replace swaps the whole catalog for entries in one transaction. Blank rows
// are skipped and repeated codes reject the batch. Administrators only.
func (s *catalogService) Replace(ctx context.Context, actor session.Identity, entries []CatalogInput) (int, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return 0, err
	}

	owner, ownerID := actor.OwnerRef()
	seen := make(map[string]struct{}, len(entries))
	rows := make([]models.CatalogEntry, 0, len(entries))
	for _, in := range entries {
		code := strings.TrimSpace(in.Code)
		description := strings.TrimSpace(in.Description)
		if code == "" || description == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			return 0, apperrors.WithMessage(apperrors.ErrDuplicate, "duplicate catalog code "+code)
		}
		seen[code] = struct{}{}
		rows = append(rows, models.CatalogEntry{
			Owned:       models.Owned{Owner: owner, OwnerID: ownerID},
			Code:        code,
			Description: description,
			Price:       in.Price,
		})
	}

	err := s.repo.Store().Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.CatalogEntry{}).Error; err != nil {
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

	s.cache.Purge()
	record(ctx, s.audit, actor, TxCatalog, models.AuditMutation)
	return len(rows), nil
}
