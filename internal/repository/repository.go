package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"stockdesk/internal/authz"
	apperrors "stockdesk/internal/errors"
	"stockdesk/internal/models"
	"stockdesk/internal/pagination"
	"stockdesk/internal/session"
)

// Repository provides insert, get, gated update and gated delete for one
// entity kind. PT is the pointer type of T and carries the owner accessors.
type Repository[T any, PT interface {
	*T
	models.Record
}] struct {
	store *Store
}

// New creates a Repository for T.
func New[T any, PT interface {
	*T
	models.Record
}](store *Store) *Repository[T, PT] {
	return &Repository[T, PT]{store: store}
}

// Store returns the underlying store.
func (r *Repository[T, PT]) Store() *Store {
	return r.store
}

// Insert stamps actor as owner and persists rec. Child records reachable
// through associations are written in the same transaction.
func (r *Repository[T, PT]) Insert(ctx context.Context, actor session.Identity, rec PT) error {
	rec.SetOwner(actor.OwnerRef())
	return r.store.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(rec).Error
	})
}

// Get loads the record with the given id or returns ErrNotFound.
func (r *Repository[T, PT]) Get(ctx context.Context, id uint) (PT, error) {
	rec := PT(new(T))
	if err := r.store.DB(ctx).First(rec, id).Error; err != nil {
		return nil, StorageError(err)
	}
	return rec, nil
}

// Update applies updates to the record with the given id when actor may
// modify it. Protected columns are ignored. It returns false when the record
// does not exist or actor is not allowed; both outcomes look the same.
func (r *Repository[T, PT]) Update(ctx context.Context, actor session.Identity, id uint, updates map[string]interface{}) (bool, error) {
	return r.gated(ctx, actor, id, func(tx *gorm.DB, rec PT) error {
		stmt := &gorm.Statement{DB: tx}
		if err := stmt.Parse(rec); err != nil {
			return err
		}
		clean := StripProtected(stmt.Schema, updates)
		if len(clean) == 0 {
			return nil
		}
		return tx.Model(rec).Updates(clean).Error
	})
}

// Delete removes the record with the given id when actor may modify it.
// Owned line items are removed by the model's delete hook in the same transaction.
func (r *Repository[T, PT]) Delete(ctx context.Context, actor session.Identity, id uint) (bool, error) {
	return r.gated(ctx, actor, id, func(tx *gorm.DB, rec PT) error {
		return tx.Delete(rec).Error
	})
}

// Modify loads the record, checks actor against its owner and calls fn inside
// the same transaction. fn may return an AppError to abort.
func (r *Repository[T, PT]) Modify(ctx context.Context, actor session.Identity, id uint, fn func(tx *gorm.DB, rec PT) error) (bool, error) {
	return r.gated(ctx, actor, id, fn)
}

func (r *Repository[T, PT]) gated(ctx context.Context, actor session.Identity, id uint, fn func(tx *gorm.DB, rec PT) error) (bool, error) {
	var applied bool
	err := r.store.Transaction(ctx, func(tx *gorm.DB) error {
		rec := PT(new(T))
		if err := tx.First(rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if !authz.CanModify(rec.OwnerName(), actor) {
			return nil
		}
		if err := fn(tx, rec); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// Find returns the records matching scopes.
func (r *Repository[T, PT]) Find(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) ([]T, error) {
	var out []T
	q := r.store.DB(ctx).Model(PT(new(T))).Scopes(scopes...)
	if err := q.Find(&out).Error; err != nil {
		return nil, StorageError(err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// List returns up to limit records, newest first.
func (r *Repository[T, PT]) List(ctx context.Context, limit int, scopes ...func(*gorm.DB) *gorm.DB) ([]T, error) {
	all := append([]func(*gorm.DB) *gorm.DB{}, scopes...)
	all = append(all, pagination.NewestFirst, pagination.Limit(limit))
	return r.Find(ctx, all...)
}

// StripProtected returns a copy of updates keyed by column name, without
// identity, owner and creation columns. Keys may be column or field names;
// keys that resolve to no field of sch are dropped.
func StripProtected(sch *schema.Schema, updates map[string]interface{}) map[string]interface{} {
	clean := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		field := sch.LookUpField(k)
		if field == nil || field.DBName == "" || isProtected(field.DBName) {
			continue
		}
		clean[field.DBName] = v
	}
	return clean
}

func isProtected(column string) bool {
	for _, col := range models.ProtectedColumns {
		if col == column {
			return true
		}
	}
	return false
}

// ErrIfDenied converts a false mutation result into the combined not-found-or-denied error.
func ErrIfDenied(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotFoundOrDenied
	}
	return nil
}
