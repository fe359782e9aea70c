// Package repository implements owner-gated persistence shared by every entity kind.
package repository

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	apperrors "stockdesk/internal/errors"
	"stockdesk/internal/logger"
)

// CommitHook runs after a write transaction commits. Hooks must not block.
type CommitHook func()

// Store is the database handle shared by services plus the hooks that run
// after each committed write.
type Store struct {
	db *gorm.DB

	mu    sync.RWMutex
	hooks []CommitHook
}

// NewStore wraps db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// OnCommit registers h to run after every committed write.
func (s *Store) OnCommit(h CommitHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// DB returns a handle bound to ctx for reads.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn in a single transaction and fires the commit hooks when
// it commits. Errors are mapped onto the application taxonomy.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := s.db.WithContext(ctx).Transaction(fn); err != nil {
		return StorageError(err)
	}
	s.committed()
	return nil
}

func (s *Store) committed() {
	s.mu.RLock()
	hooks := append([]CommitHook(nil), s.hooks...)
	s.mu.RUnlock()

	for _, h := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Get().Errorw("commit hook panicked", "panic", r)
				}
			}()
			h()
		}()
	}
}

// StorageError maps a persistence error onto the application taxonomy.
// AppErrors pass through untouched.
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Wrap(apperrors.ErrDuplicate, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
}
