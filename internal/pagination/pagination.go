package pagination

import (
	"gorm.io/gorm"
)

// Limits applied to list queries.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ListRequest holds the optional row limit parsed from query strings.
type ListRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// Defaults fills in the default limit when none is provided.
func (r *ListRequest) Defaults() {
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
}

// ListResponse wraps a list of records with its size.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
	Limit int `json:"limit,omitempty"`
}

// NewListResponse creates a ListResponse from the given data.
func NewListResponse[T any](data []T, limit int) ListResponse[T] {
	if data == nil {
		data = []T{}
	}
	return ListResponse[T]{
		Data:  data,
		Count: len(data),
		Limit: limit,
	}
}

// Limit returns a GORM scope applying LIMIT when limit is positive.
func Limit(limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	}
}

// NewestFirst orders by created_at descending with id as a tie-breaker.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
