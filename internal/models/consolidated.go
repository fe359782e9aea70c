package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsolidatedLine is one branch row of a daily consolidated-stock snapshot.
type ConsolidatedLine struct {
	Base
	Owned
	ReferenceDate        time.Time           `gorm:"type:date;not null;index" json:"reference_date"`
	Warehouse            *int64              `gorm:"index" json:"warehouse"`
	BranchDescription    *string             `gorm:"size:255" json:"branch_description"`
	StockValue           decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"stock_value"`
	MixItems             *int64              `json:"mix_items"`
	ItemsWithStock       *int64              `json:"items_with_stock"`
	ItemsWithoutStock    *int64              `json:"items_without_stock"`
	BlockedTotal         decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"blocked_total"`
	BlockedInStock       decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"blocked_in_stock"`
	BlockedInNegotiation decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"blocked_in_negotiation"`
	BlockedBalance       decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"blocked_balance"`
	PctItemsWithStock    decimal.NullDecimal `gorm:"type:numeric(7,4)" json:"pct_items_with_stock"`
}
