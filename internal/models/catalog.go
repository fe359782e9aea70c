package models

import "github.com/shopspring/decimal"

// CatalogEntry maps a product code to its description and optional unit price.
type CatalogEntry struct {
	Base
	Owned
	Code        string              `gorm:"size:100;not null;uniqueIndex" json:"code"`
	Description string              `gorm:"size:255;not null" json:"description"`
	Price       decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"price"`
}
