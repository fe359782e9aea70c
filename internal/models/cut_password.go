package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CutPasswordStatus is the lifecycle state of a cut-password order.
type CutPasswordStatus string

const (
	CutPasswordInProgress CutPasswordStatus = "IN_PROGRESS"
	CutPasswordFinished   CutPasswordStatus = "FINISHED"
	CutPasswordCancelled  CutPasswordStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s CutPasswordStatus) Valid() bool {
	switch s {
	case CutPasswordInProgress, CutPasswordFinished, CutPasswordCancelled:
		return true
	}
	return false
}

// Terminal reports whether s closes the order.
func (s CutPasswordStatus) Terminal() bool {
	return s == CutPasswordFinished || s == CutPasswordCancelled
}

// Minimum accepted numbers for orders, loads and cut items.
const (
	MinOrderNumber = 10000
	MinLoadNumber  = 1000
	MinItemCode    = 1000
)

// CutPasswordOrder authorises the cut of a picking order.
type CutPasswordOrder struct {
	Base
	Owned
	OrderNumber int64             `gorm:"not null;uniqueIndex" json:"order_number"`
	LoadNumber  int64             `gorm:"not null;index" json:"load_number"`
	Value       decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"value"`
	OrderDate   time.Time         `gorm:"type:date;not null;index" json:"order_date"`
	Status      CutPasswordStatus `gorm:"size:20;not null;index" json:"status"`
	ClosingDate *time.Time        `gorm:"type:date" json:"closing_date,omitempty"`
	Note        *string           `gorm:"type:text" json:"note,omitempty"`
	Items       []CutPasswordItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// BeforeDelete removes the order's items in the same transaction.
func (o *CutPasswordOrder) BeforeDelete(tx *gorm.DB) error {
	if o.ID == 0 {
		return nil
	}
	return tx.Where("order_id = ?", o.ID).Delete(&CutPasswordItem{}).Error
}

// CutPasswordItem is one item cut from an order.
type CutPasswordItem struct {
	ID       uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID  uint              `gorm:"not null;index" json:"order_id"`
	ItemCode int64             `gorm:"not null;index" json:"item_code"`
	Quantity int64             `gorm:"not null" json:"quantity"`
	Status   CutPasswordStatus `gorm:"size:20;not null" json:"status"`
}
