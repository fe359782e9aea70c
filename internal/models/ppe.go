package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Units of measure for PPE lines.
const (
	UnitPairs = "PARES"
	UnitUnits = "UNID"
)

// PPEIssue is the header of a protective-equipment hand-out.
type PPEIssue struct {
	Base
	Owned
	Badge         int64     `gorm:"not null;index" json:"badge"`
	Sector        string    `gorm:"size:255;not null;index" json:"sector"`
	Shift         string    `gorm:"size:50;not null;index" json:"shift"`
	FirstIssue    bool      `gorm:"not null" json:"first_issue"`
	ReferenceDate time.Time `gorm:"type:date;not null;index" json:"reference_date"`
	ApproverBadge int64     `gorm:"not null;index" json:"approver_badge"`
	Note          *string   `gorm:"type:text" json:"note,omitempty"`
	Items         []PPEItem `gorm:"foreignKey:IssueID" json:"items,omitempty"`
}

// BeforeDelete removes the issue's lines in the same transaction.
func (p *PPEIssue) BeforeDelete(tx *gorm.DB) error {
	if p.ID == 0 {
		return nil
	}
	return tx.Where("issue_id = ?", p.ID).Delete(&PPEItem{}).Error
}

// PPEItem is one line of a PPE issue.
type PPEItem struct {
	ID          uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	IssueID     uint                `gorm:"not null;index" json:"issue_id"`
	Code        string              `gorm:"size:100;not null;index" json:"code"`
	Description string              `gorm:"size:255;not null" json:"description"`
	Quantity    int64               `gorm:"not null" json:"quantity"`
	Unit        *string             `gorm:"size:10" json:"unit,omitempty"`
	UnitPrice   decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"unit_price"`
	LineTotal   decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"line_total"`
}

// PPEIssueSummary is a header row with its line count.
type PPEIssueSummary struct {
	PPEIssue
	ItemCount int64 `json:"item_count"`
}
