package models

import "time"

// BlockedItem records stock withheld from movement and why.
type BlockedItem struct {
	Base
	Owned
	ItemCode          int64      `gorm:"not null;index" json:"item_code"`
	Quantity          int64      `gorm:"not null;index" json:"quantity"`
	Reason            string     `gorm:"size:2000;not null" json:"reason"`
	ResponsibleSector string     `gorm:"size:255;not null;index" json:"responsible_sector"`
	Badge             *int64     `gorm:"index" json:"badge,omitempty"`
	MovementDate      *time.Time `gorm:"type:date;index" json:"movement_date,omitempty"`
}
