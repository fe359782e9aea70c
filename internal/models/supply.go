package models

// Shifts accepted on supply withdrawals and PPE issues.
const (
	ShiftFirst  = "1° Turno"
	ShiftSecond = "2° Turno"
)

// ValidShift reports whether s is a known work shift.
func ValidShift(s string) bool {
	return s == ShiftFirst || s == ShiftSecond
}

// SupplyWithdrawal records consumables handed out by the supply room.
type SupplyWithdrawal struct {
	Base
	Owned
	Sector      string  `gorm:"size:255;not null;index" json:"sector"`
	Shift       string  `gorm:"size:50;not null;index" json:"shift"`
	Badge       int64   `gorm:"not null;index" json:"badge"`
	Responsible string  `gorm:"size:255;not null;index" json:"responsible"`
	Supply      string  `gorm:"size:100;not null;index" json:"supply"`
	Quantity    int64   `gorm:"not null" json:"quantity"`
	Note        *string `gorm:"type:text" json:"note,omitempty"`
}
