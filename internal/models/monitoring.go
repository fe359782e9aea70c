package models

// MonitoringRecord tracks a wave/load/container check for reprint follow-up.
type MonitoringRecord struct {
	Base
	Owned
	Wave        string  `gorm:"size:100;not null;index" json:"wave"`
	Load        string  `gorm:"size:100;not null;index" json:"load"`
	Container   string  `gorm:"size:100;not null;index" json:"container"`
	Responsible string  `gorm:"size:255;not null;index" json:"responsible"`
	Sector      string  `gorm:"size:255;not null;index" json:"sector"`
	Note        *string `gorm:"type:text" json:"note,omitempty"`
}

// MonitoringFields are the columns that can be searched by exact value.
var MonitoringFields = map[string]string{
	"wave":      "wave",
	"load":      "load",
	"container": "container",
}
