package history

import "time"

// Entry is one completed exchange. Rows are immutable once written and are
// retained indefinitely.
type Entry struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	Identity  string    `gorm:"type:varchar(64);not null;index" json:"-"`
	Prompt    string    `gorm:"type:text;not null" json:"prompt"`
	Response  string    `gorm:"type:text;not null" json:"response"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Entry) TableName() string { return "history" }
