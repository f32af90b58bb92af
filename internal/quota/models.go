package quota

import "time"

// Record tracks admitted requests for one identity on one calendar day.
// Day keys are UTC dates in YYYY-MM-DD form.
type Record struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	Identity  string    `gorm:"type:varchar(64);not null;uniqueIndex:uniq_requests_identity_day,priority:1" json:"identity"`
	Day       string    `gorm:"type:varchar(10);not null;uniqueIndex:uniq_requests_identity_day,priority:2" json:"day"`
	Count     int       `gorm:"not null" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Record) TableName() string { return "requests" }

// DayKey returns the UTC day bucket for t.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// NextReset returns the next UTC midnight after t, when a fresh day bucket starts.
func NextReset(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day()+1, 0, 0, 0, 0, time.UTC)
}
