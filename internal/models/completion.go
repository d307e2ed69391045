package models

import "time"

// DateLayout is the calendar-day wire format. Completions carry no time
// component; comparing dates is plain string equality.
const DateLayout = "2006-01-02"

// Completion marks one calendar day as done for one user on one
// commitment. At most one row exists per (commitment, user, date); a
// toggle flips Deleted instead of removing the row so other replicas
// can observe the removal.
type Completion struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	CommitmentID string    `gorm:"not null;uniqueIndex:uidx_completion_key" json:"commitmentId"`
	UserID       string    `gorm:"not null;uniqueIndex:uidx_completion_key" json:"userId"`
	Date         string    `gorm:"not null;uniqueIndex:uidx_completion_key" json:"date"`
	Deleted      bool      `gorm:"not null;default:false" json:"deleted"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Key identifies the natural key of a completion row.
func (completion Completion) Key() string {
	return completion.CommitmentID + "|" + completion.UserID + "|" + completion.Date
}

// FormatDate renders a calendar day in the wire format using the
// clock's local date, never UTC, so a toggle near midnight lands on
// the day the user saw.
func FormatDate(value time.Time) string {
	return value.Format(DateLayout)
}

// ParseDate validates a wire-format calendar day.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}
