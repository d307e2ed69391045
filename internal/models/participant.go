package models

import "time"

// Participant joins a collaborative commitment and a user. A user who
// left keeps their row with Deleted set; rejoining restores it with a
// clean slate. At most two non-deleted rows exist per commitment.
type Participant struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	CommitmentID string    `gorm:"not null;uniqueIndex:uidx_participant_key" json:"commitmentId"`
	UserID       string    `gorm:"not null;uniqueIndex:uidx_participant_key" json:"userId"`
	Deleted      bool      `gorm:"not null;default:false" json:"deleted"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MaxParticipants caps a collaborative commitment at creator plus one
// joiner.
const MaxParticipants = 2
