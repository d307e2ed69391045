package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	TypeSelf          = "self"
	TypeCollaborative = "collaborative"
	TypeShared        = "shared"
)

// localIDPrefix marks commitment IDs assigned by a client before the
// remote store has seen the record.
const localIDPrefix = "local-"

// Commitment is a trackable habit, owned by one user and optionally
// shared through a code. Type is immutable after creation.
type Commitment struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Type      string    `gorm:"not null;default:self" json:"type"`
	OwnerID   string    `gorm:"column:owner_id;not null;index" json:"userId"`
	ShareCode string    `gorm:"index" json:"shareCode,omitempty"`
	Deleted   bool      `gorm:"not null;default:false" json:"deleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (commitment Commitment) IsCollaborative() bool {
	return commitment.Type == TypeCollaborative
}

// IsLocalOnly reports whether the commitment has never been pushed to
// the remote store.
func (commitment Commitment) IsLocalOnly() bool {
	return IsLocalID(commitment.ID)
}

func IsValidType(value string) bool {
	switch value {
	case TypeSelf, TypeCollaborative, TypeShared:
		return true
	default:
		return false
	}
}

func NewLocalID() string {
	return localIDPrefix + uuid.NewString()
}

func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}
