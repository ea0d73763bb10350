package models

import "time"

// Friendship statuses.
const (
	FriendshipSent     = "sent"
	FriendshipAccepted = "accepted"
	FriendshipBlocked  = "blocked"
)

// Friendship stores one row per unordered user pair. The pair is
// normalized on write (UserLowID < UserHighID) and guarded by a composite
// unique index, so (A,B) and (B,A) can never coexist. Direction is kept
// in RequestedBy: while status is "sent", RequestedBy is the requester
// and the other endpoint is the recipient.
type Friendship struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserLowID   uint      `gorm:"uniqueIndex:idx_friendship_pair;not null" json:"user_low_id"`
	UserHighID  uint      `gorm:"uniqueIndex:idx_friendship_pair;not null" json:"user_high_id"`
	RequestedBy uint      `gorm:"not null" json:"requested_by"`
	Status      string    `gorm:"size:20;default:sent;not null" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Friendship) TableName() string { return "friendships" }

// NormalizePair orders a user pair so the smaller id comes first.
func NormalizePair(a, b uint) (low, high uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// Other returns the endpoint of the pair that is not userID.
func (f *Friendship) Other(userID uint) uint {
	if f.UserLowID == userID {
		return f.UserHighID
	}
	return f.UserLowID
}

// Recipient returns the endpoint that did not send the request.
func (f *Friendship) Recipient() uint {
	return f.Other(f.RequestedBy)
}
