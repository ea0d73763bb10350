package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ourpaint/ourpainthub/backend/internal/models"
	"github.com/ourpaint/ourpainthub/backend/pkg/apperr"
)

// FriendshipService manages the friendship graph: one row per unordered
// user pair, normalized to (low, high) on every write.
type FriendshipService struct {
	db *gorm.DB
}

func NewFriendshipService(db *gorm.DB) *FriendshipService {
	return &FriendshipService{db: db}
}

// friendshipEntityID derives a stable audit identifier from the pair
// itself, so both directions of the same relationship map to one id.
func friendshipEntityID(a, b uint) int64 {
	low, high := models.NormalizePair(a, b)
	return int64(low)*1_000_000 + int64(high)
}

// FriendSummary is one row in a friend or request listing.
type FriendSummary struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

func (s *FriendshipService) userExists(id uint) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Internal("failed to look up user")
	}
	if count == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func pairQuery(db *gorm.DB, a, b uint) *gorm.DB {
	low, high := models.NormalizePair(a, b)
	return db.Where("user_low_id = ? AND user_high_id = ?", low, high)
}

// RequestOrAccept sends a friend request from requester to target, or,
// when a pending request from target already exists, accepts it. Returns
// the resulting status ("sent" or "accepted").
func (s *FriendshipService) RequestOrAccept(requesterID, targetID uint) (string, error) {
	if requesterID == targetID {
		return "", apperr.InvalidArgument("cannot send a friend request to yourself")
	}
	if err := s.userExists(requesterID); err != nil {
		return "", err
	}
	if err := s.userExists(targetID); err != nil {
		return "", err
	}

	var result string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Friendship
		err := pairQuery(tx, requesterID, targetID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			low, high := models.NormalizePair(requesterID, targetID)
			row := models.Friendship{
				UserLowID:   low,
				UserHighID:  high,
				RequestedBy: requesterID,
				Status:      models.FriendshipSent,
			}
			if err := tx.Create(&row).Error; err != nil {
				// The pair index rejects a concurrent duplicate.
				if isUniqueViolation(err) {
					return apperr.Conflict("friend request already exists")
				}
				return apperr.Internal("failed to create friend request")
			}
			result = models.FriendshipSent
			return nil
		}
		if err != nil {
			return apperr.Internal("failed to look up friendship")
		}

		switch existing.Status {
		case models.FriendshipSent:
			if existing.RequestedBy == requesterID {
				return apperr.Conflict("friend request already sent")
			}
			if err := tx.Model(&existing).Update("status", models.FriendshipAccepted).Error; err != nil {
				return apperr.Internal("failed to accept friend request")
			}
			result = models.FriendshipAccepted
			return nil
		case models.FriendshipAccepted:
			return apperr.Conflict("already friends")
		case models.FriendshipBlocked:
			return apperr.Forbidden("this relationship is blocked")
		default:
			return apperr.Conflict("friend request already exists")
		}
	})
	if err != nil {
		return "", err
	}

	entityID := friendshipEntityID(requesterID, targetID)
	if result == models.FriendshipSent {
		RecordEntity(models.LogActionAdd, requesterID, models.EntityFriendship, entityID)
	} else {
		RecordEntity(models.LogActionChange, requesterID, models.EntityFriendship, entityID)
	}
	return result, nil
}

// Respond lets the recipient of a pending request accept or decline it.
// Accepting keeps the row with status accepted; declining deletes it.
func (s *FriendshipService) Respond(recipientID, requesterID uint, action string) (string, error) {
	action = strings.ToLower(strings.TrimSpace(action))
	if action != "accept" && action != "decline" {
		return "", apperr.InvalidArgument("action must be accept or decline")
	}
	if recipientID == requesterID {
		return "", apperr.InvalidArgument("cannot respond to your own request")
	}
	if err := s.userExists(recipientID); err != nil {
		return "", err
	}
	if err := s.userExists(requesterID); err != nil {
		return "", err
	}

	var row models.Friendship
	err := pairQuery(s.db, recipientID, requesterID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.NotFound("friend request not found")
	}
	if err != nil {
		return "", apperr.Internal("failed to look up friendship")
	}
	if row.Status != models.FriendshipSent || row.RequestedBy != requesterID {
		return "", apperr.NotFound("friend request not found")
	}

	entityID := friendshipEntityID(recipientID, requesterID)
	if action == "accept" {
		if err := s.db.Model(&row).Update("status", models.FriendshipAccepted).Error; err != nil {
			return "", apperr.Internal("failed to accept friend request")
		}
		RecordEntity(models.LogActionChange, recipientID, models.EntityFriendship, entityID)
		return models.FriendshipAccepted, nil
	}

	if err := s.db.Delete(&row).Error; err != nil {
		return "", apperr.Internal("failed to decline friend request")
	}
	RecordEntity(models.LogActionDelete, recipientID, models.EntityFriendship, entityID)
	return "declined", nil
}

// Cancel withdraws a pending request previously sent by requesterID.
func (s *FriendshipService) Cancel(requesterID, recipientID uint) error {
	if requesterID == recipientID {
		return apperr.InvalidArgument("cannot cancel a request to yourself")
	}
	if err := s.userExists(requesterID); err != nil {
		return err
	}
	if err := s.userExists(recipientID); err != nil {
		return err
	}

	var row models.Friendship
	err := pairQuery(s.db, requesterID, recipientID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("friend request not found")
	}
	if err != nil {
		return apperr.Internal("failed to look up friendship")
	}
	// Direction matters: only the sender of a still-pending request may cancel.
	if row.Status != models.FriendshipSent || row.RequestedBy != requesterID {
		return apperr.NotFound("friend request not found")
	}

	if err := s.db.Delete(&row).Error; err != nil {
		return apperr.Internal("failed to cancel friend request")
	}
	RecordEntity(models.LogActionDelete, requesterID, models.EntityFriendship, friendshipEntityID(requesterID, recipientID))
	return nil
}

// Unfriend removes an accepted friendship between the two users.
// Either side may initiate.
func (s *FriendshipService) Unfriend(actorID, otherID uint) error {
	if actorID == otherID {
		return apperr.InvalidArgument("cannot unfriend yourself")
	}
	if err := s.userExists(actorID); err != nil {
		return err
	}
	if err := s.userExists(otherID); err != nil {
		return err
	}

	var row models.Friendship
	err := pairQuery(s.db, actorID, otherID).
		Where("status = ?", models.FriendshipAccepted).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("friendship not found")
	}
	if err != nil {
		return apperr.Internal("failed to look up friendship")
	}

	if err := s.db.Delete(&row).Error; err != nil {
		return apperr.Internal("failed to remove friendship")
	}
	RecordEntity(models.LogActionDelete, actorID, models.EntityFriendship, friendshipEntityID(actorID, otherID))
	return nil
}

// AreFriends reports whether the two users have an accepted friendship.
func (s *FriendshipService) AreFriends(a, b uint) (bool, error) {
	if a == b {
		return false, nil
	}
	var count int64
	err := pairQuery(s.db.Model(&models.Friendship{}), a, b).
		Where("status = ?", models.FriendshipAccepted).
		Count(&count).Error
	if err != nil {
		return false, apperr.Internal("failed to look up friendship")
	}
	return count > 0, nil
}

// ListFriends returns the accepted friends of userID, ordered by user id.
func (s *FriendshipService) ListFriends(userID uint) ([]FriendSummary, error) {
	if err := s.userExists(userID); err != nil {
		return nil, err
	}

	var rows []models.Friendship
	err := s.db.
		Where("(user_low_id = ? OR user_high_id = ?) AND status = ?", userID, userID, models.FriendshipAccepted).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Internal("failed to list friends")
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Other(userID))
	}
	return s.summaries(ids)
}

// ListIncoming returns users whose pending requests await userID's answer.
func (s *FriendshipService) ListIncoming(userID uint) ([]FriendSummary, error) {
	if err := s.userExists(userID); err != nil {
		return nil, err
	}

	var rows []models.Friendship
	err := s.db.
		Where("(user_low_id = ? OR user_high_id = ?) AND status = ? AND requested_by <> ?",
			userID, userID, models.FriendshipSent, userID).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Internal("failed to list friend requests")
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.RequestedBy)
	}
	return s.summaries(ids)
}

// ListOutgoing returns users to whom userID has a pending request.
func (s *FriendshipService) ListOutgoing(userID uint) ([]FriendSummary, error) {
	if err := s.userExists(userID); err != nil {
		return nil, err
	}

	var rows []models.Friendship
	err := s.db.
		Where("requested_by = ? AND status = ?", userID, models.FriendshipSent).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Internal("failed to list sent requests")
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Other(userID))
	}
	return s.summaries(ids)
}

func (s *FriendshipService) summaries(ids []uint) ([]FriendSummary, error) {
	result := make([]FriendSummary, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	err := s.db.Table("users").
		Select("users.id, users.email, user_profiles.nickname").
		Joins("LEFT JOIN user_profiles ON user_profiles.user_id = users.id").
		Where("users.id IN ?", ids).
		Order("users.id").
		Scan(&result).Error
	if err != nil {
		return nil, apperr.Internal("failed to load user summaries")
	}
	return result, nil
}

// isUniqueViolation matches constraint errors across the supported drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
