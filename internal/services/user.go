package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ourpaint/ourpainthub/backend/internal/models"
	"github.com/ourpaint/ourpainthub/backend/pkg/apperr"
)

// minProfileAge is the youngest date of birth a profile may declare.
const minProfileAgeYears = 7

// UserService covers the member directory and profile management.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UserSummary is one row of the member directory.
type UserSummary struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// ProfileView is the full profile of one user.
type ProfileView struct {
	UserID      uint       `json:"user_id"`
	Email       string     `json:"email"`
	Nickname    string     `json:"nickname"`
	Bio         string     `json:"bio"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	HasAvatar   bool       `json:"has_avatar"`
}

// List returns all users except excludeID, optionally filtered by a
// case-insensitive email substring.
func (s *UserService) List(excludeID uint, search string) ([]UserSummary, error) {
	query := s.db.Table("users").
		Select("users.id, users.email, user_profiles.nickname").
		Joins("LEFT JOIN user_profiles ON user_profiles.user_id = users.id").
		Where("users.id <> ?", excludeID)

	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(users.email) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var result []UserSummary
	if err := query.Order("users.id").Scan(&result).Error; err != nil {
		return nil, apperr.Internal("failed to list users")
	}
	if result == nil {
		result = []UserSummary{}
	}
	return result, nil
}

func (s *UserService) getProfile(userID uint) (*models.User, *models.UserProfile, error) {
	var user models.User
	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, nil, apperr.Internal("failed to load user")
	}

	var profile models.UserProfile
	err = s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Registration always creates a profile; recover for rows that
		// predate that rule.
		profile = models.UserProfile{
			UserID:   userID,
			Nickname: user.Email[:strings.Index(user.Email, "@")],
		}
		if err := s.db.Create(&profile).Error; err != nil {
			return nil, nil, apperr.Internal("failed to create user profile")
		}
	} else if err != nil {
		return nil, nil, apperr.Internal("failed to load user profile")
	}
	return &user, &profile, nil
}

// GetProfile returns the profile of userID.
func (s *UserService) GetProfile(userID uint) (*ProfileView, error) {
	user, profile, err := s.getProfile(userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		UserID:      user.ID,
		Email:       user.Email,
		Nickname:    profile.Nickname,
		Bio:         profile.Bio,
		DateOfBirth: profile.DateOfBirth,
		HasAvatar:   len(profile.Avatar) > 0,
	}, nil
}

type UpdateProfileRequest struct {
	Nickname    *string
	Bio         *string
	DateOfBirth *time.Time
	Avatar      []byte
}

// UpdateProfile applies a partial profile update for userID.
func (s *UserService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*ProfileView, error) {
	user, profile, err := s.getProfile(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Nickname != nil {
		nickname := strings.TrimSpace(*req.Nickname)
		if nickname == "" {
			return nil, apperr.Validation("nickname must not be empty")
		}
		if len(nickname) > 255 {
			return nil, apperr.Validation("nickname must be at most 255 characters")
		}
		updates["nickname"] = nickname
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.DateOfBirth != nil {
		if req.DateOfBirth.After(time.Now().AddDate(-minProfileAgeYears, 0, 0)) {
			return nil, apperr.Validation("date of birth is too recent")
		}
		updates["date_of_birth"] = *req.DateOfBirth
	}
	if len(req.Avatar) > 0 {
		updates["avatar"] = req.Avatar
	}

	if len(updates) > 0 {
		if err := s.db.Model(profile).Updates(updates).Error; err != nil {
			return nil, apperr.Internal("failed to update profile")
		}
		RecordEntity(models.LogActionChange, userID, models.EntityUserProfile, int64(profile.ID))
	}

	return s.profileView(user)
}

func (s *UserService) profileView(user *models.User) (*ProfileView, error) {
	var profile models.UserProfile
	if err := s.db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		return nil, apperr.Internal("failed to load user profile")
	}
	return &ProfileView{
		UserID:      user.ID,
		Email:       user.Email,
		Nickname:    profile.Nickname,
		Bio:         profile.Bio,
		DateOfBirth: profile.DateOfBirth,
		HasAvatar:   len(profile.Avatar) > 0,
	}, nil
}

// Avatar returns the raw avatar bytes and their sniffed content type.
func (s *UserService) Avatar(userID uint) ([]byte, string, error) {
	_, profile, err := s.getProfile(userID)
	if err != nil {
		return nil, "", err
	}
	if len(profile.Avatar) == 0 {
		return nil, "", apperr.NotFound("avatar not set")
	}
	return profile.Avatar, profile.AvatarMIME(), nil
}

// SetRole changes a user's role. Admin only; tracked in the audit log.
func (s *UserService) SetRole(adminID, userID uint, role string) error {
	if role != "admin" && role != "user" {
		return apperr.Validation("role must be admin or user")
	}

	var admin models.User
	if err := s.db.First(&admin, adminID).Error; err != nil {
		return apperr.NotFound("user not found")
	}
	if !admin.IsAdmin() {
		return apperr.Forbidden("admin access required")
	}

	var user models.User
	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return apperr.Internal("failed to load user")
	}

	if user.Role == role {
		return nil
	}
	if err := s.db.Model(&user).Update("role", role).Error; err != nil {
		return apperr.Internal("failed to update role")
	}
	RecordEntity(models.LogActionChange, adminID, models.EntityRole, int64(userID))
	return nil
}
