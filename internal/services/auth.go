package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ourpaint/ourpainthub/backend/internal/config"
	"github.com/ourpaint/ourpainthub/backend/internal/models"
	"github.com/ourpaint/ourpainthub/backend/internal/utils"
	"github.com/ourpaint/ourpainthub/backend/pkg/apperr"
)

const refreshTokenExpireHours = 720 // 30 days

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
	User            *models.User
}

type RefreshResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
}

// Register creates a user with the default role and a profile whose
// nickname starts as the email local part.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !models.ValidEmail(email) {
		return nil, apperr.Validation("invalid email address")
	}
	if len(req.Password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Internal("failed to check email")
	}
	if count > 0 {
		return nil, apperr.Conflict("email is already registered")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password")
	}

	user := models.User{
		Email:    email,
		Password: hash,
		Role:     "user",
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("email is already registered")
			}
			return apperr.Internal("failed to create user")
		}
		profile := models.UserProfile{
			UserID:   user.ID,
			Nickname: email[:strings.Index(email, "@")],
		}
		if err := tx.Create(&profile).Error; err != nil {
			return apperr.Internal("failed to create user profile")
		}
		return nil
	})
	if txErr != nil {
		var appErr *apperr.Error
		if errors.As(txErr, &appErr) {
			return nil, appErr
		}
		return nil, apperr.Internal("failed to register")
	}

	return &user, nil
}

// Login authenticates by email and password and issues a token pair.
func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.InvalidArgument("invalid email or password")
	}
	if err != nil {
		return nil, apperr.Internal("failed to look up user")
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, apperr.InvalidArgument("invalid email or password")
	}

	accessHours := s.jwtConfig.ExpireHour
	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, accessHours)
	if err != nil {
		return nil, apperr.Internal("failed to issue token")
	}

	refreshToken, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, apperr.Internal("failed to issue refresh token")
	}

	refreshExpireAt := time.Now().Add(refreshTokenExpireHours * time.Hour)
	refreshRecord := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   refreshHash,
		ExpiresAt:   refreshExpireAt,
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}
	if err := s.db.Create(&refreshRecord).Error; err != nil {
		return nil, apperr.Internal("failed to store refresh token")
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.Save(&user)

	return &LoginResult{
		AccessToken:     token,
		AccessExpireAt:  now.Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    refreshToken,
		RefreshExpireAt: refreshExpireAt,
		User:            &user,
	}, nil
}

// Refresh rotates a refresh token: the old one is revoked and linked to
// its replacement, and a fresh access token is issued.
func (s *AuthService) Refresh(refreshToken, clientIP, userAgent string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, apperr.InvalidArgument("refresh token required")
	}

	hash := hashRefreshToken(refreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ?", hash).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.InvalidArgument("invalid refresh token")
		}
		return nil, apperr.Internal("failed to look up refresh token")
	}

	if !stored.Usable(time.Now()) {
		return nil, apperr.InvalidArgument("refresh token expired or revoked")
	}

	var user models.User
	if err := s.db.First(&user, stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load user")
	}

	accessHours := s.jwtConfig.ExpireHour
	newAccessToken, err := utils.GenerateToken(user.ID, user.Email, user.Role, accessHours)
	if err != nil {
		return nil, apperr.Internal("failed to issue token")
	}

	newRefreshToken, newRefreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, apperr.Internal("failed to issue refresh token")
	}

	now := time.Now()
	newRefresh := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   newRefreshHash,
		ExpiresAt:   now.Add(refreshTokenExpireHours * time.Hour),
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newRefresh).Error; err != nil {
			return err
		}
		return tx.Model(&stored).Updates(map[string]interface{}{
			"revoked_at":           now,
			"replaced_by_token_id": newRefresh.ID,
		}).Error
	}); err != nil {
		return nil, apperr.Internal("failed to rotate refresh token")
	}

	return &RefreshResult{
		AccessToken:     newAccessToken,
		AccessExpireAt:  now.Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    newRefreshToken,
		RefreshExpireAt: newRefresh.ExpiresAt,
	}, nil
}

// RevokeRefreshToken invalidates a refresh token on logout. Unknown
// tokens are ignored.
func (s *AuthService) RevokeRefreshToken(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	hash := hashRefreshToken(refreshToken)
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", time.Now()).Error
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (s *AuthService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal("failed to load user")
	}
	if !utils.CheckPassword(req.OldPassword, user.Password) {
		return apperr.InvalidArgument("old password is incorrect")
	}
	if len(req.NewPassword) < 6 {
		return apperr.Validation("password must be at least 6 characters")
	}
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return apperr.Internal("failed to hash password")
	}
	return s.db.Model(&user).Update("password", hash).Error
}

func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load user")
	}
	return &user, nil
}

// CreateAdminIfNotExists seeds the initial admin account on first boot.
func (s *AuthService) CreateAdminIfNotExists() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword("admin123")
	if err != nil {
		return err
	}
	admin := models.User{
		Email:    "admin@ourpainthub.local",
		Password: hash,
		Role:     "admin",
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserProfile{
			UserID:   admin.ID,
			Nickname: "admin",
		}).Error
	})
}

func generateRefreshToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(randomBytes)
	tokenHash = hashRefreshToken(token)
	return token, tokenHash, nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
