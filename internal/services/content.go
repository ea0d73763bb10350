package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ourpaint/ourpainthub/backend/internal/models"
	"github.com/ourpaint/ourpainthub/backend/pkg/apperr"
)

// ContentService manages the admin-curated site content: news,
// documentation, FAQ and media files.
type ContentService struct {
	db *gorm.DB
}

func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{db: db}
}

func (s *ContentService) requireAdmin(userID uint) error {
	var user models.User
	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return apperr.Internal("failed to load user")
	}
	if !user.IsAdmin() {
		return apperr.Forbidden("admin access required")
	}
	return nil
}

// --- News ---

func (s *ContentService) ListNews() ([]models.News, error) {
	var items []models.News
	if err := s.db.Order("id DESC").Find(&items).Error; err != nil {
		return nil, apperr.Internal("failed to list news")
	}
	return items, nil
}

func (s *ContentService) CreateNews(adminID uint, title, content string) (*models.News, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("title and content are required")
	}
	item := models.News{Title: title, Content: content, AuthorID: adminID}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, apperr.Internal("failed to create news")
	}
	RecordEntity(models.LogActionAdd, adminID, models.EntityDocumentation, int64(item.ID))
	return &item, nil
}

func (s *ContentService) UpdateNews(adminID, newsID uint, title, content *string) (*models.News, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}
	var item models.News
	err := s.db.First(&item, newsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("news not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load news")
	}

	updates := map[string]interface{}{}
	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return nil, apperr.Validation("title must not be empty")
		}
		updates["title"] = strings.TrimSpace(*title)
	}
	if content != nil {
		updates["content"] = *content
	}
	if len(updates) > 0 {
		if err := s.db.Model(&item).Updates(updates).Error; err != nil {
			return nil, apperr.Internal("failed to update news")
		}
		RecordEntity(models.LogActionChange, adminID, models.EntityDocumentation, int64(item.ID))
	}
	return &item, nil
}

func (s *ContentService) DeleteNews(adminID, newsID uint) error {
	if err := s.requireAdmin(adminID); err != nil {
		return err
	}
	result := s.db.Delete(&models.News{}, newsID)
	if result.Error != nil {
		return apperr.Internal("failed to delete news")
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("news not found")
	}
	RecordEntity(models.LogActionDelete, adminID, models.EntityDocumentation, int64(newsID))
	return nil
}

// --- Documentation ---

func (s *ContentService) ListDocumentation(category string) ([]models.Documentation, error) {
	query := s.db.Order("id DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var items []models.Documentation
	if err := query.Find(&items).Error; err != nil {
		return nil, apperr.Internal("failed to list documentation")
	}
	return items, nil
}

func (s *ContentService) GetDocumentation(id uint) (*models.Documentation, error) {
	var item models.Documentation
	err := s.db.First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("documentation not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load documentation")
	}
	return &item, nil
}

func (s *ContentService) CreateDocumentation(adminID uint, title, content, category string) (*models.Documentation, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("title and content are required")
	}
	if category = strings.TrimSpace(category); category == "" {
		category = "general"
	}
	item := models.Documentation{Title: title, Content: content, Category: category, AuthorID: adminID}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, apperr.Internal("failed to create documentation")
	}
	RecordEntity(models.LogActionAdd, adminID, models.EntityDocumentation, int64(item.ID))
	return &item, nil
}

func (s *ContentService) UpdateDocumentation(adminID, docID uint, title, content, category *string) (*models.Documentation, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}
	item, err := s.GetDocumentation(docID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return nil, apperr.Validation("title must not be empty")
		}
		updates["title"] = strings.TrimSpace(*title)
	}
	if content != nil {
		updates["content"] = *content
	}
	if category != nil && strings.TrimSpace(*category) != "" {
		updates["category"] = strings.TrimSpace(*category)
	}
	if len(updates) > 0 {
		if err := s.db.Model(item).Updates(updates).Error; err != nil {
			return nil, apperr.Internal("failed to update documentation")
		}
		RecordEntity(models.LogActionChange, adminID, models.EntityDocumentation, int64(item.ID))
	}
	return item, nil
}

func (s *ContentService) DeleteDocumentation(adminID, docID uint) error {
	if err := s.requireAdmin(adminID); err != nil {
		return err
	}
	result := s.db.Delete(&models.Documentation{}, docID)
	if result.Error != nil {
		return apperr.Internal("failed to delete documentation")
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("documentation not found")
	}
	RecordEntity(models.LogActionDelete, adminID, models.EntityDocumentation, int64(docID))
	return nil
}

// --- FAQ ---

// ListFAQ returns answered questions for everyone; admins also see the
// unanswered queue.
func (s *ContentService) ListFAQ(viewerID uint) ([]models.FAQ, error) {
	var viewer models.User
	if err := s.db.First(&viewer, viewerID).Error; err != nil {
		return nil, apperr.NotFound("user not found")
	}

	query := s.db.Order("id DESC")
	if !viewer.IsAdmin() {
		query = query.Where("answered = ?", true)
	}
	var items []models.FAQ
	if err := query.Find(&items).Error; err != nil {
		return nil, apperr.Internal("failed to list faq")
	}
	return items, nil
}

func (s *ContentService) AskQuestion(userID uint, question string) (*models.FAQ, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, apperr.NotFound("user not found")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperr.Validation("question is required")
	}
	item := models.FAQ{Question: question, UserID: userID}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, apperr.Internal("failed to create question")
	}
	RecordEntity(models.LogActionAdd, userID, models.EntityFAQ, int64(item.ID))
	return &item, nil
}

func (s *ContentService) AnswerQuestion(adminID, faqID uint, answer string) (*models.FAQ, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, apperr.Validation("answer is required")
	}

	var item models.FAQ
	err := s.db.First(&item, faqID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("question not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load question")
	}

	if err := s.db.Model(&item).Updates(map[string]interface{}{
		"answered":    true,
		"answer_text": answer,
		"admin_id":    adminID,
	}).Error; err != nil {
		return nil, apperr.Internal("failed to answer question")
	}
	RecordEntity(models.LogActionChange, adminID, models.EntityFAQ, int64(item.ID))
	return &item, nil
}

func (s *ContentService) DeleteQuestion(adminID, faqID uint) error {
	if err := s.requireAdmin(adminID); err != nil {
		return err
	}
	result := s.db.Delete(&models.FAQ{}, faqID)
	if result.Error != nil {
		return apperr.Internal("failed to delete question")
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("question not found")
	}
	RecordEntity(models.LogActionDelete, adminID, models.EntityFAQ, int64(faqID))
	return nil
}

// --- Media ---

// MediaItem joins a media descriptor with its file id for listings.
type MediaItem struct {
	MetaID      uint   `json:"meta_id"`
	MediaID     *uint  `json:"media_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

func (s *ContentService) ListMedia(mediaType string) ([]MediaItem, error) {
	if mediaType != "" && !models.ValidMediaType(mediaType) {
		return nil, apperr.Validation("unknown media type")
	}

	query := s.db.Table("media_meta").
		Select("media_meta.id AS meta_id, media_meta.media_id, media_meta.name, media_meta.description, media_files.type").
		Joins("LEFT JOIN media_files ON media_files.id = media_meta.media_id").
		Order("media_meta.id DESC")
	if mediaType != "" {
		query = query.Where("media_files.type = ?", mediaType)
	}

	var items []MediaItem
	if err := query.Scan(&items).Error; err != nil {
		return nil, apperr.Internal("failed to list media")
	}
	if items == nil {
		items = []MediaItem{}
	}
	return items, nil
}

func (s *ContentService) UploadMedia(adminID uint, mediaType, name, description string, data []byte) (*MediaItem, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}
	if !models.ValidMediaType(mediaType) {
		return nil, apperr.Validation("unknown media type")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("media name is required")
	}
	if len(data) == 0 {
		return nil, apperr.Validation("media file is required")
	}

	file := models.MediaFile{Type: mediaType, Data: data}
	meta := models.MediaMeta{AdminID: adminID, Name: name, Description: description}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&file).Error; err != nil {
			return err
		}
		meta.MediaID = &file.ID
		return tx.Create(&meta).Error
	})
	if txErr != nil {
		return nil, apperr.Internal("failed to upload media")
	}

	RecordEntity(models.LogActionAdd, adminID, models.EntityMediaFiles, int64(file.ID))
	RecordEntity(models.LogActionAdd, adminID, models.EntityMediaMeta, int64(meta.ID))
	return &MediaItem{
		MetaID:      meta.ID,
		MediaID:     meta.MediaID,
		Name:        meta.Name,
		Description: meta.Description,
		Type:        file.Type,
	}, nil
}

func (s *ContentService) DownloadMedia(mediaID uint) (*models.MediaFile, *models.MediaMeta, error) {
	var file models.MediaFile
	err := s.db.First(&file, mediaID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperr.NotFound("media not found")
	}
	if err != nil {
		return nil, nil, apperr.Internal("failed to load media")
	}

	var meta models.MediaMeta
	if err := s.db.Where("media_id = ?", mediaID).First(&meta).Error; err != nil {
		return nil, nil, apperr.NotFound("media not found")
	}
	return &file, &meta, nil
}

func (s *ContentService) DeleteMedia(adminID, metaID uint) error {
	if err := s.requireAdmin(adminID); err != nil {
		return err
	}
	var meta models.MediaMeta
	err := s.db.First(&meta, metaID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("media not found")
	}
	if err != nil {
		return apperr.Internal("failed to load media")
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if meta.MediaID != nil {
			if err := tx.Delete(&models.MediaFile{}, *meta.MediaID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&meta).Error
	})
	if txErr != nil {
		return apperr.Internal("failed to delete media")
	}

	if meta.MediaID != nil {
		RecordEntity(models.LogActionDelete, adminID, models.EntityMediaFiles, int64(*meta.MediaID))
	}
	RecordEntity(models.LogActionDelete, adminID, models.EntityMediaMeta, int64(metaID))
	return nil
}
