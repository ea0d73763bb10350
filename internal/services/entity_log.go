package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ourpaint/ourpainthub/backend/internal/models"
	"github.com/ourpaint/ourpainthub/backend/pkg/logger"
)

// Entity audit sink. Every state-changing operation on a tracked entity
// reports here; failures are logged and swallowed so that audit trouble
// never breaks the operation itself.

var (
	entityDB    *gorm.DB
	entityQueue TaskQueue
)

// InitEntityAudit wires the audit sink to a database and a task queue.
// When the queue is a SyncQueue its processor is bound to the direct
// database insert; an async queue needs a Worker with the same processor.
func InitEntityAudit(db *gorm.DB, queue TaskQueue) {
	entityDB = db
	entityQueue = queue
	if sq, ok := queue.(*SyncQueue); ok {
		sq.SetProcessor(ProcessEntityLogTask)
	}
}

// ProcessEntityLogTask persists one audit record. Used as the processor
// for both the sync queue and the async worker.
func ProcessEntityLogTask(_ context.Context, task *EntityLogTask) error {
	if entityDB == nil {
		return nil
	}
	record := &models.EntityLog{
		Action:     task.Action,
		UserID:     task.UserID,
		EntityType: task.EntityType,
		EntityID:   task.EntityID,
		CreatedAt:  task.OccurredAt,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	return entityDB.Create(record).Error
}

// RecordEntity reports one audit event. Fire-and-forget: enqueue errors
// are logged, never returned.
func RecordEntity(action string, userID uint, entityType string, entityID int64) {
	if entityQueue == nil {
		return
	}
	task := &EntityLogTask{
		Action:     action,
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		OccurredAt: time.Now(),
	}
	if err := entityQueue.Enqueue(task); err != nil {
		logger.Warnf("[EntityAudit] Failed to record %s %s/%d: %v", action, entityType, entityID, err)
	}
}

// EntityLogService reads the audit trail for the admin API.
type EntityLogService struct {
	db *gorm.DB
}

func NewEntityLogService(db *gorm.DB) *EntityLogService {
	return &EntityLogService{db: db}
}

type EntityLogListRequest struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	Action     string `form:"action"`
	EntityType string `form:"entity_type"`
	UserID     *uint  `form:"user_id"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
}

type EntityLogListResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Items    []models.EntityLog `json:"items"`
}

func (s *EntityLogService) List(req *EntityLogListRequest) (*EntityLogListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	var logs []models.EntityLog
	var total int64

	query := s.db.Model(&models.EntityLog{})
	if req.Action != "" {
		query = query.Where("action = ?", req.Action)
	}
	if req.EntityType != "" {
		query = query.Where("entity_type = ?", req.EntityType)
	}
	if req.UserID != nil {
		query = query.Where("user_id = ?", *req.UserID)
	}
	if req.StartDate != "" {
		query = query.Where("created_at >= ?", req.StartDate)
	}
	if req.EndDate != "" {
		query = query.Where("created_at <= ?", req.EndDate+" 23:59:59")
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("id DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	return &EntityLogListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    logs,
	}, nil
}
