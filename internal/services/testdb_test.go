package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ourpaint/ourpainthub/backend/internal/models"
	"github.com/ourpaint/ourpainthub/backend/internal/utils"
)

// newTestDB opens a fresh in-memory database with the full schema and
// wires the entity audit sink to it in sync mode.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	InitEntityAudit(db, NewSyncQueue())
	t.Cleanup(func() {
		entityDB = nil
		entityQueue = nil
	})
	return db
}

var testUserSeq int

// createTestUser inserts a user with a profile and returns it.
func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	if email == "" {
		testUserSeq++
		email = fmt.Sprintf("user%d@example.com", testUserSeq)
	}
	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{Email: email, Password: hash, Role: "user"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	profile := models.UserProfile{UserID: user.ID, Nickname: email}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return &user
}

// countRows counts rows of a model matching the condition.
func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return count
}
