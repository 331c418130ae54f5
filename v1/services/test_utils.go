package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestArgon2Params keeps hashing fast in tests
var TestArgon2Params = &Argon2Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// SetupSQLiteTestDB creates an in-memory SQLite database for testing
func SetupSQLiteTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to SQLite test database: %v", err)
	}

	// Every pooled connection to :memory: is a separate database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get SQLite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// Auto-migrate all models
	err = db.AutoMigrate(
		&models.Member{},
		&models.Profile{},
		&models.Connection{},
		&models.Notification{},
		&models.EmailJob{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	// Clean up test data before each test
	CleanupTestData(t, db)

	return db
}

// CleanupTestData removes all test data from the database
// Exported for use in handler tests
func CleanupTestData(t *testing.T, db *gorm.DB) {
	for _, table := range []string{"email_jobs", "notifications", "connections", "profiles", "members"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Logf("Warning: failed to cleanup %s: %v", table, err)
		}
	}
}

// RequireTestDB sets up a test database and fails the test if it cannot be established.
//
// Usage:
//
//	db := RequireTestDB(t)
//	// No need to check for nil - test will fail if DB setup fails
func RequireTestDB(t *testing.T) *gorm.DB {
	db := SetupSQLiteTestDB(t)
	if db == nil {
		t.Fatal("Test database setup failed - cannot proceed with test")
	}
	return db
}

// SetupMockDB opens a gorm handle on the postgres dialect backed by sqlmock
func SetupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open gorm with sqlmock: %v", err)
	}

	return db, mock, func() { _ = sqlDB.Close() }
}

// CreateTestMember inserts a member with a throwaway password hash
func CreateTestMember(t *testing.T, db *gorm.DB, email string, role models.Role, status models.MemberStatus) *models.Member {
	member := &models.Member{
		MemberID:     models.MemberIDPrefix + uuid.New().String(),
		Email:        email,
		PasswordHash: "unused",
		FullName:     email,
		Role:         role,
		Status:       status,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}
	return member
}

// CreateTestProfile inserts a profile for memberID
func CreateTestProfile(t *testing.T, db *gorm.DB, memberID, fullName string, gender models.Gender, status models.ProfileStatus) *models.Profile {
	profile := &models.Profile{
		ProfileID: models.ProfileIDPrefix + uuid.New().String(),
		MemberID:  memberID,
		Details: models.ProfileDetails{
			FullName: fullName,
			Gender:   gender,
			Location: "Chennai",
		},
		Status: status,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}
	return profile
}

// CreateTestConnection inserts a connection in the given state. Approved
// connections get a window starting at approvedAt.
func CreateTestConnection(t *testing.T, db *gorm.DB, senderID, receiverID string, status models.ConnectionStatus, approvedAt time.Time) *models.Connection {
	connection := models.NewConnection(models.ConnectionIDPrefix+uuid.New().String(), senderID, receiverID, approvedAt)
	switch status {
	case models.ConnectionStatusApproved:
		connection.Approve(approvedAt)
	case models.ConnectionStatusRejected:
		connection.Status = models.ConnectionStatusRejected
	}
	if err := db.Create(connection).Error; err != nil {
		t.Fatalf("Failed to create test connection: %v", err)
	}
	return connection
}
