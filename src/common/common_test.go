package common

import (
	"cbe/src/db"
	"cbe/src/models"
	"fmt"
	"log"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB points the shared handle at a throwaway sqlite database. One open
// connection keeps concurrent writers serialized.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(t.TempDir(), "test.db"))
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("could not open test database: %s", err.Error())
	}
	inner, err := d.DB()
	if err != nil {
		t.Fatalf("could not access inner db instance: %s", err.Error())
	}
	inner.SetMaxOpenConns(1)
	if err := d.AutoMigrate(
		&models.Unit{},
		&models.BlockedDate{},
		&models.SyncRun{},
		&models.BookingRequest{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("error migration: %s", err.Error())
	}
	db.NewDB(d)
	return d
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	mockdb, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockdb}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock
}

func createTestUnit(t *testing.T, d *gorm.DB, rate float64, calendarURL string) *models.Unit {
	t.Helper()
	unit := models.Unit{
		Name:        "Seaside Studio",
		NightlyRate: rate,
		CalendarURL: calendarURL,
	}
	if err := d.Create(&unit).Error; err != nil {
		t.Fatalf("could not create unit: %s", err.Error())
	}
	return &unit
}
