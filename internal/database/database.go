package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/arnold/smartgoals-api/internal/config"
	"github.com/arnold/smartgoals-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	db, err := Open(cfg.DatabaseURL, cfg.IsProduction())
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open picks PostgreSQL for postgres URLs and SQLite for anything else.
func Open(url string, production bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(url, "postgres") {
		dialector = postgres.Open(url)
	} else {
		dialector = sqlite.Open(url)
	}

	level := logger.Info
	if production {
		level = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if dialector.Name() == "postgres" {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// Close releases the pool behind DB.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func Migrate() error {
	return DB.AutoMigrate(
		&models.User{},
		&models.UserSettings{},
		&models.Goal{},
		&models.WeeklyGoal{},
		&models.Task{},
		&models.Activity{},
		&models.Notification{},
		&models.DeviceToken{},
	)
}
