package models

import (
	"fmt"
	"time"

	"github.com/luneclub/lune/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the configured database without touching the global DB.
// TranslateError lets callers match gorm.ErrDuplicatedKey on unique index
// violations regardless of driver.
func Open(cfg *config.DatabaseConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

func InitDB(cfg *config.DatabaseConfig) error {
	db, err := Open(cfg, logger.Warn)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// AllModels lists every persisted type in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Member{},
		&MemberPhoto{},
		&Cast{},
		&CastPhoto{},
		&MeetingRequest{},
		&Bookmark{},
		&AdminActionLog{},
		&SystemConfig{},
		&SystemLog{},
		&RefreshToken{},
		&SchedulerLock{},
	}
}

func AutoMigrate() error {
	return Migrate(DB)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default runtime settings if missing.
func SeedDefaultData() error {
	return SeedSystemConfigs(DB)
}

func SeedSystemConfigs(db *gorm.DB) error {
	defaultConfigs := []SystemConfig{
		{Key: ConfigLogRetentionDays, Value: "30", Type: "int", Group: "system", Label: "System Log Retention Days"},
		{Key: ConfigRefreshTokenDays, Value: "14", Type: "int", Group: "auth", Label: "Refresh Token Lifetime (days)"},
		{Key: ConfigAccessTokenHours, Value: "24", Type: "int", Group: "auth", Label: "Access Token Lifetime (hours)"},
		{Key: ConfigRegistrationOpen, Value: "true", Type: "bool", Group: "auth", Label: "Allow Self Registration"},
	}

	for _, cfg := range defaultConfigs {
		var count int64
		db.Model(&SystemConfig{}).Where("config_key = ?", cfg.Key).Count(&count)
		if count == 0 {
			if err := db.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
