package repo

import (
	"GoDrop/config"
	"GoDrop/model"
	"fmt"
	"log"
	"time"

	gormMysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// AutoMigrateAll migrates all database models.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.File{},
		&model.ShareLink{},
		&model.ShareDownloadToken{},
		&model.ShareAccessLog{},
	)
}

// InitMysql opens the MySQL connection and runs migrations.
func InitMysql(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser,
		cfg.DBPass,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
	)
	db, err := gorm.Open(gormMysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("init mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := AutoMigrateAll(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	log.Println("init mysql success")
	return db, nil
}
