package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reverse-market/internal/models"
)

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Models lists every persisted model, grouped in migration order
func Models() [][]interface{} {
	return [][]interface{}{
		// accounts
		{&models.User{}, &models.AdminUser{}, &models.AdminLog{}},
		// catalog
		{&models.Category{}, &models.SubCategory1{}, &models.SubCategory2{}, &models.StoreCategory{}},
		// requests
		{&models.Request{}, &models.RequestImage{}},
		// notifications
		{&models.Notification{}},
	}
}

// AutoMigrate runs automatic migrations for all models. A failing model is
// logged and the rest still migrate.
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	var failed int
	for _, group := range Models() {
		for _, model := range group {
			if err := db.AutoMigrate(model); err != nil {
				failed++
				log.Warn("migration issue", zap.String("model", fmt.Sprintf("%T", model)), zap.Error(err))
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d models failed to migrate", failed)
	}

	log.Info("Database migrations completed successfully")
	return nil
}
