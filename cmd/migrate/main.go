package main

import (
	"github.com/SeakMengs/SignFlow/internal/config"
	"github.com/SeakMengs/SignFlow/internal/database"
	"github.com/SeakMengs/SignFlow/internal/env"
	"github.com/SeakMengs/SignFlow/internal/model"
	"go.uber.org/zap"
)

func init() {
	env.LoadEnv(".env")
}

func main() {
	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()
	cfg := config.GetConfig()

	logger.Infof("Database configuration: %+v", cfg.DB)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	// Signer emails are citext so lookups ignore case.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS citext`).Error; err != nil {
		logger.Panic(err)
	}

	migrateErr := db.AutoMigrate(
		&model.File{},
		&model.SigningRequest{},
		&model.Signer{},
		&model.SigningField{},
		&model.SigningRequestLog{},
	)
	if migrateErr != nil {
		logger.Panic(migrateErr)
	}
	logger.Info("Migration completed")
}
