package db

import (
	"log"

	"zkdex-backend/internal/config"
	"zkdex-backend/internal/metrics"
	"zkdex-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB() {
	var err error

	if config.AppConfig == nil {
		log.Fatalf("Config must be loaded before the database")
	}
	// The memory driver keeps everything in process; there is nothing to
	// connect or migrate and DB stays nil.
	if config.AppConfig.Database.Driver == "memory" {
		log.Println("Using in-memory store, skipping database connection")
		return
	}
	if config.AppConfig.Database.Driver != "postgres" {
		log.Fatalf("Unsupported database driver: %s", config.AppConfig.Database.Driver)
	}
	if config.AppConfig.Database.DSN == "" {
		log.Fatalf("Database DSN is required")
	}

	dsn := config.AppConfig.Database.DSN
	log.Println("Connecting to database")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
		PrepareStmt:                              true,
		// The repository layer matches on gorm.ErrDuplicatedKey, which the
		// postgres driver only produces with error translation enabled.
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		metrics.DBConnectionStatus.Set(0)
		log.Fatalf("Failed to connect database: %v", err)
	}

	metrics.DBConnectionStatus.Set(1)
	log.Println("Database connected successfully")

	if err := DB.AutoMigrate(
		&models.SwapConfig{},
		&models.Pool{},
		&models.LiquidityPosition{},
		&models.SwapCommitment{},
		&models.BridgeConfig{},
		&models.BridgeTransaction{},
		&models.NullifierRecord{},
		&models.Relayer{},
		&models.DomainEvent{},
	); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("Database schema migrated successfully")
}

// UpdateConnectionMetrics refreshes the connection pool gauges from the
// underlying sql.DB. Called from the readiness probe.
func UpdateConnectionMetrics() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return
	}
	stats := sqlDB.Stats()
	metrics.DBConnectionActive.Set(float64(stats.InUse))
	metrics.DBConnectionIdle.Set(float64(stats.Idle))
}

// CloseDB closes the underlying connection pool.
func CloseDB() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
	metrics.DBConnectionStatus.Set(0)
}
