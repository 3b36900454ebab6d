package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/pkg/logger"
)

var DB *gorm.DB

func InitDB(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}

	gormConfig := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Error),
		PrepareStmt: false,
	}

	db, err := gorm.Open(postgres.New(pgConfig), gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	DB = db
	logger.Log.Info("Database connected successfully")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Seller{},
		&model.Buyer{},
		&model.Broker{},
		&model.Property{},
		&model.Lead{},
		&model.AgentBuyerAssociation{},
		&model.Transaction{},
		&model.TransactionProgress{},
		&model.OTPRecord{},
		&model.VisitAvailability{},
		&model.VisitRequest{},
		&model.CommissionPayout{},
		&model.SupportTicket{},
		&model.SupportMessage{},
	}
}

func MigrateDatabase(models ...interface{}) error {
	for _, m := range models {
		if !DB.Migrator().HasTable(m) {
			if err := DB.Migrator().CreateTable(m); err != nil {
				return err
			}
			logger.Log.Infof("Created table for %T", m)
		} else {
			if err := DB.Migrator().AutoMigrate(m); err != nil {
				return err
			}
			logger.Log.Debugf("Updated table for %T", m)
		}
	}
	return nil
}
