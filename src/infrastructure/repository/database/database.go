package database

import (
	"fmt"

	"restaurant-crm-api/src/infrastructure/config"
	logger "restaurant-crm-api/src/infrastructure/logger"
	"restaurant-crm-api/src/infrastructure/repository/database/campaign"
	"restaurant-crm-api/src/infrastructure/repository/database/crm"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&crm.Restaurant{},
		&crm.Customer{},
		&crm.EngagementMetric{},
		&campaign.Campaign{},
		&campaign.Recipient{},
		&crm.MessageLog{},
		&crm.Media{},
	}
}

func PostgresDSN(c config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func MySQLDSN(c config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

func dialector(c config.DatabaseConfig) (gorm.Dialector, error) {
	switch c.Driver {
	case config.DriverPostgres:
		return postgres.Open(PostgresDSN(c)), nil
	case config.DriverMySQL:
		return mysql.Open(MySQLDSN(c)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

// Open connects to the configured database without migrating it.
func Open(c config.DatabaseConfig, loggerInstance *logger.Logger) (*gorm.DB, error) {
	d, err := dialector(c)
	if err != nil {
		return nil, err
	}

	gormZap := logger.NewGormLogger(loggerInstance.Log).LogMode(gormlogger.Warn)
	db, err := gorm.Open(d, &gorm.Config{
		Logger:                 gormZap,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		loggerInstance.Error("Error connecting to the database", zap.Error(err), zap.String("driver", c.Driver))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetime.Duration > 0 {
		sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime.Duration)
	}
	return db, nil
}

func Migrate(db *gorm.DB, loggerInstance *logger.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		loggerInstance.Error("Error migrating database entities", zap.Error(err))
		return err
	}
	loggerInstance.Info("Database entities migration completed successfully")
	return nil
}

// InitDB opens the connection and brings the schema up to date.
func InitDB(c config.DatabaseConfig, loggerInstance *logger.Logger) (*gorm.DB, error) {
	db, err := Open(c, loggerInstance)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, loggerInstance); err != nil {
		return nil, err
	}
	loggerInstance.Info("Database connection and migrations successful", zap.String("driver", c.Driver))
	return db, nil
}
