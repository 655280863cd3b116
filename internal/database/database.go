package database

import (
	"fmt"
	"time"

	"github.com/citysafe/inspection-backend/internal/config"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dialector builds the gorm dialector for the configured driver.
// Both drivers exchange timestamps in UTC so DATE columns keep their UTC-midnight form.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		mysqlCfg, err := mysqldriver.ParseDSN(cfg.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("parse DSN: %w", err)
		}
		mysqlCfg.Loc = time.UTC
		if mysqlCfg.Params == nil {
			mysqlCfg.Params = map[string]string{}
		}
		mysqlCfg.Params["time_zone"] = "'+00:00'"
		return mysql.Open(mysqlCfg.FormatDSN()), nil
	case "postgres":
		return postgres.New(postgres.Config{DSN: cfg.GetPostgresDSN()}), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// Open connects and applies the pool settings
func Open(cfg config.DatabaseConfig, level gormlogger.LogLevel) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	return db, nil
}
