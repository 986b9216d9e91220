package db

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zapinvoice/zapinvoice/internal/store"
)

var (
	kvPasswordRe  = regexp.MustCompile(`(password=)\S+`)
	urlPasswordRe = regexp.MustCompile(`(://[^:/@]+:)[^@]+@`)
)

// Connect opens the durable database and migrates the records table. The
// driver follows the DSN: postgres:// URLs use the postgres driver, anything
// else is treated as a sqlite file path.
func Connect(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty DATABASE_DSN")
	}

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var (
		conn *gorm.DB
		err  error
	)
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		conn, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		conn, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if log != nil {
		log.WithField("dsn", maskDSN(dsn)).Info("database connected")
	}

	if err := conn.AutoMigrate(&store.Record{}); err != nil {
		return nil, fmt.Errorf("migrate records: %w", err)
	}
	return conn, nil
}

// maskDSN hides credentials in diagnostics.
func maskDSN(dsn string) string {
	dsn = kvPasswordRe.ReplaceAllString(dsn, `${1}***`)
	return urlPasswordRe.ReplaceAllString(dsn, `${1}***@`)
}
