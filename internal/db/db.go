package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oakwellhq/chatgate/internal/history"
	"github.com/oakwellhq/chatgate/internal/quota"
)

// Open connects to the record store. A non-empty MySQL DSN selects the server
// backend; otherwise the embedded sqlite file at sqlitePath is used.
func Open(dsn, sqlitePath string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if dsn != "" {
		dialector = mysql.Open(dsn)
	} else {
		dialector = sqlite.Open(sqlitePath)
	}

	// TranslateError lets the quota guard detect duplicate-key conflicts as
	// gorm.ErrDuplicatedKey across both dialects.
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := gdb.AutoMigrate(&quota.Record{}, &history.Entry{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return gdb, nil
}

// Close releases the underlying sql.DB handle.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
