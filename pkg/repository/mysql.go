package repository

import (
	"fmt"
	"strings"

	"github.com/example/clickmenu/pkg/config"
	"github.com/example/clickmenu/pkg/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenMySQL connects, sizes the pool and migrates the schema.
func OpenMySQL(cfg *config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.AutoMigrate(&models.Store{}, &models.MenuItem{}, &models.Order{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return db, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern matches q as a literal substring; user wildcards are escaped.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// searchClause ORs a case-insensitive substring match of q over columns.
func searchClause(q string, columns ...string) (string, []interface{}) {
	like := likePattern(strings.ToLower(q))
	conds := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, c := range columns {
		conds = append(conds, "LOWER("+c+") LIKE ? ESCAPE '\\\\'")
		args = append(args, like)
	}
	return strings.Join(conds, " OR "), args
}
