package storage

import (
	_ "embed"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// The DDL sticks to the subset shared by PostgreSQL and SQLite.
//
//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the tables that do not exist yet. It never alters
// existing tables.
func EnsureSchema(db *gorm.DB) error {
	for _, stmt := range statements(schemaSQL) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("模型迁移失败: %w", err)
		}
	}
	return nil
}

func statements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
