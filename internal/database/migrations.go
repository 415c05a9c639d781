package database

import (
	"fmt"

	"github.com/yukikurage/task-tracker-api/internal/logging"
	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns string
}

// Indexes not declared on the models: list filters and the comment feed order.
var indexes = []index{
	{"tasks", "idx_tasks_status", "status"},
	{"tasks", "idx_tasks_created_at", "created_at"},
	{"task_assignments", "idx_task_assignments_task_id", "task_id"},
	{"comments", "idx_comments_replied", "replied"},
	{"task_comments", "idx_task_comments_comment_id", "comment_id"},
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			logging.Logger.WithField("index", idx.name).Debug("index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logging.Logger.WithFields(map[string]interface{}{
			"index": idx.name,
			"table": idx.table,
		}).Info("created index")
	}

	return nil
}
