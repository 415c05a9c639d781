package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func TestDialector(t *testing.T) {
	d, err := Dialector(&config.Config{DBDriver: "postgres"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialector(&config.Config{DBDriver: "mysql"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	_, err = Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestMigrate_CreatesIndexesOnce(t *testing.T) {
	db := openTestDB(t)
	SetDB(db)

	require.NoError(t, Migrate())
	require.NoError(t, Migrate())

	assert.True(t, db.Migrator().HasIndex("tasks", "idx_tasks_status"))
	assert.True(t, db.Migrator().HasTable(&models.TaskComment{}))
}

func TestScopes(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, db.Create(&models.Task{Title: title, Status: models.TaskStatusToDo, CreatorID: "u1"}).Error)
	}

	var tasks []models.Task
	err := db.Scopes(Where(&utils.Filter{Column: "title", Value: "b"})).Find(&tasks).Error
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	err = db.Scopes(Where(nil), Paginate(utils.NewPaginationParams(2, 2))).Order("title").Find(&tasks).Error
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "c", tasks[0].Title)
}
