package repository

import (
	"context"
	"strings"

	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts a task together with its initial assignees
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task, assigneeIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		return createAssignments(tx, task.ID, assigneeIDs)
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Scopes(preloadAll(preload...)).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves a page of tasks matching the filter
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{}).Scopes(database.Where(filter.Field))

	if filter.AssignedUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.AssignedUserID)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}

	err := query.
		Order("tasks.created_at DESC").
		Order("tasks.id").
		Scopes(database.Paginate(filter.Pagination)).
		Scopes(preloadAll("Creator", "Assignments.User")).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update applies a patch and recomputes the status in one transaction
func (r *GormTaskRepository) Update(ctx context.Context, id string, patch TaskPatch) (*models.Task, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.StartDate != nil {
			updates["start_date"] = *patch.StartDate
		}
		if patch.EndDate != nil {
			updates["end_date"] = *patch.EndDate
		}

		if patch.AssigneeIDs != nil {
			if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
				return err
			}
			if err := createAssignments(tx, id, *patch.AssigneeIDs); err != nil {
				return err
			}
		}

		if patch.StatusFor != nil {
			var count int64
			if err := tx.Model(&models.TaskAssignment{}).Where("task_id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			updates["status"] = patch.StatusFor(count)
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&task).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id, "Creator", "Assignments.User")
}

// UpdateStatus sets the status of a task the given user is assigned to.
// A task that exists but is not assigned to the user is reported as not found.
func (r *GormTaskRepository) UpdateStatus(ctx context.Context, id, assigneeID string, status models.TaskStatus) (*models.Task, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		membership := tx.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", assigneeID)

		var task models.Task
		if err := tx.Where("id = ?", id).Where("EXISTS (?)", membership).First(&task).Error; err != nil {
			return err
		}

		return tx.Model(&task).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id, "Creator", "Assignments.User")
}

// AddAssignee inserts an assignment if absent. When it was added, the
// transition is applied to the task status if the status still matches From.
func (r *GormTaskRepository) AddAssignee(ctx context.Context, taskID, userID string, transition StatusTransition) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&models.TaskAssignment{}).
			Where("task_id = ?", taskID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error; err != nil {
			return err
		}

		result := tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Omit(clause.Associations).
			Create(&models.TaskAssignment{TaskID: taskID, UserID: userID, Position: last + 1})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		added = true

		return tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", taskID, transition.From).
			Update("status", transition.To).Error
	})

	return added, err
}

// RemoveAssignee deletes an assignment if present
func (r *GormTaskRepository) RemoveAssignee(ctx context.Context, taskID, userID string) error {
	return r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&models.TaskAssignment{}).Error
}

// AppendUploads adds asset references to a task
func (r *GormTaskRepository) AppendUploads(ctx context.Context, id string, refs []string) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			return err
		}
		task.Uploads = append(task.Uploads, refs...)
		return tx.Omit(clause.Associations).Save(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task with its assignments, comment links and comments
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&models.Task{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		return tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error
	})
}

// Exists reports whether a task with the ID exists
func (r *GormTaskRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func createAssignments(tx *gorm.DB, taskID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	assignments := make([]models.TaskAssignment, len(userIDs))
	for i, userID := range userIDs {
		assignments[i] = models.TaskAssignment{
			TaskID:   taskID,
			UserID:   userID,
			Position: int64(i + 1),
		}
	}

	return tx.
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&assignments).Error
}

// preloadAll preloads the named relations. Assignments always come back in
// the order the users were assigned.
func preloadAll(names ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, name := range names {
			if name == "Assignments" || strings.HasPrefix(name, "Assignments.") {
				db = db.Preload("Assignments", orderAssignments)
				if name == "Assignments" {
					continue
				}
			}
			db = db.Preload(name)
		}
		return db
	}
}

func orderAssignments(db *gorm.DB) *gorm.DB {
	return db.Order("task_assignments.position").Order("task_assignments.created_at")
}
