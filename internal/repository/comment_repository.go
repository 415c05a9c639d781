package repository

import (
	"context"

	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCommentRepository is a GORM implementation of CommentRepository
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

// CreateLinked inserts the comment and its task link in one transaction.
// ErrTaskMissing is returned when the task does not exist.
func (r *GormCommentRepository) CreateLinked(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Task{}).Where("id = ?", comment.TaskID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrTaskMissing
		}

		if err := tx.Omit(clause.Associations).Create(comment).Error; err != nil {
			return err
		}

		link := models.TaskComment{TaskID: comment.TaskID, CommentID: comment.ID}
		return tx.Omit(clause.Associations).Create(&link).Error
	})
}

// FindByID finds a comment by ID with optional preloading
func (r *GormCommentRepository) FindByID(ctx context.Context, id string, preload ...string) (*models.Comment, error) {
	var comment models.Comment
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &comment, nil
}

// Exists reports whether a comment with the ID exists
func (r *GormCommentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List retrieves a page of comments, newest updated first
func (r *GormCommentRepository) List(ctx context.Context, filter CommentFilter) ([]models.Comment, error) {
	var comments []models.Comment

	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Scopes(database.Where(filter.Field)).
		Order("updated_at DESC").
		Order("id").
		Scopes(database.Paginate(filter.Pagination)).
		Preload("Author").
		Preload("Task").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	return comments, nil
}

// ListForTask returns the comments linked to a task in the order they were linked
func (r *GormCommentRepository) ListForTask(ctx context.Context, taskID string) ([]models.Comment, error) {
	var links []models.TaskComment

	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("id").
		Preload("Comment.Author").
		Preload("Comment.Parent.Author").
		Find(&links).Error
	if err != nil {
		return nil, err
	}

	comments := make([]models.Comment, 0, len(links))
	for _, link := range links {
		if link.Comment.ID == "" {
			continue
		}
		comments = append(comments, link.Comment)
	}

	return comments, nil
}

// UpdateBody replaces the text of a comment
func (r *GormCommentRepository) UpdateBody(ctx context.Context, id, body string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&comment, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Model(&comment).Update("comment", body).Error
	})
	if err != nil {
		return nil, err
	}

	comment.Body = body
	return &comment, nil
}

// Delete removes a comment and prunes it from its task's comment list
func (r *GormCommentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&models.Comment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("comment_id = ?", id).Delete(&models.TaskComment{}).Error
	})
}
