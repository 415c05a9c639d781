package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	TaskID    string    `gorm:"type:varchar(36);not null;index" json:"task_id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Body      string    `gorm:"column:comment;type:text;not null" json:"comment"`
	RepliedID *string   `gorm:"type:varchar(36)" json:"replied_id,omitempty"`
	Replied   bool      `gorm:"not null" json:"replied"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`

	// Relations
	Author User     `gorm:"foreignKey:UserID" json:"-"`
	Task   Task     `gorm:"foreignKey:TaskID" json:"-"`
	Parent *Comment `gorm:"foreignKey:RepliedID" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// TaskComment links a comment into its task's ordered comment list.
type TaskComment struct {
	ID        uint64    `gorm:"primarykey;autoIncrement" json:"-"`
	TaskID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_task_comment" json:"task_id"`
	CommentID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_task_comment" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`

	Comment Comment `gorm:"foreignKey:CommentID" json:"-"`
}
