package models

import (
	"time"
)

// TaskAssignment is one member of a task's assignee set.
type TaskAssignment struct {
	TaskID    string    `gorm:"type:varchar(36);primarykey" json:"task_id"`
	UserID    string    `gorm:"type:varchar(36);primarykey;index" json:"user_id"`
	Position  int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
