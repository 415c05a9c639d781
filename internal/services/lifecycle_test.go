package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/task-tracker-api/internal/models"
)

func TestStatusForAssignees(t *testing.T) {
	assert.Equal(t, models.TaskStatusToDo, statusForAssignees(0))
	assert.Equal(t, models.TaskStatusInProgress, statusForAssignees(1))
	assert.Equal(t, models.TaskStatusInProgress, statusForAssignees(7))
}

func TestAssignPromotion(t *testing.T) {
	assert.Equal(t, models.TaskStatusToDo, assignPromotion.From)
	assert.Equal(t, models.TaskStatusInProgress, assignPromotion.To)
}
