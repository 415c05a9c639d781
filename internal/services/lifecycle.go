package services

import (
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
)

// Task status follows assignment membership, but each mutation path applies
// its own rule:
//
//	create, full update  statusForAssignees on the resulting assignee count
//	add user             assignPromotion, only when the user was not yet assigned
//	remove user          status untouched, even when the last assignee leaves
//	status update        set directly by an assignee, no rule applied
//
// COMPLETED therefore survives add and remove, and is only replaced by a full update.

func statusForAssignees(n int64) models.TaskStatus {
	if n == 0 {
		return models.TaskStatusToDo
	}
	return models.TaskStatusInProgress
}

var assignPromotion = repository.StatusTransition{
	From: models.TaskStatusToDo,
	To:   models.TaskStatusInProgress,
}
