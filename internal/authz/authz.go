// Package authz decides whether a caller's role may perform an operation.
// It knows nothing about individual tasks or comments; ownership and
// assignment checks happen inside the services.
package authz

import "github.com/yukikurage/task-tracker-api/internal/models"

// Identity is the authenticated caller passed explicitly into every service call.
type Identity struct {
	UserID   string
	Email    string
	Username string
	Role     models.Role
}

// Permit reports whether role is in allowed. An empty allowed set is open to every role.
func Permit(role models.Role, allowed []models.Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Operation names an externally visible action.
type Operation string

const (
	TaskCreate        Operation = "task.create"
	TaskList          Operation = "task.list"
	TaskListAssigned  Operation = "task.listAssigned"
	TaskGet           Operation = "task.get"
	TaskUpdate        Operation = "task.update"
	TaskUpdateStatus  Operation = "task.updateStatus"
	TaskAddUser       Operation = "task.addUser"
	TaskRemoveUser    Operation = "task.removeUser"
	TaskDelete        Operation = "task.delete"
	TaskAttachUploads Operation = "task.attachUploads"
	TaskGenerate      Operation = "task.generate"

	CommentCreate Operation = "comment.create"
	CommentList   Operation = "comment.list"
	CommentGet    Operation = "comment.get"
	CommentUpdate Operation = "comment.update"
	CommentDelete Operation = "comment.delete"

	UserList Operation = "user.list"
)

var (
	managers     = []models.Role{models.RoleManager}
	contributors = []models.Role{models.RoleDeveloper, models.RoleQA}
	everyone     = []models.Role{models.RoleManager, models.RoleDeveloper, models.RoleQA}
)

// PolicySet maps operations to the roles allowed to perform them.
type PolicySet map[Operation][]models.Role

// Policy is the role policy served by the API.
var Policy = PolicySet{
	TaskCreate:        managers,
	TaskList:          managers,
	TaskListAssigned:  contributors,
	TaskGet:           everyone,
	TaskUpdate:        managers,
	TaskUpdateStatus:  contributors,
	TaskAddUser:       managers,
	TaskRemoveUser:    managers,
	TaskDelete:        managers,
	TaskAttachUploads: {},
	TaskGenerate:      managers,

	CommentCreate: everyone,
	CommentList:   everyone,
	CommentGet:    everyone,
	CommentUpdate: everyone,
	CommentDelete: everyone,

	UserList: managers,
}

// Allows evaluates op for role. Operations missing from the set are denied.
func (p PolicySet) Allows(op Operation, role models.Role) bool {
	allowed, ok := p[op]
	if !ok {
		return false
	}
	return Permit(role, allowed)
}
