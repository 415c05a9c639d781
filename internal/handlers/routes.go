package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/authz"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
)

// Routes bundles the handlers mounted under /api.
type Routes struct {
	Auth        *AuthHandler
	Tasks       *TaskHandler
	Comments    *CommentHandler
	Users       *UserHandler
	RequireAuth gin.HandlerFunc
}

// Register mounts every API route on r. Session middleware must already be
// installed on r.
func (rt Routes) Register(r gin.IRouter) {
	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", rt.Auth.Signup)
		auth.POST("/login", rt.Auth.Login)
		auth.POST("/logout", rt.Auth.Logout)
		auth.GET("/me", rt.RequireAuth, rt.Auth.GetCurrentUser)
	}

	op := middleware.RequireOperation

	api.GET("/users", rt.RequireAuth, op(authz.UserList), rt.Users.ListUsers)

	tasks := api.Group("/tasks")
	tasks.Use(rt.RequireAuth)
	{
		tasks.POST("", op(authz.TaskCreate), rt.Tasks.CreateTask)
		tasks.GET("", op(authz.TaskList), rt.Tasks.ListTasks)
		tasks.GET("/assigned", op(authz.TaskListAssigned), rt.Tasks.ListAssignedTasks)
		tasks.POST("/generate", op(authz.TaskGenerate), rt.Tasks.GenerateTasks)
		tasks.GET("/:id", op(authz.TaskGet), rt.Tasks.GetTask)
		tasks.PATCH("/:id", op(authz.TaskUpdate), rt.Tasks.UpdateTask)
		tasks.DELETE("/:id", op(authz.TaskDelete), rt.Tasks.DeleteTask)
		tasks.PATCH("/:id/status", op(authz.TaskUpdateStatus), rt.Tasks.UpdateStatus)
		tasks.PATCH("/:id/add-user", op(authz.TaskAddUser), rt.Tasks.AddUser)
		tasks.PATCH("/:id/remove-user", op(authz.TaskRemoveUser), rt.Tasks.RemoveUser)
		tasks.POST("/:id/uploads", op(authz.TaskAttachUploads), rt.Tasks.AttachUploads)
	}

	comments := api.Group("/comments")
	comments.Use(rt.RequireAuth)
	{
		comments.POST("", op(authz.CommentCreate), rt.Comments.CreateComment)
		comments.GET("", op(authz.CommentList), rt.Comments.ListComments)
		comments.GET("/:id", op(authz.CommentGet), rt.Comments.GetComment)
		comments.PATCH("/:id", op(authz.CommentUpdate), rt.Comments.UpdateComment)
		comments.DELETE("/:id", op(authz.CommentDelete), rt.Comments.DeleteComment)
	}
}
