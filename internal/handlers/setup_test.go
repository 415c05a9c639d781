package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/directory"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	tokens *services.TokenIssuer
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	dir := directory.NewStore(userRepo)
	tokens := services.NewTokenIssuer("test-secret", time.Hour)

	router := gin.New()
	router.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	authService := services.NewAuthService(userRepo, tokens)
	Routes{
		Auth:        NewAuthHandler(authService),
		Users:       NewUserHandler(authService),
		Tasks:       NewTaskHandler(services.NewTaskService(taskRepo, commentRepo, dir, nil)),
		Comments:    NewCommentHandler(services.NewCommentService(commentRepo)),
		RequireAuth: middleware.RequireAuth(tokens, dir),
	}.Register(router)

	return &testEnv{db: db, router: router, tokens: tokens}
}

func (e *testEnv) createUser(t *testing.T, username string, role models.Role) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) token(t *testing.T, user models.User) string {
	t.Helper()

	token, _, err := e.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

// do sends a JSON request as user and decodes the response body.
func (e *testEnv) do(t *testing.T, method, path string, user *models.User, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", constants.BearerPrefix+e.token(t, *user))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func taskPayload(title string, assignees ...string) map[string]interface{} {
	if assignees == nil {
		assignees = []string{}
	}
	return map[string]interface{}{
		"title":       title,
		"description": "description",
		"assigned_to": assignees,
		"start_date":  "2026-10-01T09:00:00Z",
		"end_date":    "2026-10-31T17:00:00Z",
	}
}
