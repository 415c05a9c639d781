package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID   = "user_id"
	ContextKeyIdentity = "identity"
	SessionCookieName  = "task_session"
)

// Pagination
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Auth
const (
	MinPasswordLength = 8
	DefaultTokenTTL   = 24 * time.Hour
	BearerPrefix      = "Bearer "
)

// AI drafting
const (
	MaxAIGeneratedTasks = 20
)
