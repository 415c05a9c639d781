package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/authz"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/directory"
	"github.com/yukikurage/task-tracker-api/internal/logging"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

type staticDirectory map[string]directory.Entry

func (d staticDirectory) ResolveByEmail(_ context.Context, email string) (directory.Entry, error) {
	for _, e := range d {
		if e.Email == email {
			return e, nil
		}
	}
	return directory.Entry{}, directory.ErrNotFound
}

func (d staticDirectory) ResolveByID(_ context.Context, id string) (directory.Entry, error) {
	e, ok := d[id]
	if !ok {
		return directory.Entry{}, directory.ErrNotFound
	}
	return e, nil
}

func (d staticDirectory) ResolveEmails(ctx context.Context, emails []string) (map[string]directory.Entry, error) {
	found := map[string]directory.Entry{}
	for _, email := range emails {
		if e, err := d.ResolveByEmail(ctx, email); err == nil {
			found[email] = e
		}
	}
	return found, nil
}

var testUsers = staticDirectory{
	"u-manager": {ID: "u-manager", Email: "m@example.com", Username: "manager", Role: models.RoleManager},
	"u-dev":     {ID: "u-dev", Email: "d@example.com", Username: "dev", Role: models.RoleDeveloper},
}

func newRouter(tokens *services.TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))

	r.POST("/login/:id", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, c.Param("id"))
		if err := session.Save(); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})

	protected := r.Group("/api", RequireAuth(tokens, testUsers))
	protected.GET("/whoami", func(c *gin.Context) {
		identity, _ := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"username": identity.Username, "role": identity.Role})
	})
	protected.POST("/tasks", RequireOperation(authz.TaskCreate), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func bearer(t *testing.T, tokens *services.TokenIssuer, id string) string {
	t.Helper()
	e := testUsers[id]
	token, _, err := tokens.Issue(models.User{ID: e.ID, Email: e.Email, Role: e.Role})
	require.NoError(t, err)
	return constants.BearerPrefix + token
}

func TestRequireAuth_Bearer(t *testing.T) {
	tokens := services.NewTokenIssuer("secret", time.Hour)
	r := newRouter(tokens)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", bearer(t, tokens, "u-dev"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"dev"`)
}

func TestRequireAuth_Rejects(t *testing.T) {
	tokens := services.NewTokenIssuer("secret", time.Hour)
	r := newRouter(tokens)

	cases := map[string]string{
		"missing":       "",
		"wrong scheme":  "Basic abc",
		"garbage token": "Bearer not-a-jwt",
		"unknown user":  bearer(t, services.NewTokenIssuer("secret", time.Hour), "u-ghost"),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireAuth_Session(t *testing.T) {
	r := newRouter(services.NewTokenIssuer("secret", time.Hour))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login/u-manager", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"MANAGER"`)
}

func TestRequireOperation(t *testing.T) {
	tokens := services.NewTokenIssuer("secret", time.Hour)
	r := newRouter(tokens)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
	req.Header.Set("Authorization", bearer(t, tokens, "u-dev"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Access denied")

	req = httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
	req.Header.Set("Authorization", bearer(t, tokens, "u-manager"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logging.Logger.SetOutput(&buf)
	t.Cleanup(func() { logging.Init("info", "text", "") })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Contains(t, buf.String(), "request rejected")
	assert.Contains(t, buf.String(), "status=404")
}
