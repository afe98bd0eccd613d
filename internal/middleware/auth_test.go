package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medtrack-api/internal/models"
	"github.com/harentsoaR/medtrack-api/internal/session"
)

func setupRouter(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sessions, err := session.NewManager("test-secret", 0)
	require.NoError(t, err)

	r := gin.New()
	r.Use(SessionMiddleware(sessions))
	r.GET("/whoami", func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, sess.UserID)
	})
	r.GET("/patients", RequireSession(models.RolePatient), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/members", RequireSession(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r, sessions
}

func startSession(t *testing.T, sessions *session.Manager, role models.Role) string {
	t.Helper()
	token, _, err := sessions.Start(models.User{UserID: "u-1", Email: "a@x.com", Role: role})
	require.NoError(t, err)
	return token
}

func TestSessionMiddlewareResolvesToken(t *testing.T) {
	r, sessions := setupRouter(t)
	token := startSession(t, sessions, models.RolePatient)

	tests := []struct {
		name     string
		prepare  func(*http.Request)
		expected string
	}{
		{"no token", func(*http.Request) {}, "anonymous"},
		{"cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		}, "u-1"},
		{"bearer header", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		}, "u-1"},
		{"invalid token", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer nope")
		}, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.prepare(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expected, w.Body.String())
		})
	}
}

func TestRequireSession(t *testing.T) {
	r, sessions := setupRouter(t)
	patient := startSession(t, sessions, models.RolePatient)
	doctor := startSession(t, sessions, models.RoleDoctor)
	ended := startSession(t, sessions, models.RolePatient)
	sessions.End(ended)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"anonymous redirected", "/patients", "", http.StatusFound},
		{"patient allowed", "/patients", patient, http.StatusOK},
		{"wrong role redirected", "/patients", doctor, http.StatusFound},
		{"ended session redirected", "/patients", ended, http.StatusFound},
		{"any role allowed", "/members", doctor, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.token})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusFound {
				assert.Equal(t, "/login", w.Header().Get("Location"))
			}
		})
	}
}
