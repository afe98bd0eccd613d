package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/medtrack-api/internal/apperrors"
	"github.com/harentsoaR/medtrack-api/internal/middleware"
	"github.com/harentsoaR/medtrack-api/internal/models"
	"github.com/harentsoaR/medtrack-api/internal/services"
)

type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (h *Handler) ShowLogin(c *gin.Context) {
	render(c, http.StatusOK, "login", nil)
}

// Login checks the credentials, replaces any previous session and sends the
// user to the dashboard for their role.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, "login", apperrors.NewValidationError("Invalid request"), "")
		return
	}

	user, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, "login", err, "Login failed. Please try again.")
		return
	}

	if previous := middleware.SessionToken(c); previous != "" {
		h.Sessions.End(previous)
	}
	token, _, err := h.Sessions.Start(user)
	if err != nil {
		respondError(c, "login", err, "Login failed. Please try again.")
		return
	}
	h.setSessionCookie(c, token)
	log.Info().Str("user_id", user.UserID).Msg("user logged in")

	if user.Role == models.RolePatient {
		redirect(c, "/home1")
		return
	}
	redirect(c, "/doctor_dashboard")
}

func (h *Handler) ShowSignup(c *gin.Context) {
	render(c, http.StatusOK, "signup", nil)
}

func (h *Handler) Signup(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, "signup", apperrors.NewValidationError("Invalid request"), "")
		return
	}

	if _, err := h.Accounts.Register(c.Request.Context(), req); err != nil {
		respondError(c, "signup", err, "Registration failed. Please try again.")
		return
	}

	addFlash(c, "success", "Registration successful! Please login.")
	redirect(c, "/login")
}

// Logout ends the session if there is one and always lands on the index page.
func (h *Handler) Logout(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	if token := middleware.SessionToken(c); token != "" {
		h.Sessions.End(token)
	}
	h.clearSessionCookie(c)
	h.Accounts.Logout(c.Request.Context(), sess)

	addFlash(c, "info", "You have been logged out successfully")
	redirect(c, "/")
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.SessionTTL.Seconds()), "/", "", h.CookieSecure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.CookieSecure, true)
}
