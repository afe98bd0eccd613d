package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medtrack-api/internal/apperrors"
	"github.com/harentsoaR/medtrack-api/internal/middleware"
)

func (h *Handler) Index(c *gin.Context)   { render(c, http.StatusOK, "index", nil) }
func (h *Handler) About(c *gin.Context)   { render(c, http.StatusOK, "about", nil) }
func (h *Handler) Contact(c *gin.Context) { render(c, http.StatusOK, "contact", nil) }

// PatientDashboard shows the patient's profile and appointments.
func (h *Handler) PatientDashboard(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	ctx := c.Request.Context()

	user, err := h.Accounts.Profile(ctx, sess)
	if apperrors.IsNotFound(err) {
		// the account behind the session no longer exists
		h.Sessions.End(middleware.SessionToken(c))
		redirect(c, "/login")
		return
	}
	if err != nil {
		respondError(c, "patient_dashboard", err, "Could not load your dashboard. Please try again.")
		return
	}

	appointments, err := h.Bookings.ListForPatient(ctx, sess)
	if err != nil {
		respondError(c, "patient_dashboard", err, "Could not load your appointments. Please try again.")
		return
	}

	render(c, http.StatusOK, "patient_dashboard", gin.H{"user": user, "appointments": appointments})
}

func (h *Handler) DoctorDashboard(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)

	user, err := h.Accounts.Profile(c.Request.Context(), sess)
	if apperrors.IsNotFound(err) {
		h.Sessions.End(middleware.SessionToken(c))
		redirect(c, "/login")
		return
	}
	if err != nil {
		respondError(c, "doctor_dashboard", err, "Could not load your dashboard. Please try again.")
		return
	}

	render(c, http.StatusOK, "doctor_dashboard", gin.H{"user": user})
}

// Health reports process liveness and whether the backend answers.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "backend": h.Store.Name(), "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": h.Store.Name()})
}
