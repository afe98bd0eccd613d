package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medtrack-api/internal/apperrors"
	"github.com/harentsoaR/medtrack-api/internal/middleware"
	"github.com/harentsoaR/medtrack-api/internal/services"
)

func (h *Handler) ShowBooking(c *gin.Context) {
	render(c, http.StatusOK, "booking", nil)
}

func (h *Handler) ShowTickets(c *gin.Context) {
	render(c, http.StatusOK, "tickets", nil)
}

// --- BOOK APPOINTMENT ---
func (h *Handler) BookAppointment(c *gin.Context) {
	var req services.BookingInput
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, "booking", apperrors.NewValidationError("Invalid request"), "")
		return
	}

	sess, _ := middleware.CurrentSession(c)
	appt, err := h.Bookings.Book(c.Request.Context(), sess, req)
	if err != nil {
		respondError(c, "booking", err, "Failed to book appointment. Please try again.")
		return
	}

	addFlash(c, "success", "Appointment booked successfully!")
	render(c, http.StatusCreated, "tickets", gin.H{"appointment": appt})
}

// --- LIST APPOINTMENTS ---
func (h *Handler) ListAppointments(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	appointments, err := h.Bookings.ListForPatient(c.Request.Context(), sess)
	if err != nil {
		respondError(c, "appointments", err, "Could not load your appointments. Please try again.")
		return
	}

	render(c, http.StatusOK, "appointments", gin.H{"appointments": appointments})
}

// --- CANCEL APPOINTMENT ---
func (h *Handler) CancelAppointment(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	if _, err := h.Bookings.Cancel(c.Request.Context(), sess, c.Param("id")); err != nil {
		respondError(c, "appointments", err, "Failed to cancel appointment")
		return
	}

	addFlash(c, "success", "Appointment cancelled successfully")
	redirect(c, "/appointments")
}
