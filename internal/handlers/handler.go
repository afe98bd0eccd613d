package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medtrack-api/internal/metrics"
	"github.com/harentsoaR/medtrack-api/internal/middleware"
	"github.com/harentsoaR/medtrack-api/internal/models"
	"github.com/harentsoaR/medtrack-api/internal/services"
	"github.com/harentsoaR/medtrack-api/internal/session"
	"github.com/harentsoaR/medtrack-api/internal/store"
)

// Handler holds everything the routes need. It is built once in main.
type Handler struct {
	Store    store.Store
	Accounts *services.AccountService
	Bookings *services.BookingService
	Sessions *session.Manager

	// CookieSecure marks the session cookie Secure.
	CookieSecure bool
	// SessionTTL bounds the session cookie lifetime; zero makes it a browser-session cookie.
	SessionTTL time.Duration
}

func NewHandler(
	st store.Store,
	accounts *services.AccountService,
	bookings *services.BookingService,
	sessions *session.Manager,
	cookieSecure bool,
	sessionTTL time.Duration,
) *Handler {
	return &Handler{
		Store:        st,
		Accounts:     accounts,
		Bookings:     bookings,
		Sessions:     sessions,
		CookieSecure: cookieSecure,
		SessionTTL:   sessionTTL,
	}
}

// RegisterRoutes mounts every page on r.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(middleware.SessionMiddleware(h.Sessions))

	r.GET("/", h.Index)
	r.GET("/about", h.About)
	r.GET("/contact_us", h.Contact)
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/signup", h.ShowSignup)
	r.POST("/signup", h.Signup)
	r.GET("/logout", h.Logout)

	r.GET("/home1", middleware.RequireSession(models.RolePatient), h.PatientDashboard)
	r.GET("/doctor_dashboard", middleware.RequireSession(models.RoleDoctor), h.DoctorDashboard)

	loggedIn := r.Group("/")
	loggedIn.Use(middleware.RequireSession())
	{
		loggedIn.GET("/booking", h.ShowBooking)
		loggedIn.GET("/b1", h.ShowBooking)
		loggedIn.GET("/tickets", h.ShowTickets)
		loggedIn.POST("/tickets", h.BookAppointment)
		loggedIn.GET("/appointments", h.ListAppointments)
		loggedIn.GET("/appointments/cancel/:id", h.CancelAppointment)
		loggedIn.POST("/appointments/cancel/:id", h.CancelAppointment)
	}
}
