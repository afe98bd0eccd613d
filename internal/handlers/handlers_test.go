package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medtrack-api/internal/apperrors"
	"github.com/harentsoaR/medtrack-api/internal/middleware"
	"github.com/harentsoaR/medtrack-api/internal/models"
	"github.com/harentsoaR/medtrack-api/internal/services"
	"github.com/harentsoaR/medtrack-api/internal/session"
	"github.com/harentsoaR/medtrack-api/internal/store"
	"github.com/harentsoaR/medtrack-api/internal/store/memory"
	"github.com/harentsoaR/medtrack-api/internal/utils"
)

type nopNotifier struct{}

func (nopNotifier) Emit(context.Context, string, string) {}

// downStore fails every call like an unreachable backend.
type downStore struct{ store.Store }

func (downStore) Name() string { return "down" }
func (downStore) Ping(context.Context) error {
	return apperrors.NewBackendUnavailableError("ping", context.DeadlineExceeded)
}
func (downStore) FindUserByEmail(context.Context, string) (models.User, error) {
	return models.User{}, apperrors.NewBackendUnavailableError("find user", context.DeadlineExceeded)
}
func (downStore) CreateUser(context.Context, models.User) error {
	return apperrors.NewBackendUnavailableError("create user", context.DeadlineExceeded)
}

type viewBody struct {
	View  string  `json:"view"`
	Flash []Flash `json:"flash"`
}

func setupRouter(t *testing.T, st store.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions, err := session.NewManager("test-secret", 0)
	require.NoError(t, err)
	accounts := services.NewAccountService(st, utils.NewPasswordPolicy(false), nopNotifier{})
	bookings := services.NewBookingService(st, nopNotifier{}, false)

	r := gin.New()
	NewHandler(st, accounts, bookings, sessions, false, 0).RegisterRoutes(r)
	return r
}

// client replays cookies between requests like a browser.
type client struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, router *gin.Engine) *client {
	return &client{t: t, router: router, cookies: make(map[string]*http.Cookie)}
}

func (cl *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	cl.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(cl.cookies, c.Name)
			continue
		}
		cl.cookies[c.Name] = c
	}
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) viewBody {
	t.Helper()
	var body viewBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func signupForm(email, role string) url.Values {
	return url.Values{
		"user_type":  {role},
		"email":      {email},
		"password":   {"p"},
		"first_name": {"Ada"},
		"last_name":  {"Lovelace"},
		"phone":      {"555-0100"},
	}
}

func loginForm(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func TestPublicPages(t *testing.T) {
	r := setupRouter(t, memory.New())

	tests := []struct {
		path string
		view string
	}{
		{"/", "index"},
		{"/about", "about"},
		{"/contact_us", "contact"},
		{"/login", "login"},
		{"/signup", "signup"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := newClient(t, r).do(http.MethodGet, tt.path, nil)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.view, decodeView(t, w).View)
		})
	}
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	r := setupRouter(t, memory.New())

	for _, path := range []string{"/home1", "/doctor_dashboard", "/booking", "/b1", "/tickets", "/appointments", "/appointments/cancel/x"} {
		t.Run(path, func(t *testing.T) {
			w := newClient(t, r).do(http.MethodGet, path, nil)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/login", w.Header().Get("Location"))
		})
	}
}

func TestSignupLoginFlow(t *testing.T) {
	r := setupRouter(t, memory.New())
	cl := newClient(t, r)

	w := cl.do(http.MethodPost, "/signup", signupForm("a@x.com", "patient"))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// the success flash survives the redirect exactly once
	w = cl.do(http.MethodGet, "/login", nil)
	body := decodeView(t, w)
	require.Len(t, body.Flash, 1)
	assert.Equal(t, "Registration successful! Please login.", body.Flash[0].Message)
	assert.Empty(t, decodeView(t, cl.do(http.MethodGet, "/login", nil)).Flash)

	w = cl.do(http.MethodPost, "/signup", signupForm("a@x.com", "patient"))
	assert.Equal(t, http.StatusConflict, w.Code)
	body = decodeView(t, w)
	assert.Equal(t, "signup", body.View)
	assert.Equal(t, "Email already registered", body.Flash[0].Message)

	w = cl.do(http.MethodPost, "/login", loginForm("a@x.com", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decodeView(t, w).Flash[0].Message)

	w = cl.do(http.MethodPost, "/login", loginForm("a@x.com", "p"))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home1", w.Header().Get("Location"))
	require.Contains(t, cl.cookies, middleware.SessionCookie)

	w = cl.do(http.MethodGet, "/home1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "patient_dashboard", decodeView(t, w).View)

	// patients cannot open the doctor dashboard
	w = cl.do(http.MethodGet, "/doctor_dashboard", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	w = cl.do(http.MethodGet, "/logout", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.NotContains(t, cl.cookies, middleware.SessionCookie)

	w = cl.do(http.MethodGet, "/home1", nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestLoggedOutTokenIsRevoked(t *testing.T) {
	r := setupRouter(t, memory.New())
	cl := newClient(t, r)
	cl.do(http.MethodPost, "/signup", signupForm("a@x.com", "patient"))
	cl.do(http.MethodPost, "/login", loginForm("a@x.com", "p"))
	stolen := *cl.cookies[middleware.SessionCookie]

	cl.do(http.MethodGet, "/logout", nil)

	replay := newClient(t, r)
	replay.cookies[stolen.Name] = &stolen
	w := replay.do(http.MethodGet, "/home1", nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestDoctorLogin(t *testing.T) {
	r := setupRouter(t, memory.New())
	cl := newClient(t, r)
	cl.do(http.MethodPost, "/signup", signupForm("doc@x.com", "doctor"))

	w := cl.do(http.MethodPost, "/login", loginForm("doc@x.com", "p"))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/doctor_dashboard", w.Header().Get("Location"))

	w = cl.do(http.MethodGet, "/doctor_dashboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupValidation(t *testing.T) {
	r := setupRouter(t, memory.New())
	form := signupForm("a@x.com", "patient")
	form.Del("phone")

	w := newClient(t, r).do(http.MethodPost, "/signup", form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeView(t, w).Flash[0].Message, "phone")
}

func TestBookingAndCancel(t *testing.T) {
	r := setupRouter(t, memory.New())
	alice := newClient(t, r)
	alice.do(http.MethodPost, "/signup", signupForm("a@x.com", "patient"))
	alice.do(http.MethodPost, "/login", loginForm("a@x.com", "p"))

	w := alice.do(http.MethodPost, "/tickets", url.Values{
		"doctor": {"Dr. X"},
		"date":   {"2024-01-01"},
		"time":   {"09:30"},
		"reason": {"checkup"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var booked struct {
		View        string             `json:"view"`
		Appointment models.Appointment `json:"appointment"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booked))
	assert.Equal(t, "tickets", booked.View)
	assert.Equal(t, models.StatusScheduled, booked.Appointment.Status)
	id := booked.Appointment.AppointmentID

	w = alice.do(http.MethodPost, "/tickets", url.Values{"doctor": {"Dr. X"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// another patient cannot cancel it
	bob := newClient(t, r)
	bob.do(http.MethodPost, "/signup", signupForm("b@x.com", "patient"))
	bob.do(http.MethodPost, "/login", loginForm("b@x.com", "p"))
	w = bob.do(http.MethodGet, "/appointments/cancel/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = alice.do(http.MethodGet, "/appointments/cancel/"+id, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/appointments", w.Header().Get("Location"))

	w = alice.do(http.MethodGet, "/appointments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Flash        []Flash              `json:"flash"`
		Appointments []models.Appointment `json:"appointments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Appointments, 1)
	assert.Equal(t, models.StatusCancelled, listed.Appointments[0].Status)
	assert.Equal(t, "Appointment cancelled successfully", listed.Flash[0].Message)
}

func TestBackendUnavailable(t *testing.T) {
	r := setupRouter(t, downStore{Store: memory.New()})
	cl := newClient(t, r)

	w := cl.do(http.MethodPost, "/signup", signupForm("a@x.com", "patient"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Registration failed. Please try again.", decodeView(t, w).Flash[0].Message)

	w = cl.do(http.MethodPost, "/login", loginForm("a@x.com", "p"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = cl.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth(t *testing.T) {
	r := setupRouter(t, memory.New())
	w := newClient(t, r).do(http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","backend":"memory"}`, w.Body.String())
}
