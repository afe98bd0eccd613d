package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/medtrack-api/internal/apperrors"
)

const (
	flashCookie = "medtrack_flash"
	flashKey    = "pendingFlashes"
)

// Flash is a one-shot message shown on the next rendered view.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func addFlash(c *gin.Context, category, message string) {
	pending, _ := c.Get(flashKey)
	flashes, _ := pending.([]Flash)
	c.Set(flashKey, append(flashes, Flash{Category: category, Message: message}))
}

func pendingFlashes(c *gin.Context) []Flash {
	pending, _ := c.Get(flashKey)
	flashes, _ := pending.([]Flash)
	return flashes
}

// redirect carries pending flashes to the next request in a cookie.
func redirect(c *gin.Context, location string) {
	if flashes := pendingFlashes(c); len(flashes) > 0 {
		if raw, err := json.Marshal(flashes); err == nil {
			c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), 0, "/", "", false, true)
		}
	}
	c.Redirect(http.StatusFound, location)
}

// render writes view as JSON together with any flashes carried over from a
// redirect and those added during this request.
func render(c *gin.Context, status int, view string, data gin.H) {
	flashes := make([]Flash, 0)
	if cookie, err := c.Cookie(flashCookie); err == nil && cookie != "" {
		if raw, err := base64.RawURLEncoding.DecodeString(cookie); err == nil {
			var carried []Flash
			if json.Unmarshal(raw, &carried) == nil {
				flashes = append(flashes, carried...)
			}
		}
		c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	}
	flashes = append(flashes, pendingFlashes(c)...)

	body := gin.H{"view": view, "flash": flashes}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}

// respondError renders view with the status and flash matching err. The
// fallback message is shown for failures the user cannot fix themselves.
func respondError(c *gin.Context, view string, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		status = http.StatusBadRequest
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
	case apperrors.ErrorTypeUnauthorized:
		status = http.StatusUnauthorized
		message = "Invalid email or password"
	case apperrors.ErrorTypeForbidden:
		status = http.StatusForbidden
	case apperrors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrorTypeDuplicateEmail:
		status = http.StatusConflict
		message = "Email already registered"
	case apperrors.ErrorTypeBackendUnavailable:
		status = http.StatusServiceUnavailable
	}

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("view", view).Int("status", status).Msg("request failed")

	addFlash(c, "error", message)
	render(c, status, view, nil)
}
