package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/medtrack-api/internal/apperrors"
	"github.com/harentsoaR/medtrack-api/internal/metrics"
	"github.com/harentsoaR/medtrack-api/internal/models"
	"github.com/harentsoaR/medtrack-api/internal/session"
	"github.com/harentsoaR/medtrack-api/internal/store"
)

// BookingService books and cancels appointments on behalf of a session.
type BookingService struct {
	appointments store.AppointmentStore
	notifier     Notifier
	// cancelDeletes removes cancelled appointments instead of marking them.
	cancelDeletes bool
	now           func() time.Time
}

func NewBookingService(appointments store.AppointmentStore, notifier Notifier, cancelDeletes bool) *BookingService {
	return &BookingService{
		appointments:  appointments,
		notifier:      notifier,
		cancelDeletes: cancelDeletes,
		now:           time.Now,
	}
}

// BookingInput carries the booking form.
type BookingInput struct {
	Doctor                string `form:"doctor" json:"doctor"`
	Date                  string `form:"date" json:"date"`
	Time                  string `form:"time" json:"time"`
	Type                  string `form:"appointment_type" json:"appointment_type"`
	Reason                string `form:"reason" json:"reason"`
	AdditionalNotes       string `form:"additional_notes" json:"additional_notes"`
	EmergencyContactName  string `form:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactPhone string `form:"emergency_contact_phone" json:"emergency_contact_phone"`
}

func (in BookingInput) validate() error {
	required := []struct{ field, value string }{
		{"doctor", in.Doctor},
		{"date", in.Date},
		{"time", in.Time},
		{"reason", in.Reason},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// Book schedules a new appointment for the session's user.
func (s *BookingService) Book(ctx context.Context, sess session.Session, in BookingInput) (models.Appointment, error) {
	if err := session.RequireRole(sess); err != nil {
		return models.Appointment{}, err
	}
	if err := in.validate(); err != nil {
		return models.Appointment{}, err
	}

	apptType := in.Type
	if apptType == "" {
		apptType = models.DefaultAppointmentType
	}

	appt := models.Appointment{
		AppointmentID:         uuid.NewString(),
		PatientID:             sess.UserID,
		PatientName:           sess.Name,
		PatientEmail:          sess.Email,
		DoctorName:            in.Doctor,
		Date:                  in.Date,
		Time:                  in.Time,
		Type:                  apptType,
		Reason:                in.Reason,
		AdditionalNotes:       in.AdditionalNotes,
		EmergencyContactName:  in.EmergencyContactName,
		EmergencyContactPhone: in.EmergencyContactPhone,
		Status:                models.StatusScheduled,
		CreatedAt:             s.now().UTC(),
	}

	if err := s.appointments.CreateAppointment(ctx, appt); err != nil {
		return models.Appointment{}, err
	}
	log.Info().Str("appointment_id", appt.AppointmentID).Str("patient_id", appt.PatientID).Msg("appointment booked")
	metrics.RecordAppointment(metrics.AppointmentBooked)

	s.notifier.Emit(ctx, "New Appointment Booked",
		fmt.Sprintf("%s booked appointment with %s on %s at %s", sess.Email, appt.DoctorName, appt.Date, appt.Time))
	return appt, nil
}

// ListForPatient returns the session user's appointments in booking order.
func (s *BookingService) ListForPatient(ctx context.Context, sess session.Session) ([]models.Appointment, error) {
	if err := session.RequireRole(sess); err != nil {
		return nil, err
	}
	return s.appointments.ListAppointmentsForPatient(ctx, sess.UserID)
}

// Cancel cancels one of the session user's appointments. Appointments owned
// by someone else are reported as not found.
func (s *BookingService) Cancel(ctx context.Context, sess session.Session, appointmentID string) (models.Appointment, error) {
	if err := session.RequireRole(sess); err != nil {
		return models.Appointment{}, err
	}

	appt, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return models.Appointment{}, err
	}
	if appt.PatientID != sess.UserID {
		log.Warn().Str("appointment_id", appointmentID).Str("user_id", sess.UserID).Msg("cancel of foreign appointment refused")
		return models.Appointment{}, apperrors.NewNotFoundError(fmt.Sprintf("appointment %s not found", appointmentID))
	}

	if s.cancelDeletes {
		if err := s.appointments.DeleteAppointment(ctx, appointmentID); err != nil {
			return models.Appointment{}, err
		}
		now := s.now().UTC()
		appt.Status = models.StatusCancelled
		appt.CancelledAt = &now
	} else {
		appt, err = s.appointments.CancelAppointment(ctx, appointmentID)
		if err != nil {
			return models.Appointment{}, err
		}
	}

	metrics.RecordAppointment(metrics.AppointmentCancelled)
	s.notifier.Emit(ctx, "Appointment Cancelled",
		fmt.Sprintf("%s cancelled appointment %s", sess.Email, appointmentID))
	return appt, nil
}
