package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/harentsoaR/medtrack-api/internal/apperrors"
	"github.com/harentsoaR/medtrack-api/internal/models"
	"github.com/harentsoaR/medtrack-api/internal/store"
)

// Store is an in-memory implementation of store.Store. It is safe for
// concurrent use and is intended for local development and tests.
type Store struct {
	mu           sync.RWMutex
	users        map[string]models.User
	userByEmail  map[string]string
	appointments map[string]models.Appointment
	// byPatient holds each patient's appointment IDs in booking order.
	byPatient map[string][]string
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]models.User),
		userByEmail:  make(map[string]string),
		appointments: make(map[string]models.Appointment),
		byPatient:    make(map[string][]string),
	}
}

func (s *Store) Name() string { return "memory" }

func (s *Store) Ping(context.Context) error { return nil }

// IdentityStore implementation -------------------------------------------------

func (s *Store) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.userByEmail[email]
	if !ok {
		return models.User{}, apperrors.NewNotFoundError(fmt.Sprintf("user with email %q not found", email))
	}
	return s.users[id], nil
}

func (s *Store) FindUserByID(_ context.Context, userID string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return models.User{}, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", userID))
	}
	return user, nil
}

func (s *Store) CreateUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// check and insert under one lock so concurrent signups cannot both win
	if _, exists := s.userByEmail[user.Email]; exists {
		return apperrors.NewDuplicateEmailError(user.Email)
	}
	if _, exists := s.users[user.UserID]; exists {
		return apperrors.NewInternalError(fmt.Sprintf("user %s already exists", user.UserID), nil)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	s.users[user.UserID] = user
	s.userByEmail[user.Email] = user.UserID
	return nil
}

// AppointmentStore implementation ----------------------------------------------

func (s *Store) CreateAppointment(_ context.Context, appt models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.appointments[appt.AppointmentID]; exists {
		return apperrors.NewInternalError(fmt.Sprintf("appointment %s already exists", appt.AppointmentID), nil)
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC()
	}

	s.appointments[appt.AppointmentID] = cloneAppointment(appt)
	s.byPatient[appt.PatientID] = append(s.byPatient[appt.PatientID], appt.AppointmentID)
	return nil
}

func (s *Store) GetAppointment(_ context.Context, appointmentID string) (models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appt, ok := s.appointments[appointmentID]
	if !ok {
		return models.Appointment{}, apperrors.NewNotFoundError(fmt.Sprintf("appointment %s not found", appointmentID))
	}
	return cloneAppointment(appt), nil
}

func (s *Store) ListAppointmentsForPatient(_ context.Context, patientID string) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byPatient[patientID]
	result := make([]models.Appointment, 0, len(ids))
	for _, id := range ids {
		// tolerate index entries whose record is gone
		if appt, ok := s.appointments[id]; ok {
			result = append(result, cloneAppointment(appt))
		}
	}
	return result, nil
}

func (s *Store) CancelAppointment(_ context.Context, appointmentID string) (models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appointments[appointmentID]
	if !ok {
		return models.Appointment{}, apperrors.NewNotFoundError(fmt.Sprintf("appointment %s not found", appointmentID))
	}
	if appt.Status == models.StatusCancelled {
		return cloneAppointment(appt), nil
	}

	now := time.Now().UTC()
	appt.Status = models.StatusCancelled
	appt.CancelledAt = &now
	s.appointments[appointmentID] = appt
	return cloneAppointment(appt), nil
}

func (s *Store) DeleteAppointment(_ context.Context, appointmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appointments[appointmentID]
	if !ok {
		return nil
	}
	delete(s.appointments, appointmentID)

	ids := s.byPatient[appt.PatientID]
	if i := slices.Index(ids, appointmentID); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	}
	if len(ids) == 0 {
		delete(s.byPatient, appt.PatientID)
	} else {
		s.byPatient[appt.PatientID] = ids
	}
	return nil
}

func cloneAppointment(appt models.Appointment) models.Appointment {
	if appt.CancelledAt != nil {
		t := *appt.CancelledAt
		appt.CancelledAt = &t
	}
	return appt
}
