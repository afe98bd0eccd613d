// Package store defines the storage contracts shared by the in-memory and
// MongoDB backends. Route and service code depends only on these interfaces.
package store

import (
	"context"

	"github.com/harentsoaR/medtrack-api/internal/models"
)

// IdentityStore persists user records. Users are never updated or deleted.
type IdentityStore interface {
	// FindUserByEmail returns a NotFound error when no user has the email.
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, userID string) (models.User, error)
	// CreateUser returns a DuplicateEmail error and leaves the store unchanged
	// when the email is already registered.
	CreateUser(ctx context.Context, user models.User) error
}

// AppointmentStore persists appointments and their owning-patient relation.
type AppointmentStore interface {
	CreateAppointment(ctx context.Context, appt models.Appointment) error
	GetAppointment(ctx context.Context, appointmentID string) (models.Appointment, error)
	// ListAppointmentsForPatient returns the patient's appointments in booking order.
	ListAppointmentsForPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	// CancelAppointment marks the appointment cancelled and returns it.
	CancelAppointment(ctx context.Context, appointmentID string) (models.Appointment, error)
	// DeleteAppointment succeeds whether or not the appointment exists.
	DeleteAppointment(ctx context.Context, appointmentID string) error
}

// Store is the full storage surface handed to services.
type Store interface {
	IdentityStore
	AppointmentStore

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Name identifies the backend in logs and health output.
	Name() string
}
