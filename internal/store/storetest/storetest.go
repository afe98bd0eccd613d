// Package storetest holds the behavior every store.Store backend must share.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medtrack-api/internal/apperrors"
	"github.com/harentsoaR/medtrack-api/internal/models"
	"github.com/harentsoaR/medtrack-api/internal/store"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// NewPatient builds a patient with a unique email.
func NewPatient(email string) models.User {
	if email == "" {
		email = fmt.Sprintf("patient-%s@test.com", uuid.NewString()[:8])
	}
	return models.User{
		UserID:    uuid.NewString(),
		Email:     email,
		Password:  "p",
		FirstName: "Test",
		LastName:  "Patient",
		Role:      models.RolePatient,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// NewAppointment builds a scheduled appointment owned by patientID.
func NewAppointment(patientID, doctor, date string) models.Appointment {
	return models.Appointment{
		AppointmentID: uuid.NewString(),
		PatientID:     patientID,
		DoctorName:    doctor,
		Date:          date,
		Time:          "09:30",
		Type:          models.DefaultAppointmentType,
		Reason:        "checkup",
		Status:        models.StatusScheduled,
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
}

// Run exercises the shared store contract against the backend built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("create then find by email", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		u := NewPatient("")
		u.Address = "1 Main St"

		require.NoError(t, s.CreateUser(ctx, u))

		got, err := s.FindUserByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.Equal(t, u, got)

		byID, err := s.FindUserByID(ctx, u.UserID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindUserByEmail(context.Background(), "nobody@nowhere.com")
		assert.True(t, apperrors.IsNotFound(err), "got %v", err)

		_, err = s.FindUserByID(context.Background(), uuid.NewString())
		assert.True(t, apperrors.IsNotFound(err), "got %v", err)
	})

	t.Run("duplicate email is rejected and store unchanged", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		first := NewPatient("")
		require.NoError(t, s.CreateUser(ctx, first))

		second := NewPatient(first.Email)
		second.FirstName = "Other"
		err := s.CreateUser(ctx, second)
		assert.True(t, apperrors.IsDuplicateEmail(err), "got %v", err)

		got, err := s.FindUserByEmail(ctx, first.Email)
		require.NoError(t, err)
		assert.Equal(t, first.UserID, got.UserID)
		_, err = s.FindUserByID(ctx, second.UserID)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("concurrent signups with one email admit exactly one", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		email := fmt.Sprintf("race-%s@test.com", uuid.NewString()[:8])

		const n = 10
		var wg sync.WaitGroup
		results := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- s.CreateUser(ctx, NewPatient(email))
			}()
		}
		wg.Wait()
		close(results)

		successes, conflicts := 0, 0
		for err := range results {
			switch {
			case err == nil:
				successes++
			case apperrors.IsDuplicateEmail(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, n-1, conflicts)
	})

	t.Run("appointment listed exactly once for its patient", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := NewPatient("")
		other := NewPatient("")
		require.NoError(t, s.CreateUser(ctx, p))
		require.NoError(t, s.CreateUser(ctx, other))

		a1 := NewAppointment(p.UserID, "Dr. X", "2024-01-01")
		a2 := NewAppointment(p.UserID, "Dr. Y", "2024-01-02")
		a2.CreatedAt = a1.CreatedAt.Add(time.Second)
		foreign := NewAppointment(other.UserID, "Dr. X", "2024-01-01")
		for _, a := range []models.Appointment{a1, a2, foreign} {
			require.NoError(t, s.CreateAppointment(ctx, a))
		}

		list, err := s.ListAppointmentsForPatient(ctx, p.UserID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, a1.AppointmentID, list[0].AppointmentID)
		assert.Equal(t, a2.AppointmentID, list[1].AppointmentID)
		assert.Equal(t, models.StatusScheduled, list[0].Status)

		empty, err := s.ListAppointmentsForPatient(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("delete removes from listing and is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := NewPatient("")
		require.NoError(t, s.CreateUser(ctx, p))
		a := NewAppointment(p.UserID, "Dr. X", "2024-01-01")
		require.NoError(t, s.CreateAppointment(ctx, a))

		require.NoError(t, s.DeleteAppointment(ctx, a.AppointmentID))
		require.NoError(t, s.DeleteAppointment(ctx, a.AppointmentID))
		require.NoError(t, s.DeleteAppointment(ctx, uuid.NewString()))

		list, err := s.ListAppointmentsForPatient(ctx, p.UserID)
		require.NoError(t, err)
		assert.Empty(t, list)

		_, err = s.GetAppointment(ctx, a.AppointmentID)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("soft cancel keeps the record and is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := NewPatient("")
		require.NoError(t, s.CreateUser(ctx, p))
		a := NewAppointment(p.UserID, "Dr. X", "2024-01-01")
		require.NoError(t, s.CreateAppointment(ctx, a))

		cancelled, err := s.CancelAppointment(ctx, a.AppointmentID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, cancelled.Status)
		require.NotNil(t, cancelled.CancelledAt)

		again, err := s.CancelAppointment(ctx, a.AppointmentID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, again.Status)

		list, err := s.ListAppointmentsForPatient(ctx, p.UserID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.StatusCancelled, list[0].Status)

		_, err = s.CancelAppointment(ctx, uuid.NewString())
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("booking scenario", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		email := fmt.Sprintf("a-%s@x.com", uuid.NewString()[:8])
		a := NewPatient(email)
		require.NoError(t, s.CreateUser(ctx, a))

		found, err := s.FindUserByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, a.UserID, found.UserID)

		err = s.CreateUser(ctx, NewPatient(email))
		assert.True(t, apperrors.IsDuplicateEmail(err))

		appt := NewAppointment(a.UserID, "Dr. X", "2024-01-01")
		require.NoError(t, s.CreateAppointment(ctx, appt))

		list, err := s.ListAppointmentsForPatient(ctx, a.UserID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, appt.AppointmentID, list[0].AppointmentID)
		assert.Equal(t, models.StatusScheduled, list[0].Status)

		require.NoError(t, s.DeleteAppointment(ctx, appt.AppointmentID))
		list, err = s.ListAppointmentsForPatient(ctx, a.UserID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
