package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/harentsoaR/medtrack-api/internal/models"
)

// DemoPassword is the credential of both demo accounts.
const DemoPassword = "password123"

// SeedDemoData registers one demo patient and one demo doctor for local use.
// The password is passed through hash so the seeded accounts match the
// configured credential policy.
func SeedDemoData(ctx context.Context, s *Store, hash func(string) (string, error)) error {
	password, err := hash(DemoPassword)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	demo := []models.User{
		{
			UserID:           uuid.NewString(),
			Email:            "patient@demo.com",
			Password:         password,
			FirstName:        "John",
			LastName:         "Doe",
			Phone:            "(555) 123-4567",
			Role:             models.RolePatient,
			Address:          "123 Main St, City, State 12345",
			DateOfBirth:      "1990-01-15",
			EmergencyContact: "(555) 987-6543",
			CreatedAt:        now,
		},
		{
			UserID:         uuid.NewString(),
			Email:          "doctor@demo.com",
			Password:       password,
			FirstName:      "Sarah",
			LastName:       "Johnson",
			Phone:          "(555) 456-7890",
			Role:           models.RoleDoctor,
			Specialization: "General Medicine",
			LicenseNumber:  "MD123456",
			OfficeAddress:  "456 Medical Center Dr, City, State 12345",
			CreatedAt:      now,
		},
	}

	for _, u := range demo {
		if err := s.CreateUser(ctx, u); err != nil {
			return err
		}
	}
	return nil
}
