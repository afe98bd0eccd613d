package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/medtrack-api/internal/apperrors"
	"github.com/harentsoaR/medtrack-api/internal/models"
	"github.com/harentsoaR/medtrack-api/internal/session"
	"github.com/harentsoaR/medtrack-api/internal/store"
	"github.com/harentsoaR/medtrack-api/internal/utils"
)

const eventTimeLayout = "2006-01-02 15:04:05"

// AccountService registers users and checks their credentials.
type AccountService struct {
	users     store.IdentityStore
	passwords utils.PasswordPolicy
	notifier  Notifier
	now       func() time.Time
}

func NewAccountService(users store.IdentityStore, passwords utils.PasswordPolicy, notifier Notifier) *AccountService {
	return &AccountService{users: users, passwords: passwords, notifier: notifier, now: time.Now}
}

// RegisterInput carries the signup form. Profile fields apply to the
// matching role only.
type RegisterInput struct {
	Role      models.Role `form:"user_type" json:"user_type"`
	Email     string      `form:"email" json:"email"`
	Password  string      `form:"password" json:"password"`
	FirstName string      `form:"first_name" json:"first_name"`
	LastName  string      `form:"last_name" json:"last_name"`
	Phone     string      `form:"phone" json:"phone"`

	Address          string `form:"address" json:"address"`
	DateOfBirth      string `form:"date_of_birth" json:"date_of_birth"`
	EmergencyContact string `form:"emergency_contact" json:"emergency_contact"`

	Specialization string `form:"specialization" json:"specialization"`
	LicenseNumber  string `form:"license_number" json:"license_number"`
	OfficeAddress  string `form:"office_address" json:"office_address"`
}

func (in RegisterInput) validate() error {
	required := []struct{ field, value string }{
		{"user_type", string(in.Role)},
		{"email", in.Email},
		{"password", in.Password},
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"phone", in.Phone},
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
	if !in.Role.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown user type %q", in.Role))
	}
	return nil
}

// Register creates a new account. A taken email yields a DuplicateEmail error
// and leaves the store unchanged.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := in.validate(); err != nil {
		return models.User{}, err
	}

	password, err := s.passwords.Hash(in.Password)
	if err != nil {
		return models.User{}, apperrors.NewInternalError("failed to hash password", err)
	}

	now := s.now()
	user := models.User{
		UserID:    uuid.NewString(),
		Email:     in.Email,
		Password:  password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Role:      in.Role,
		CreatedAt: now.UTC(),
	}
	switch in.Role {
	case models.RolePatient:
		user.Address = in.Address
		user.DateOfBirth = in.DateOfBirth
		user.EmergencyContact = in.EmergencyContact
	case models.RoleDoctor:
		user.Specialization = in.Specialization
		user.LicenseNumber = in.LicenseNumber
		user.OfficeAddress = in.OfficeAddress
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return models.User{}, err
	}
	log.Info().Str("user_id", user.UserID).Str("role", string(user.Role)).Msg("user registered")

	s.notifier.Emit(ctx, "New User Registered",
		fmt.Sprintf("%s (%s) registered at %s", user.Email, user.Role, now.Format(eventTimeLayout)))
	return user, nil
}

// Login returns the account matching email and password. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, apperrors.NewUnauthorizedError("Invalid email or password")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if apperrors.IsNotFound(err) {
		return models.User{}, apperrors.NewUnauthorizedError("Invalid email or password")
	}
	if err != nil {
		return models.User{}, err
	}
	if !s.passwords.Matches(password, user.Password) {
		return models.User{}, apperrors.NewUnauthorizedError("Invalid email or password")
	}

	s.notifier.Emit(ctx, "User Login",
		fmt.Sprintf("%s logged in at %s", email, s.now().Format(eventTimeLayout)))
	return user, nil
}

// Profile loads the account behind sess.
func (s *AccountService) Profile(ctx context.Context, sess session.Session) (models.User, error) {
	if err := session.RequireRole(sess); err != nil {
		return models.User{}, err
	}
	return s.users.FindUserByID(ctx, sess.UserID)
}

// Logout announces the end of sess. Ending the session itself is the
// session manager's job.
func (s *AccountService) Logout(ctx context.Context, sess session.Session) {
	email := sess.Email
	if email == "" {
		email = "Unknown"
	}
	s.notifier.Emit(ctx, "User Logout", email+" logged out")
}
