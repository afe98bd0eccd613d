package models

import "time"

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Valid reports whether r is one of the two roles a user can register with.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

type User struct {
	UserID    string    `bson:"user_id" json:"user_id"`
	Email     string    `bson:"email" json:"email"`
	Password  string    `bson:"password" json:"-"` // Hide from JSON responses
	FirstName string    `bson:"first_name" json:"first_name"`
	LastName  string    `bson:"last_name" json:"last_name"`
	Phone     string    `bson:"phone" json:"phone"`
	Role      Role      `bson:"user_type" json:"user_type"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	// Patient profile
	Address          string `bson:"address,omitempty" json:"address,omitempty"`
	DateOfBirth      string `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	EmergencyContact string `bson:"emergency_contact,omitempty" json:"emergency_contact,omitempty"`

	// Doctor profile
	Specialization string `bson:"specialization,omitempty" json:"specialization,omitempty"`
	LicenseNumber  string `bson:"license_number,omitempty" json:"license_number,omitempty"`
	OfficeAddress  string `bson:"office_address,omitempty" json:"office_address,omitempty"`
}

// FullName is the display name carried in sessions and notifications.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
