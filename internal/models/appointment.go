package models

import "time"

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCancelled AppointmentStatus = "cancelled"
)

const DefaultAppointmentType = "consultation"

type Appointment struct {
	AppointmentID         string            `bson:"_id" json:"appointment_id"`
	PatientID             string            `bson:"patient_id" json:"patient_id"`
	PatientName           string            `bson:"patient_name" json:"patient_name"`
	PatientEmail          string            `bson:"patient_email" json:"patient_email"`
	DoctorName            string            `bson:"doctor_name" json:"doctor_name"`
	Date                  string            `bson:"appointment_date" json:"appointment_date"`
	Time                  string            `bson:"appointment_time" json:"appointment_time"`
	Type                  string            `bson:"appointment_type" json:"appointment_type"`
	Reason                string            `bson:"reason" json:"reason"`
	AdditionalNotes       string            `bson:"additional_notes,omitempty" json:"additional_notes,omitempty"`
	EmergencyContactName  string            `bson:"emergency_contact_name,omitempty" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string            `bson:"emergency_contact_phone,omitempty" json:"emergency_contact_phone,omitempty"`
	Status                AppointmentStatus `bson:"status" json:"status"`
	CreatedAt             time.Time         `bson:"created_at" json:"created_at"`
	CancelledAt           *time.Time        `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
}
