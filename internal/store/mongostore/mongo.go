// Package mongostore implements store.Store on MongoDB. Users are keyed by
// email, appointments by appointment ID, and each collection carries the
// secondary index the listing and profile lookups need.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/medtrack-api/internal/apperrors"
	"github.com/harentsoaR/medtrack-api/internal/config"
	"github.com/harentsoaR/medtrack-api/internal/models"
	"github.com/harentsoaR/medtrack-api/internal/store"
)

const defaultOpTimeout = 5 * time.Second

// Collections names the three collections the store works with.
type Collections struct {
	Users        string
	Appointments string
	Records      string
}

type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	users        *mongo.Collection
	appointments *mongo.Collection
	records      *mongo.Collection
	opTimeout    time.Duration
}

var _ store.Store = (*Store)(nil)

// userDocument stores the email as the document key so the unique key
// constraint rejects a second signup with the same email.
type userDocument struct {
	Key         string `bson:"_id"`
	models.User `bson:",inline"`
}

// New wraps an already connected database.
func New(db *mongo.Database, names Collections, opTimeout time.Duration) *Store {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Store{
		client:       db.Client(),
		db:           db,
		users:        db.Collection(names.Users),
		appointments: db.Collection(names.Appointments),
		records:      db.Collection(names.Records),
		opTimeout:    opTimeout,
	}
}

// Connect dials MongoDB, verifies the connection and returns a store over cfg.Database.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return New(client.Database(cfg.Database), Collections{
		Users:        cfg.UsersTable,
		Appointments: cfg.AppointmentsTable,
		Records:      cfg.RecordsTable,
	}, cfg.OpTimeout), nil
}

func (s *Store) Name() string { return "mongodb" }

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return apperrors.NewBackendUnavailableError("ping", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Provision creates the secondary indexes for all three collections. It is
// idempotent; MongoDB creates missing collections on first index creation.
func (s *Store) Provision(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("UserIdIndex").SetUnique(true),
		}},
		{s.appointments, mongo.IndexModel{
			Keys:    bson.D{{Key: "patient_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("PatientIdIndex"),
		}},
		{s.records, mongo.IndexModel{
			Keys:    bson.D{{Key: "patient_id", Value: 1}},
			Options: options.Index().SetName("PatientIdIndex"),
		}},
	}

	for _, idx := range indexes {
		name, err := idx.coll.Indexes().CreateOne(ctx, idx.model)
		if err != nil {
			return apperrors.NewBackendUnavailableError(
				fmt.Sprintf("create index on %s", idx.coll.Name()), err)
		}
		log.Info().Str("collection", idx.coll.Name()).Str("index", name).Msg("index ready")
	}
	return nil
}

// IdentityStore implementation -------------------------------------------------

func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, bson.M{"_id": email}, fmt.Sprintf("user with email %q not found", email))
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (models.User, error) {
	return s.findUser(ctx, bson.M{"user_id": userID}, fmt.Sprintf("user %s not found", userID))
}

func (s *Store) findUser(ctx context.Context, filter bson.M, notFound string) (models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc userDocument
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return models.User{}, apperrors.NewBackendUnavailableError("find user", err)
	}
	return doc.User, nil
}

func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.users.InsertOne(ctx, userDocument{Key: user.Email, User: user})
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewDuplicateEmailError(user.Email)
	}
	if err != nil {
		return apperrors.NewBackendUnavailableError("create user", err)
	}
	return nil
}

// AppointmentStore implementation ----------------------------------------------

func (s *Store) CreateAppointment(ctx context.Context, appt models.Appointment) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC()
	}
	_, err := s.appointments.InsertOne(ctx, appt)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewInternalError(fmt.Sprintf("appointment %s already exists", appt.AppointmentID), err)
	}
	if err != nil {
		return apperrors.NewBackendUnavailableError("create appointment", err)
	}
	return nil
}

func (s *Store) GetAppointment(ctx context.Context, appointmentID string) (models.Appointment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var appt models.Appointment
	err := s.appointments.FindOne(ctx, bson.M{"_id": appointmentID}).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Appointment{}, apperrors.NewNotFoundError(fmt.Sprintf("appointment %s not found", appointmentID))
	}
	if err != nil {
		return models.Appointment{}, apperrors.NewBackendUnavailableError("get appointment", err)
	}
	return appt, nil
}

func (s *Store) ListAppointmentsForPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.appointments.Find(ctx, bson.M{"patient_id": patientID}, findOptions)
	if err != nil {
		return nil, apperrors.NewBackendUnavailableError("list appointments", err)
	}
	defer cursor.Close(ctx)

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, apperrors.NewBackendUnavailableError("decode appointments", err)
	}
	return appointments, nil
}

func (s *Store) CancelAppointment(ctx context.Context, appointmentID string) (models.Appointment, error) {
	opCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":       models.StatusCancelled,
		"cancelled_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var appt models.Appointment
	err := s.appointments.FindOneAndUpdate(opCtx,
		bson.M{"_id": appointmentID, "status": models.StatusScheduled}, update, opts).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// either missing or already cancelled
		return s.GetAppointment(ctx, appointmentID)
	}
	if err != nil {
		return models.Appointment{}, apperrors.NewBackendUnavailableError("cancel appointment", err)
	}
	return appt, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, appointmentID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.appointments.DeleteOne(ctx, bson.M{"_id": appointmentID}); err != nil {
		return apperrors.NewBackendUnavailableError("delete appointment", err)
	}
	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}
