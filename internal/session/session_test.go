package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medtrack-api/internal/apperrors"
	"github.com/harentsoaR/medtrack-api/internal/models"
)

func testUser(role models.Role) models.User {
	return models.User{
		UserID:    "u-1",
		Email:     "a@x.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      role,
	}
}

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", ttl)
	require.NoError(t, err)
	return m
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", 0)
	assert.Error(t, err)
}

func TestStartCurrentEnd(t *testing.T) {
	m := newTestManager(t, 0)

	token, sess, err := m.Start(testUser(models.RoleDoctor))
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Ada Lovelace", sess.Name)

	got, ok := m.Current(token)
	require.True(t, ok)
	assert.Equal(t, models.RoleDoctor, got.Role)
	assert.Equal(t, "u-1", got.UserID)

	m.End(token)
	_, ok = m.Current(token)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())

	// ending twice is harmless
	m.End(token)
}

func TestCurrentRejectsBadTokens(t *testing.T) {
	m := newTestManager(t, 0)
	token, _, err := m.Start(testUser(models.RolePatient))
	require.NoError(t, err)

	other, err := NewManager("another-secret", 0)
	require.NoError(t, err)
	foreign, _, err := other.Start(testUser(models.RolePatient))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"tampered", token + "x"},
		{"signed with another secret", foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := m.Current(tt.token)
			assert.False(t, ok)
		})
	}
}

func TestSessionsExpireAfterTTL(t *testing.T) {
	m := newTestManager(t, time.Hour)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	token, _, err := m.Start(testUser(models.RolePatient))
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	_, ok := m.Current(token)
	assert.True(t, ok)

	now = now.Add(time.Hour)
	_, ok = m.Current(token)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestConcurrentSessions(t *testing.T) {
	m := newTestManager(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, _, err := m.Start(testUser(models.RolePatient))
			if !assert.NoError(t, err) {
				return
			}
			_, ok := m.Current(token)
			assert.True(t, ok)
			m.End(token)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, m.Len())
}

func TestRequireRole(t *testing.T) {
	patient := Session{UserID: "u-1", Role: models.RolePatient}

	assert.NoError(t, RequireRole(patient))
	assert.NoError(t, RequireRole(patient, models.RolePatient))
	assert.True(t, apperrors.IsForbidden(RequireRole(patient, models.RoleDoctor)))
	assert.True(t, apperrors.IsUnauthorized(RequireRole(Session{}, models.RolePatient)))
}
