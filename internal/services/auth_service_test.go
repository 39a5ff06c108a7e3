package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
)

type memUsers struct {
	byLogin map[string]models.User
	nextID  int64
}

func newMemUsers() *memUsers { return &memUsers{byLogin: map[string]models.User{}, nextID: 1} }

func (m *memUsers) FindByLogin(_ context.Context, login string) (models.User, error) {
	u, ok := m.byLogin[login]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (m *memUsers) Exists(_ context.Context, email, username string) (bool, error) {
	_, a := m.byLogin[email]
	_, b := m.byLogin[username]
	return a || b, nil
}

func (m *memUsers) Create(_ context.Context, u models.User) (models.User, error) {
	u.ID = m.nextID
	u.Status = "active"
	m.nextID++
	m.byLogin[u.Email] = u
	m.byLogin[u.Username] = u
	return u, nil
}

var secret = []byte("test-secret")

func TestRegisterAndLogin(t *testing.T) {
	users := newMemUsers()
	svc := AuthService{Users: users, Secret: secret}

	u, err := svc.Register(context.Background(), RegisterInput{Name: "Ana", Username: "ana", Email: " Ana@Example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")))

	_, err = svc.Register(context.Background(), RegisterInput{Username: "ana", Email: "other@example.com", Password: "12345678"})
	assert.True(t, domain.IsConflict(err))

	token, got, err := svc.Login(context.Background(), "ana", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)

	_, _, err = svc.Login(context.Background(), "ana", "wrong password")
	assert.True(t, domain.IsUnauthorized(err))
	_, _, err = svc.Login(context.Background(), "nobody", "whatever1")
	assert.True(t, domain.IsUnauthorized(err))
}

func TestRegisterValidation(t *testing.T) {
	svc := AuthService{Users: newMemUsers(), Secret: secret}
	cases := []RegisterInput{
		{Username: "", Email: "a@example.com", Password: "12345678"},
		{Username: "a", Email: "not-an-email", Password: "12345678"},
		{Username: "a", Email: "a@example.com", Password: "short"},
	}
	for _, in := range cases {
		_, err := svc.Register(context.Background(), in)
		assert.True(t, domain.IsValidation(err), "input %+v", in)
	}
}

func TestParseTokenRejects(t *testing.T) {
	expired, err := IssueToken(secret, 1, "user", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = ParseToken(secret, expired)
	assert.Error(t, err)

	valid, err := IssueToken(secret, 1, "user", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = ParseToken([]byte("other-secret"), valid)
	assert.Error(t, err)

	anonymous, err := IssueToken(secret, 0, "user", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = ParseToken(secret, anonymous)
	assert.Error(t, err)

	_, err = ParseToken(secret, "garbage")
	assert.Error(t, err)
}
