package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskhive/pkg/config"
)

type fakeRepository struct {
	users map[primitive.ObjectID]*User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: make(map[primitive.ObjectID]*User)}
}

func (f *fakeRepository) Create(_ context.Context, u *User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id primitive.ObjectID) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepository) FindAll(_ context.Context) ([]User, error) {
	out := make([]User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeRepository) Update(_ context.Context, u *User) error {
	if _, ok := f.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeRepository) UpdateLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeRepository) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeRepository) CountActive(_ context.Context) (int64, error) {
	var n int64
	for _, u := range f.users {
		if u.IsActive {
			n++
		}
	}
	return n, nil
}

var testAuthCfg = config.AuthConfig{
	JWTSecret:      "test-secret",
	JWTExpiryHours: 1,
	JWTIssuer:      "taskhive-test",
	AdminCode:      "admin2025",
}

func newTestService(repo UserRepository) Service {
	return NewService(repo, testAuthCfg, zap.NewNop())
}

func registerInput() RegisterInput {
	return RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "s3cret-pass",
	}
}

func TestRegister(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	result, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	assert.Equal(t, "alice", result.User.Username)
	assert.Equal(t, "alice@example.com", result.User.Email, "email is lowercased")
	assert.Equal(t, RoleUser, result.User.Role)
	assert.True(t, result.User.IsActive)
	assert.NotEmpty(t, result.Token)

	// Password is stored hashed, never plain.
	assert.NotEqual(t, "s3cret-pass", result.User.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(result.User.PasswordHash), []byte("s3cret-pass")))
}

func TestRegisterWithAdminCode(t *testing.T) {
	svc := newTestService(newFakeRepository())

	input := registerInput()
	input.AdminCode = "admin2025"
	result, err := svc.Register(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, result.User.Role)

	// Wrong code silently grants the regular role.
	input = registerInput()
	input.Username = "bob"
	input.Email = "bob@example.com"
	input.AdminCode = "wrong"
	result, err = svc.Register(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, result.User.Role)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"missing username", func(in *RegisterInput) { in.Username = "" }, "username"},
		{"username too short", func(in *RegisterInput) { in.Username = "ab" }, "username"},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, "email"},
		{"malformed email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password = "12345" }, "password"},
	}

	svc := newTestService(newFakeRepository())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := registerInput()
			tt.mutate(&input)

			_, err := svc.Register(context.Background(), input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerInput())
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestLoginByEmailAndUsername(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	registered, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	byEmail, err := svc.Login(context.Background(), "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, byEmail.User.ID)
	assert.NotEmpty(t, byEmail.Token)
	assert.NotNil(t, byEmail.User.LastLogin)

	byUsername, err := svc.Login(context.Background(), "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, byUsername.User.ID)
}

func TestLoginFailures(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	registered, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown account is indistinguishable from bad password")

	_, err = svc.SetActive(context.Background(), registered.User.ID, false)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	registered, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	id := registered.User.ID

	err = svc.ChangePassword(context.Background(), id, "wrong", "new-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), id, "s3cret-pass", "short")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	err = svc.ChangePassword(context.Background(), id, "s3cret-pass", "new-password")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice", "new-password")
	assert.NoError(t, err)
}

func TestSetRole(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	registered, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	promoted, err := svc.SetRole(context.Background(), registered.User.ID, RoleAdmin)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())

	_, err = svc.SetRole(context.Background(), registered.User.ID, "superuser")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCounts(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	first, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	second := registerInput()
	second.Username = "bob"
	second.Email = "bob@example.com"
	_, err = svc.Register(context.Background(), second)
	require.NoError(t, err)

	_, err = svc.SetActive(context.Background(), first.User.ID, false)
	require.NoError(t, err)

	total, active, err := svc.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), active)
}
