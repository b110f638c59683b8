package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskhive/pkg/config"
	"taskhive/pkg/security/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("account is deactivated")
)

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	AdminCode string
}

type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Avatar    *string
}

// AuthResult pairs an authenticated user with a freshly issued token.
type AuthResult struct {
	User  *User
	Token string
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, input UpdateProfileInput) (*User, error)
	ChangePassword(ctx context.Context, id primitive.ObjectID, current, next string) error

	// Admin surface
	ListUsers(ctx context.Context) ([]User, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*User, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role Role) (*User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	Counts(ctx context.Context) (total, active int64, err error)
}

type service struct {
	repo    UserRepository
	authCfg config.AuthConfig
	logger  *zap.Logger
}

func NewService(repo UserRepository, authCfg config.AuthConfig, logger *zap.Logger) Service {
	return &service{repo: repo, authCfg: authCfg, logger: logger}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := RoleUser
	if input.AdminCode != "" && input.AdminCode == s.authCfg.AdminCode {
		role = RoleAdmin
	}

	now := time.Now()
	u := &User{
		ID:           primitive.NewObjectID(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		Profile: Profile{
			FirstName: input.FirstName,
			LastName:  input.LastName,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", string(u.Role)))

	return &AuthResult{User: u, Token: token}, nil
}

// Login accepts either an email address or a username as identifier.
func (s *service) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)

	var u *User
	var err error
	if strings.Contains(identifier, "@") {
		u, err = s.repo.FindByEmail(ctx, strings.ToLower(identifier))
	} else {
		u, err = s.repo.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}

	now := time.Now()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.logger.Warn("failed to record last login", zap.Error(err))
	}
	u.LastLogin = &now

	token, err := s.issueToken(u)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: u, Token: token}, nil
}

func (s *service) GetUser(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id primitive.ObjectID, input UpdateProfileInput) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		u.Profile.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		u.Profile.LastName = *input.LastName
	}
	if input.Avatar != nil {
		u.Profile.Avatar = *input.Avatar
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ChangePassword(ctx context.Context, id primitive.ObjectID, current, next string) error {
	if len(next) < minPasswordLen {
		verr := &ValidationError{}
		verr.add("password", "password must be at least 6 characters")
		return verr
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()

	return s.repo.Update(ctx, u)
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsActive = active
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user active flag changed",
		zap.String("user_id", id.Hex()),
		zap.Bool("active", active))
	return u, nil
}

func (s *service) SetRole(ctx context.Context, id primitive.ObjectID, role Role) (*User, error) {
	if !role.IsValid() {
		verr := &ValidationError{}
		verr.add("role", "role must be user or admin")
		return nil, verr
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Role = role
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) Counts(ctx context.Context) (int64, int64, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	active, err := s.repo.CountActive(ctx)
	if err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

func (s *service) issueToken(u *User) (string, error) {
	return auth.GenerateToken(u.ID.Hex(), string(u.Role),
		s.authCfg.JWTSecret, s.authCfg.JWTIssuer, s.authCfg.JWTExpiryHours)
}

func validateRegistration(input RegisterInput) error {
	verr := &ValidationError{}

	switch {
	case input.Username == "":
		verr.add("username", "username is required")
	case len(input.Username) < minUsernameLen || len(input.Username) > maxUsernameLen:
		verr.add("username", "username must be between 3 and 30 characters")
	}
	if input.Email == "" {
		verr.add("email", "email is required")
	} else if !strings.Contains(input.Email, "@") {
		verr.add("email", "email is not valid")
	}
	if len(input.Password) < minPasswordLen {
		verr.add("password", "password must be at least 6 characters")
	}

	return verr.orNil()
}
