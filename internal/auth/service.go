package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/simplelender/backend/internal/apperror"
	"github.com/simplelender/backend/internal/db"
)

type Repository interface {
	CreateUser(ctx context.Context, in db.CreateUserInput) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	UpdateProfile(ctx context.Context, email string, in db.ProfileUpdate) (*db.User, error)
}

type Service struct {
	repo      Repository
	jwt       *JWTManager
	hasher    PasswordHasher
	accessTTL time.Duration
	validate  *validator.Validate
}

type SignUpInput struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

type SignInResult struct {
	Token     string
	ExpiresIn time.Duration
	User      *db.User
}

func NewService(repo Repository, jwt *JWTManager, hasher PasswordHasher, accessTTL time.Duration) *Service {
	return &Service{repo: repo, jwt: jwt, hasher: hasher, accessTTL: accessTTL, validate: validator.New()}
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) error {
	email := normalizeEmail(in.Email)
	var fields []apperror.FieldError
	if strings.TrimSpace(in.FirstName) == "" {
		fields = append(fields, apperror.FieldError{Field: "first_name", Message: "required"})
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields = append(fields, apperror.FieldError{Field: "last_name", Message: "required"})
	}
	if s.validate.Var(email, "required,email") != nil {
		fields = append(fields, apperror.FieldError{Field: "email", Message: "must be a valid email"})
	}
	if strings.TrimSpace(in.Phone) == "" {
		fields = append(fields, apperror.FieldError{Field: "phone", Message: "required"})
	}
	if in.Password == "" {
		fields = append(fields, apperror.FieldError{Field: "password", Message: "required"})
	}
	if len(fields) > 0 {
		return apperror.Validation("invalid_signup", "Validation error", fields...)
	}
	if in.Password != in.ConfirmPassword {
		return apperror.Validation("password_mismatch", "Passwords do not match")
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return apperror.Conflict("user_exists", "User already exists")
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		return apperror.Internal("signup_failed", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return apperror.Internal("signup_failed", err)
	}

	_, err = s.repo.CreateUser(ctx, db.CreateUserInput{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			return apperror.Conflict("user_exists", "User already exists")
		}
		return apperror.Internal("signup_failed", err)
	}
	return nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, apperror.Auth("invalid_credentials", "Invalid credentials")
		}
		return nil, apperror.Internal("signin_failed", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperror.Auth("invalid_credentials", "Invalid credentials")
	}

	token, err := s.jwt.Mint(user.ID, user.Email, s.accessTTL)
	if err != nil {
		return nil, apperror.Internal("signin_failed", err)
	}
	return &SignInResult{Token: token, ExpiresIn: s.accessTTL, User: withoutPassword(user)}, nil
}

// ResolveCurrentUser maps a bearer token to the stored user it was issued for.
func (s *Service) ResolveCurrentUser(ctx context.Context, token string) (*db.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperror.Auth("missing_token", "Invalid or missing Authorization header")
	}
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, apperror.Auth("invalid_token", "Could not validate token")
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, apperror.Auth("invalid_token", "Token payload invalid")
	}

	user, err := s.repo.GetUserByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, apperror.Auth("user_not_found", "User not found")
		}
		return nil, apperror.Internal("resolve_user_failed", err)
	}
	return withoutPassword(user), nil
}

func (s *Service) UpdateProfile(ctx context.Context, email string, in db.ProfileUpdate) (*db.User, error) {
	if in.Empty() {
		return nil, apperror.Validation("empty_update", "No fields provided for update")
	}
	clean := db.ProfileUpdate{}
	var fields []apperror.FieldError
	trim := func(name string, v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		if t == "" {
			fields = append(fields, apperror.FieldError{Field: name, Message: "must not be empty"})
		}
		return &t
	}
	clean.FirstName = trim("first_name", in.FirstName)
	clean.LastName = trim("last_name", in.LastName)
	clean.Phone = trim("phone", in.Phone)
	if len(fields) > 0 {
		return nil, apperror.Validation("invalid_profile", "Validation error", fields...)
	}

	user, err := s.repo.UpdateProfile(ctx, normalizeEmail(email), clean)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, apperror.NotFound("user_not_found", "User not found")
		}
		return nil, apperror.Internal("update_profile_failed", err)
	}
	return withoutPassword(user), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func withoutPassword(u *db.User) *db.User {
	cp := *u
	cp.PasswordHash = ""
	return &cp
}
