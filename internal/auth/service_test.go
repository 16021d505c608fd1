package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/simplelender/backend/internal/apperror"
	"github.com/simplelender/backend/internal/auth"
	"github.com/simplelender/backend/internal/db"
	"github.com/simplelender/backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService() *auth.Service {
	jwtManager := auth.NewJWTManager("issuer", "aud", "secret")
	return auth.NewService(memory.NewStore().Users(), jwtManager, auth.NewBcryptHasher(bcrypt.MinCost), time.Hour)
}

func signUpInput() auth.SignUpInput {
	return auth.SignUpInput{
		FirstName:       "Ravi",
		LastName:        "Kumar",
		Email:           "Ravi@Example.com ",
		Phone:           "9999999999",
		Password:        "s3cret!",
		ConfirmPassword: "s3cret!",
	}
}

func TestSignUpThenSignIn(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	require.NoError(t, svc.SignUp(ctx, signUpInput()))

	res, err := svc.SignIn(ctx, "ravi@example.com", "s3cret!")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ravi@example.com", res.User.Email)
	assert.Empty(t, res.User.PasswordHash)

	user, err := svc.ResolveCurrentUser(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestSignUpDuplicateEmailConflicts(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	require.NoError(t, svc.SignUp(ctx, signUpInput()))

	err := svc.SignUp(ctx, signUpInput())
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestSignUpPasswordMismatch(t *testing.T) {
	svc := newAuthService()
	in := signUpInput()
	in.ConfirmPassword = "different"

	err := svc.SignUp(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "password_mismatch", apperror.From(err).Code)
}

func TestSignInWrongPassword(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	require.NoError(t, svc.SignUp(ctx, signUpInput()))

	_, err := svc.SignIn(ctx, "ravi@example.com", "wrong")
	assert.Equal(t, apperror.KindAuth, apperror.KindOf(err))

	_, err = svc.SignIn(ctx, "nobody@example.com", "s3cret!")
	assert.Equal(t, apperror.KindAuth, apperror.KindOf(err))
}

func TestResolveCurrentUserRejectsBadTokens(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.ResolveCurrentUser(ctx, "")
	assert.Equal(t, apperror.KindAuth, apperror.KindOf(err))

	_, err = svc.ResolveCurrentUser(ctx, "garbage")
	assert.Equal(t, apperror.KindAuth, apperror.KindOf(err))

	orphan, err := auth.NewJWTManager("issuer", "aud", "secret").Mint("u-x", "ghost@example.com", time.Minute)
	require.NoError(t, err)
	_, err = svc.ResolveCurrentUser(ctx, orphan)
	assert.Equal(t, apperror.KindAuth, apperror.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	require.NoError(t, svc.SignUp(ctx, signUpInput()))

	_, err := svc.UpdateProfile(ctx, "ravi@example.com", dbUpdate(nil, nil, nil))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	blank := "  "
	_, err = svc.UpdateProfile(ctx, "ravi@example.com", dbUpdate(&blank, nil, nil))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	phone := "8888888888"
	user, err := svc.UpdateProfile(ctx, "ravi@example.com", dbUpdate(nil, nil, &phone))
	require.NoError(t, err)
	assert.Equal(t, "8888888888", user.Phone)
	assert.Equal(t, "Ravi", user.FirstName)

	_, err = svc.UpdateProfile(ctx, "ghost@example.com", dbUpdate(nil, nil, &phone))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func dbUpdate(first, last, phone *string) db.ProfileUpdate {
	return db.ProfileUpdate{FirstName: first, LastName: last, Phone: phone}
}

func TestSignUpRequiresPhone(t *testing.T) {
	svc := newAuthService()
	in := signUpInput()
	in.Phone = "  "

	err := svc.SignUp(context.Background(), in)
	require.Error(t, err)
	fields := apperror.From(err).Fields
	require.Len(t, fields, 1)
	assert.Equal(t, "phone", fields[0].Field)
}
