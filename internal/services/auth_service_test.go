package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reverse-market/internal/models"
)

func registration(phone string, userType models.UserType) Registration {
	return Registration{
		PhoneNumber: phone,
		Password:    "secret123",
		FirstName:   "Ali",
		LastName:    "Jamal",
		DateOfBirth: time.Date(1995, 5, 5, 0, 0, 0, 0, time.UTC),
		Gender:      "male",
		City:        "Baghdad",
		District:    "Karrada",
		UserType:    userType,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	user, err := e.auth.Register(ctx, registration("0506666660", models.UserTypeBuyer))
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.True(t, user.IsStoreApproved)

	_, err = e.auth.Register(ctx, registration("0506666660", models.UserTypeBuyer))
	assert.ErrorIs(t, err, ErrPhoneTaken)

	logged, err := e.auth.Login(ctx, "0506666660", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = e.auth.Login(ctx, "0506666660", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.auth.Login(ctx, "0000000000", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = e.auth.Login(ctx, "0506666660", "secret123")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestRegisterSeller(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	in := registration("0506666661", models.UserTypeSeller)
	_, err := e.auth.Register(ctx, in)
	assert.ErrorIs(t, err, ErrStoreNameRequired)

	in.StoreName = strPtr("Ali Store")
	user, err := e.auth.Register(ctx, in)
	require.NoError(t, err)
	assert.False(t, user.IsStoreApproved)
	assert.Equal(t, "Ali Store", user.DisplayName())

	in = registration("0506666662", models.UserType(9))
	_, err = e.auth.Register(ctx, in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "user_type", verr.Field)
}
