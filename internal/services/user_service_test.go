package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndLookupUsers(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(setupTestDB(t), nil)

	user := &models.User{Email: "sam@example.com", Name: "Sam"}
	require.NoError(t, svc.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.UserActive, user.Status)

	err := svc.CreateUser(ctx, &models.User{Email: "sam@example.com"})
	assert.ErrorIs(t, err, models.ErrDuplicate)
	err = svc.CreateUser(ctx, &models.User{})
	assert.ErrorIs(t, err, models.ErrValidation)

	byEmail, err := svc.GetUserByEmail(ctx, "sam@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := svc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", byID.Name)

	_, err = svc.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestSetStatusNotifiesUser(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	mailbox := NewNotificationService(repository.NewGormMailboxRepository(db))
	svc := NewUserService(db, mailbox)
	require.NoError(t, svc.CreateUser(ctx, &models.User{ID: "u1", Email: "u1@example.com"}))
	require.NoError(t, svc.CreateUser(ctx, &models.User{ID: "admin", Email: "admin@example.com", IsAdmin: true}))

	_, err := svc.SetStatus(ctx, customer, "u1", models.UserSuspended)
	assert.ErrorIs(t, err, models.ErrNotPermitted)
	_, err = svc.SetStatus(ctx, admin, "u1", "Banned")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.SetStatus(ctx, admin, "admin", models.UserSuspended)
	assert.ErrorIs(t, err, models.ErrNotPermitted)
	_, err = svc.SetStatus(ctx, admin, "ghost", models.UserSuspended)
	assert.ErrorIs(t, err, models.ErrRecordNotFound)

	user, err := svc.SetStatus(ctx, admin, "u1", models.UserSuspended)
	require.NoError(t, err)
	assert.True(t, user.Suspended())

	stored, err := svc.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.UserSuspended, stored.Status)

	_, err = svc.SetStatus(ctx, admin, "u1", models.UserSuspended)
	require.NoError(t, err)

	box, err := mailbox.Mailbox(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, box, 1, "repeating the same status does not notify again")
	assert.Equal(t, "Your account has been suspended.", box[0].Text)
	assert.Equal(t, models.MessageAlert, box[0].Type)

	_, err = svc.SetStatus(ctx, admin, "u1", models.UserActive)
	require.NoError(t, err)
	box, err = mailbox.Mailbox(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, box, 2)
	assert.Equal(t, "Your account has been reactivated.", box[0].Text)
}

func TestListUsersRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(setupTestDB(t), nil)
	require.NoError(t, svc.CreateUser(ctx, &models.User{ID: "u1", Email: "u1@example.com"}))

	_, err := svc.ListUsers(ctx, customer)
	assert.ErrorIs(t, err, models.ErrNotPermitted)

	users, err := svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestClientService(t *testing.T) {
	ctx := context.Background()
	svc := NewClientService(setupTestDB(t))

	err := svc.CreateClient(ctx, &models.OAuthClient{ID: "c0", Secret: "x"})
	assert.ErrorIs(t, err, models.ErrValidation)

	require.NoError(t, svc.CreateClient(ctx, &models.OAuthClient{ID: "c1", Secret: "x", UserID: "u1"}))
	require.NoError(t, svc.CreateClient(ctx, &models.OAuthClient{ID: "c2", Secret: "x", UserID: "u2"}))

	mine, err := svc.GetClientsByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "c1", mine[0].ID)

	got, err := svc.GetClientByID(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "u2", got.UserID)

	assert.ErrorIs(t, svc.DeleteClient(ctx, "c2", "u1"), models.ErrRecordNotFound)
	require.NoError(t, svc.DeleteClient(ctx, "c1", "u1"))
	_, err = svc.GetClientByID(ctx, "c1")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}
