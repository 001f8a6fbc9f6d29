package users

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/bookbridge/bookbridge/pkg/errcodes"
	"github.com/bookbridge/bookbridge/pkg/migrations/identitydb"
	"github.com/bookbridge/bookbridge/pkg/models"
	"github.com/bookbridge/bookbridge/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTest(t *testing.T) (*bun.DB, token.Signer, *Service) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = identitydb.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	signer := token.NewSigner("test-secret", time.Hour, time.Minute)
	return db, signer, NewService(db, signer)
}

func createUser(t *testing.T, svc *Service, login, password, role string) *models.User {
	t.Helper()

	user := &models.User{Name: "Test User", Login: login, Role: role}
	require.NoError(t, svc.CreateUser(context.Background(), user, password))
	return user
}

func TestCreateUser(t *testing.T) {
	_, _, svc := setupTest(t)
	ctx := context.Background()

	user := createUser(t, svc, "jvaljean", "correct horse battery", models.RoleEditor)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.TokenSalt)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)

	got, err := svc.RetrieveUser(ctx, RetrieveUserOptions{ID: &user.ID})
	require.NoError(t, err)
	assert.Equal(t, "jvaljean", got.Login)
}

func TestCreateUserDuplicateLogin(t *testing.T) {
	_, _, svc := setupTest(t)
	ctx := context.Background()

	createUser(t, svc, "jvaljean", "correct horse battery", models.RoleEditor)

	err := svc.CreateUser(ctx, &models.User{Name: "Imposter", Login: "JValjean", Role: models.RoleViewer}, "another password")
	var appErr *errcodes.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "conflict", appErr.Code)
}

func TestRetrieveUserByLogin(t *testing.T) {
	_, _, svc := setupTest(t)
	ctx := context.Background()

	user := createUser(t, svc, "jvaljean", "correct horse battery", models.RoleEditor)

	login := "JVALJEAN"
	got, err := svc.RetrieveUser(ctx, RetrieveUserOptions{Login: &login})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	login = "nobody"
	_, err = svc.RetrieveUser(ctx, RetrieveUserOptions{Login: &login})
	assert.ErrorIs(t, err, errcodes.NotFound("User"))
}

func TestLogin(t *testing.T) {
	_, signer, svc := setupTest(t)
	ctx := context.Background()

	user := createUser(t, svc, "jvaljean", "correct horse battery", models.RoleEditor)

	sessionToken, err := svc.Login(ctx, "jvaljean", "correct horse battery")
	require.NoError(t, err)

	claims, err := signer.VerifySessionToken(sessionToken)
	require.NoError(t, err)
	assert.Equal(t, "jvaljean", claims.Login)
	assert.Equal(t, user.TokenSalt, claims.Salt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, _, svc := setupTest(t)
	ctx := context.Background()

	createUser(t, svc, "jvaljean", "correct horse battery", models.RoleEditor)

	_, err := svc.Login(ctx, "jvaljean", "wrong password")
	var appErr *errcodes.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "unauthorized", appErr.Code)

	_, err = svc.Login(ctx, "nobody", "correct horse battery")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "unauthorized", appErr.Code)
}

func TestExchangeToken(t *testing.T) {
	_, signer, svc := setupTest(t)
	ctx := context.Background()

	user := createUser(t, svc, "jvaljean", "correct horse battery", models.RoleEditor)

	sessionToken, err := svc.Login(ctx, "jvaljean", "correct horse battery")
	require.NoError(t, err)

	internalToken, err := svc.ExchangeToken(ctx, sessionToken)
	require.NoError(t, err)
	require.NotEmpty(t, internalToken)

	claims, err := signer.VerifyInternalToken(internalToken)
	require.NoError(t, err)
	assert.Equal(t, "jvaljean", claims.Login)
	assert.Equal(t, models.RoleEditor, claims.Role)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestExchangeTokenGarbage(t *testing.T) {
	_, _, svc := setupTest(t)

	internalToken, err := svc.ExchangeToken(context.Background(), "not-a-token")
	require.NoError(t, err)
	assert.Empty(t, internalToken)
}

func TestExchangeTokenAfterPasswordChange(t *testing.T) {
	_, _, svc := setupTest(t)
	ctx := context.Background()

	user := createUser(t, svc, "jvaljean", "correct horse battery", models.RoleEditor)

	sessionToken, err := svc.Login(ctx, "jvaljean", "correct horse battery")
	require.NoError(t, err)

	// rotating the salt via a password change revokes the session
	oldSalt := user.TokenSalt
	require.NoError(t, svc.ChangePassword(ctx, user, "new password here"))
	assert.NotEqual(t, oldSalt, user.TokenSalt)

	internalToken, err := svc.ExchangeToken(ctx, sessionToken)
	require.NoError(t, err)
	assert.Empty(t, internalToken)

	// a fresh login works with the new password
	sessionToken, err = svc.Login(ctx, "jvaljean", "new password here")
	require.NoError(t, err)

	internalToken, err = svc.ExchangeToken(ctx, sessionToken)
	require.NoError(t, err)
	assert.NotEmpty(t, internalToken)
}

func TestExchangeTokenDeletedUser(t *testing.T) {
	_, _, svc := setupTest(t)
	ctx := context.Background()

	user := createUser(t, svc, "jvaljean", "correct horse battery", models.RoleEditor)

	sessionToken, err := svc.Login(ctx, "jvaljean", "correct horse battery")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))

	internalToken, err := svc.ExchangeToken(ctx, sessionToken)
	require.NoError(t, err)
	assert.Empty(t, internalToken)
}

func TestDeleteUserIdempotent(t *testing.T) {
	_, _, svc := setupTest(t)
	ctx := context.Background()

	user := createUser(t, svc, "jvaljean", "correct horse battery", models.RoleEditor)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))
	require.NoError(t, svc.DeleteUser(ctx, user.ID))
}
