package account

import (
	"bytes"
	"encoding/base64"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/disintegration/imaging"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestCreateValidatesBeforeTouchingDB(t *testing.T) {
	cases := map[string]Input{
		"short username": {Username: "bob", Name: "Bob", Email: "bob@example.com", PhoneNumber: "081234567890", Password: "secret123"},
		"bad email":      {Username: "bobby", Name: "Bob", Email: "bob", PhoneNumber: "081234567890", Password: "secret123"},
		"phone letters":  {Username: "bobby", Name: "Bob", Email: "bob@example.com", PhoneNumber: "0812-3456-789", Password: "secret123"},
		"phone short":    {Username: "bobby", Name: "Bob", Email: "bob@example.com", PhoneNumber: "0812345", Password: "secret123"},
		"password short": {Username: "bobby", Name: "Bob", Email: "bob@example.com", PhoneNumber: "081234567890", Password: "secret"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Create(nil, in, "")
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, apperr.Validation, apperr.KindOf(err))
		})
	}
}

func TestCreateRejectsTakenUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE username = $1`)).
		WithArgs("bobby").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := Create(db, Input{Username: " bobby ", Name: "Bob", Email: "bob@example.com", PhoneNumber: "081234567890", Password: "secret123"}, "")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUniqueToConflict(t *testing.T) {
	err := uniqueToConflict(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "idx_users_email"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	err = uniqueToConflict(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "idx_users_phone_number"})
	assert.ErrorIs(t, err, ErrPhoneTaken)

	err = uniqueToConflict(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	db, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
		WithArgs("alice", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "hashed_password", "role_id"}).
			AddRow("u-1", "alice", hash, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "roles" WHERE "roles"."id" = $1`)).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, models.RoleUser))

	user, err := Authenticate(db, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, models.RoleUser, RoleName(user))
}

func TestAuthenticateFailures(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	db, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "hashed_password"}))
	_, err = Authenticate(db, "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "hashed_password"}).AddRow("u-1", "alice", hash))
	_, err = Authenticate(db, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, apperr.Unauthenticated, apperr.KindOf(err))
}

func TestDefaultAvatarIsJPEGDataURI(t *testing.T) {
	uri, err := DefaultAvatar("alice")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, avatarSize, img.Bounds().Dx())

	other, err := DefaultAvatar("bob")
	require.NoError(t, err)
	assert.NotEqual(t, uri, other)
}
