package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

const testSecret = "test-secret"

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return New(db, testSecret), mock, func() { db.Close() }
}

func TestCreateUserSuccess(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	created := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, created_at
	`)).
		WithArgs("ada@example.com", "Ada", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "created_at"}).
			AddRow(int64(1), "ada@example.com", "Ada", created))

	user, err := s.CreateUser(context.Background(), "  Ada@Example.com ", "hunter22", "Ada")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID != 1 || user.Email != "ada@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserNameDefaultsToLocalPart(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("ada@example.com", "ada", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "created_at"}).
			AddRow(int64(1), "ada@example.com", "ada", time.Now()))

	if _, err := s.CreateUser(context.Background(), "ada@example.com", "hunter22", ""); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if _, err := s.CreateUser(context.Background(), "ada@example.com", "hunter22", "Ada"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestCreateUserMissingFields(t *testing.T) {
	s, _, cleanup := newMockStore(t)
	defer cleanup()

	if _, err := s.CreateUser(context.Background(), "", "pw", ""); err == nil {
		t.Fatal("expected error for missing email")
	}
	if _, err := s.CreateUser(context.Background(), "a@b.c", "", ""); err == nil {
		t.Fatal("expected error for missing password")
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	// Stored hash for the password "password".
	hash := "$2a$10$sgOSV5PfCSSksuqVSa5jo.wzlKG90Og0Jk4VHTFWCmAup.qgu1gBC"

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE email = $1
	`)).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at"}).
			AddRow(int64(7), "ada@example.com", "Ada", []byte(hash), time.Now()))

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO sessions (token_id, user_id, expires_at)
		VALUES ($1, $2, $3)
	`)).
		WithArgs(sqlmock.AnyArg(), int64(7), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	token, user, err := s.Authenticate(context.Background(), "Ada@Example.com", "password")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
	if user.ID != 7 {
		t.Fatalf("unexpected user %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	hash := "$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC"
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, name, password_hash, created_at`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at"}).
			AddRow(int64(7), "ada@example.com", "Ada", []byte(hash), time.Now()))

	if _, _, err := s.Authenticate(context.Background(), "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, name, password_hash, created_at`)).
		WillReturnError(sql.ErrNoRows)

	if _, _, err := s.Authenticate(context.Background(), "ghost@example.com", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserByToken(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	token, tokenID, expiresAt, err := s.signToken(7)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT user_id, expires_at
		FROM sessions
		WHERE token_id = $1
	`)).
		WithArgs(tokenID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).AddRow(int64(7), expiresAt))

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, email, name, created_at
		FROM users
		WHERE id = $1
	`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "created_at"}).
			AddRow(int64(7), "ada@example.com", "Ada", time.Now()))

	user, err := s.UserByToken(context.Background(), token)
	if err != nil {
		t.Fatalf("UserByToken: %v", err)
	}
	if user.ID != 7 {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestUserByTokenRevoked(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	token, _, _, err := s.signToken(7)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	// No sessions row: the token was revoked by logout.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, expires_at`)).
		WillReturnError(sql.ErrNoRows)

	if _, err := s.UserByToken(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUserByTokenGarbage(t *testing.T) {
	s, _, cleanup := newMockStore(t)
	defer cleanup()

	if _, err := s.UserByToken(context.Background(), "not-a-jwt"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUserByTokenWrongSecret(t *testing.T) {
	s, _, cleanup := newMockStore(t)
	defer cleanup()

	other := New(nil, "other-secret")
	token, _, _, err := other.signToken(7)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := s.UserByToken(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	s, mock, cleanup := newMockStore(t)
	defer cleanup()

	token, tokenID, _, err := s.signToken(7)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM sessions
		WHERE token_id = $1
	`)).
		WithArgs(tokenID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.DeleteSession(context.Background(), token); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteSessionGarbageToken(t *testing.T) {
	s, _, cleanup := newMockStore(t)
	defer cleanup()

	// Garbage tokens never had a session; revoking them is a no-op.
	if err := s.DeleteSession(context.Background(), "junk"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
}
