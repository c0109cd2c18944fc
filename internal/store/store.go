// Package store provides persistence backed by Postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserExists signals the email is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized indicates an invalid, expired, or revoked session.
	ErrUnauthorized = errors.New("unauthorized")

	dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")
)

const sessionTTL = 30 * 24 * time.Hour

// User is a registered account. Vibes are stamped with the owning user id.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Store provides persistence backed by Postgres. Session tokens are signed
// JWTs whose jti is recorded in the sessions table so logout revokes them
// server-side.
type Store struct {
	db        *sql.DB
	jwtSecret []byte
}

// New sets up a Store using the provided database handle and JWT secret.
func New(db *sql.DB, jwtSecret string) *Store {
	return &Store{db: db, jwtSecret: []byte(jwtSecret)}
}

// CreateUser registers a new user with a bcrypt-hashed password.
func (s *Store) CreateUser(ctx context.Context, email, password, name string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || password == "" {
		return User{}, fmt.Errorf("email and password are required")
	}
	if name == "" {
		// Match the display-name fallback the client applies.
		name = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	var user User
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, created_at
	`, email, name, hash).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// Authenticate validates credentials and returns a session token plus the user.
func (s *Store) Authenticate(ctx context.Context, email, password string) (string, User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		user User
		hash []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.Name, &hash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn a bcrypt comparison so response timing does not leak
			// whether the account exists.
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return "", User{}, ErrInvalidCredentials
		}
		return "", User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	token, tokenID, expiresAt, err := s.signToken(user.ID)
	if err != nil {
		return "", User{}, fmt.Errorf("create token: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token_id, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, tokenID, user.ID, expiresAt); err != nil {
		return "", User{}, fmt.Errorf("store session: %w", err)
	}

	return token, user, nil
}

// UserByToken resolves a session token to its user.
func (s *Store) UserByToken(ctx context.Context, token string) (User, error) {
	userID, _, err := s.verifyToken(ctx, token)
	if err != nil {
		return User{}, err
	}

	var user User
	err = s.db.QueryRowContext(ctx, `
		SELECT id, email, name, created_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUnauthorized
		}
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// UserIDForToken resolves a session token to the owning user id.
func (s *Store) UserIDForToken(ctx context.Context, token string) (int64, error) {
	userID, _, err := s.verifyToken(ctx, token)
	return userID, err
}

// DeleteSession revokes the session behind a token. Revoking an unknown or
// already-revoked token is not an error.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	tokenID, err := s.parseToken(token)
	if err != nil {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE token_id = $1
	`, tokenID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) signToken(userID int64) (token, tokenID string, expiresAt time.Time, err error) {
	tokenID = uuid.NewString()
	expiresAt = time.Now().Add(sessionTTL)

	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		ID:        tokenID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	return token, tokenID, expiresAt, err
}

// parseToken verifies the JWT signature and expiry and returns the jti.
func (s *Store) parseToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.ID == "" {
		return "", ErrUnauthorized
	}
	return claims.ID, nil
}

// verifyToken checks both the signature and the sessions table, so a token
// stays invalid after logout even before it expires.
func (s *Store) verifyToken(ctx context.Context, token string) (int64, string, error) {
	tokenID, err := s.parseToken(token)
	if err != nil {
		return 0, "", err
	}

	var (
		userID    int64
		expiresAt time.Time
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT user_id, expires_at
		FROM sessions
		WHERE token_id = $1
	`, tokenID).Scan(&userID, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrUnauthorized
		}
		return 0, "", fmt.Errorf("lookup session: %w", err)
	}
	if time.Now().After(expiresAt) {
		return 0, "", ErrUnauthorized
	}
	return userID, tokenID, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
