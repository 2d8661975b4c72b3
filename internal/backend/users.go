// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is an account as returned to clients. The password hash never
// leaves the store.
type User struct {
	UserID         string `json:"userId"`
	Name           string `json:"name"`
	Age            string `json:"age"`
	Allergy        string `json:"allergy"`
	DietPreference string `json:"dietPreference"`
}

// bcryptCost is lowered in tests.
var bcryptCost = bcrypt.DefaultCost

// CreateUser stores u with a bcrypt hash of password.
func (s *Store) CreateUser(ctx context.Context, u User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, name, age, password_hash, allergy, diet_preference)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.UserID, u.Name, u.Age, string(hash), u.Allergy, u.DietPreference,
	)
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %s", ErrUserExists, u.UserID)
	}
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Authenticate returns the user whose password matches.
func (s *Store) Authenticate(ctx context.Context, userID, password string) (User, error) {
	var (
		u       User
		hash    string
		age     sql.NullString
		allergy sql.NullString
		diet    sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, name, age, password_hash, allergy, diet_preference FROM users WHERE user_id = ?`, userID,
	).Scan(&u.UserID, &u.Name, &age, &hash, &allergy, &diet)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("looking up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	u.Age, u.Allergy, u.DietPreference = age.String, allergy.String, diet.String
	return u, nil
}
