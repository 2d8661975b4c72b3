// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session persists the logged-in user record and exposes the
// user's allergen profile read-only. Login and signup write the record;
// logout removes it. Nothing in the scan pipeline writes it.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/safebites/pkg/types"
)

// ErrNoSession is returned when no user is logged in.
var ErrNoSession = errors.New("not logged in")

// Age is the user's age as entered at signup. The service stores whatever
// the client sent, so both JSON strings and numbers are accepted.
type Age string

// UnmarshalJSON accepts "34" and 34.
func (a *Age) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = Age(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("age: %w", err)
	}
	*a = Age(n.String())
	return nil
}

// Int returns the age as an integer, or 0 if it is not numeric.
func (a Age) Int() int {
	n, _ := strconv.Atoi(strings.TrimSpace(string(a)))
	return n
}

// User is the record returned by the service on login or signup.
type User struct {
	UserID         string `json:"userId"`
	Name           string `json:"name"`
	Age            Age    `json:"age"`
	Allergy        string `json:"allergy"`
	DietPreference string `json:"dietPreference"`
}

// Profile parses the user's comma-separated allergy field.
func (u User) Profile() types.AllergenProfile {
	return types.ParseAllergens(u.Allergy)
}

// Store keeps the session record in a single JSON file.
type Store struct {
	path string
}

// NewStore returns a store backed by path. The file need not exist.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns ~/.config/safebites/session.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", "safebites", "session.json"), nil
}

// Path returns the session file location.
func (s *Store) Path() string { return s.path }

// Load reads the stored user. It returns ErrNoSession when nobody is logged in.
func (s *Store) Load() (User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return User{}, ErrNoSession
		}
		return User{}, fmt.Errorf("reading session: %w", err)
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}, fmt.Errorf("parsing session %s: %w", s.path, err)
	}
	return u, nil
}

// Save replaces the stored user. The file is written to a temporary name
// and renamed so a reader never sees a partial record.
func (s *Store) Save(u User) error {
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("creating session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// Clear logs out. Clearing an absent session is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

// Profile returns the logged-in user's allergens. It reports false when
// nobody is logged in, the record is unreadable, or the user lists no
// allergens.
func (s *Store) Profile() (types.AllergenProfile, bool) {
	u, err := s.Load()
	if err != nil {
		return types.AllergenProfile{}, false
	}
	p := u.Profile()
	return p, !p.IsEmpty()
}
