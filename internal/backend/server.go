// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/pdiddy/safebites/pkg/types"
)

const (
	statusOK      = "ok"
	statusError   = "error"
	statusSafe    = "safe"
	statusNotSafe = "not safe"
)

// Server exposes the store over HTTP.
type Server struct {
	store     *Store
	threshold float64
	log       io.Writer
}

// NewServer returns a server over store. Fuzzy matches must score above
// threshold; zero or less uses the default.
func NewServer(store *Store, threshold float64, log io.Writer) *Server {
	if threshold <= 0 {
		threshold = types.DefaultFuzzyThreshold
	}
	if log == nil {
		log = io.Discard
	}
	return &Server{store: store, threshold: threshold, log: log}
}

// Handler returns the service routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(cors)
	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/scanproduct", s.handleScanProduct).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost, http.MethodOptions)
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	fmt.Fprintf(s.log, "listening on %s\n", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "Server Running")
}

// scanResponse reports the matched product under both "productName" and
// the older "product" key.
type scanResponse struct {
	Status      string `json:"status"`
	ProductName string `json:"productName"`
	Product     string `json:"product"`
	Allergens   string `json:"allergens"`
}

type userResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	User    User   `json:"user"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleScanProduct(w http.ResponseWriter, r *http.Request) {
	fields, ok := readFields(w, r, "productName", "userAllergies")
	if !ok {
		return
	}
	name, allergies := fields["productName"], fields["userAllergies"]

	m, err := s.store.Lookup(r.Context(), name, s.threshold)
	if errors.Is(err, ErrProductNotFound) {
		fmt.Fprintf(s.log, "scan %q: not found\n", name)
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		fmt.Fprintf(s.log, "error: scan %q: %v\n", name, err)
		writeError(w, http.StatusInternalServerError, "Lookup failed")
		return
	}

	status := statusSafe
	if Intersects(allergies, m.Allergens) {
		status = statusNotSafe
	}
	fmt.Fprintf(s.log, "scan %q -> %q (score %.0f): %s\n", name, m.Name, m.Score, status)
	writeJSON(w, http.StatusOK, scanResponse{
		Status:      status,
		ProductName: m.Name,
		Product:     m.Name,
		Allergens:   m.Allergens,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	fields, ok := readFields(w, r, "name", "userId", "age", "password", "allergy", "dietPreference")
	if !ok {
		return
	}
	u := User{
		UserID:         fields["userId"],
		Name:           fields["name"],
		Age:            fields["age"],
		Allergy:        fields["allergy"],
		DietPreference: fields["dietPreference"],
	}

	err := s.store.CreateUser(r.Context(), u, fields["password"])
	if errors.Is(err, ErrUserExists) {
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		fmt.Fprintf(s.log, "error: register %q: %v\n", u.UserID, err)
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	fmt.Fprintf(s.log, "registered %s\n", u.UserID)
	writeJSON(w, http.StatusOK, userResponse{Status: statusOK, Message: "User Created Successfully", User: u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	fields, ok := readFields(w, r, "userId", "password")
	if !ok {
		return
	}

	u, err := s.store.Authenticate(r.Context(), fields["userId"], fields["password"])
	switch {
	case errors.Is(err, ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "Invalid credentials")
	case err != nil:
		fmt.Fprintf(s.log, "error: login %q: %v\n", fields["userId"], err)
		writeError(w, http.StatusInternalServerError, "Login failed")
	default:
		writeJSON(w, http.StatusOK, userResponse{Status: statusOK, Message: "Login successful", User: u})
	}
}

// readFields decodes a JSON object and returns the named fields as
// strings. Numbers are accepted and formatted. On a missing or invalid
// field it writes a 400 response and reports false.
func readFields(w http.ResponseWriter, r *http.Request, names ...string) (map[string]string, bool) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return nil, false
	}

	out := make(map[string]string, len(names))
	for _, name := range names {
		v, ok := raw[name]
		if !ok {
			writeError(w, http.StatusBadRequest, "Missing field: "+name)
			return nil, false
		}
		s, ok := stringValue(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid field: "+name)
			return nil, false
		}
		out[name] = s
	}
	return out, true
}

func stringValue(v json.RawMessage) (string, bool) {
	var s string
	if json.Unmarshal(v, &s) == nil {
		return s, true
	}
	var f float64
	if json.Unmarshal(v, &f) == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Status: statusError, Message: msg})
}
