// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/safebites/internal/httputil"
)

// Client performs the login and signup exchanges against the service.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
}

// SignupRequest carries every field the service requires at registration.
type SignupRequest struct {
	Name           string `json:"name"`
	UserID         string `json:"userId"`
	Age            string `json:"age"`
	Password       string `json:"password"`
	Allergy        string `json:"allergy"`
	DietPreference string `json:"dietPreference"`
}

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type authResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	User    User   `json:"user"`
}

// Login exchanges credentials for the user record.
func (c *Client) Login(ctx context.Context, userID, password string) (User, error) {
	if userID == "" || password == "" {
		return User{}, errors.New("please enter both user ID and password")
	}
	return c.post(ctx, "/login", loginRequest{UserID: userID, Password: password})
}

// Signup registers a new user and returns the stored record.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (User, error) {
	if req.UserID == "" || req.Password == "" || req.Name == "" {
		return User{}, errors.New("name, user ID and password are required")
	}
	return c.post(ctx, "/register", req)
}

func (c *Client) post(ctx context.Context, path string, body any) (User, error) {
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	url := strings.TrimRight(c.BaseURL, "/") + path

	var resp authResponse
	if err := httputil.PostJSON(ctx, client, url, c.UserAgent, body, &resp); err != nil {
		return User{}, fmt.Errorf("%s: %w", strings.TrimPrefix(path, "/"), serviceMessage(err))
	}
	if resp.User.UserID == "" {
		return User{}, fmt.Errorf("%s: response carried no user", strings.TrimPrefix(path, "/"))
	}
	return resp.User, nil
}

// serviceMessage replaces a StatusError with the service's own message
// when the body carries one.
func serviceMessage(err error) error {
	var se *httputil.StatusError
	if !errors.As(err, &se) {
		return err
	}
	var body authResponse
	if json.Unmarshal([]byte(se.Body), &body) == nil && body.Message != "" {
		return fmt.Errorf("%s (HTTP %d)", body.Message, se.StatusCode)
	}
	return err
}
