// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verdict

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/safebites/internal/httputil"
)

// Request is the allergy-check request body.
type Request struct {
	ProductName   string `json:"productName"`
	UserAllergies string `json:"userAllergies"`
}

// Response is the allergy-check success body. Older service builds report
// the matched product under "product" instead of "productName".
type Response struct {
	Status      string `json:"status"`
	ProductName string `json:"productName,omitempty"`
	Product     string `json:"product,omitempty"`
	Allergens   string `json:"allergens"`
}

// Service performs one allergy check.
type Service interface {
	Check(ctx context.Context, req Request) (Response, error)
}

// Client calls the allergy-check service over HTTP.
type Client struct {
	HTTP      *http.Client
	URL       string
	UserAgent string
}

// Check posts req and decodes the response. Transport errors, non-2xx
// statuses, and undecodable bodies are all returned as errors.
func (c *Client) Check(ctx context.Context, req Request) (Response, error) {
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	var resp Response
	if err := httputil.PostJSON(ctx, client, c.URL, c.UserAgent, req, &resp); err != nil {
		return Response{}, fmt.Errorf("allergy check: %w", err)
	}
	return resp, nil
}
