// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"

	"github.com/pdiddy/safebites/internal/httputil"
	"github.com/pdiddy/safebites/pkg/types"
)

// HostedClient uploads images to a hosted OCR provider that answers with
// {"result": [{"bbox": [[x,y],[x,y],[x,y],[x,y]], "text": "..."}]}.
// The provider authenticates with static username and apikey headers.
type HostedClient struct {
	HTTP       *http.Client
	URL        string
	Username   string
	APIKey     string
	UserAgent  string
	MaxRetries int
}

type hostedResponse struct {
	Result []hostedRegion `json:"result"`
}

type hostedRegion struct {
	BBox [][]float64 `json:"bbox"`
	Text string      `json:"text"`
}

// Recognize uploads the image as a multipart form field named "file".
func (c *HostedClient) Recognize(ctx context.Context, imagePath string) ([]types.TextRegion, error) {
	img, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	body, contentType, err := multipartImage(img)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("username", c.Username)
	req.Header.Set("apikey", c.APIKey)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("OCR request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("OCR provider: %w", err)
	}
	return decodeHosted(resp.Body)
}

func multipartImage(img []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating form part: %w", err)
	}
	if _, err := part.Write(img); err != nil {
		return nil, "", fmt.Errorf("writing form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func decodeHosted(r io.Reader) ([]types.TextRegion, error) {
	var hr hostedResponse
	if err := json.NewDecoder(r).Decode(&hr); err != nil {
		return nil, fmt.Errorf("parsing OCR response: %w", err)
	}

	regions := make([]types.TextRegion, 0, len(hr.Result))
	for i, item := range hr.Result {
		if len(item.BBox) != 4 {
			return nil, fmt.Errorf("OCR result %d: bbox has %d corners, want 4", i, len(item.BBox))
		}
		var tr types.TextRegion
		for j, pt := range item.BBox {
			if len(pt) != 2 {
				return nil, fmt.Errorf("OCR result %d: corner %d has %d coordinates", i, j, len(pt))
			}
			tr.BoundingBox[j] = types.Point{X: pt[0], Y: pt[1]}
		}
		tr.Text = item.Text
		regions = append(regions, tr)
	}
	return regions, nil
}
