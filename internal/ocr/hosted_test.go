// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/safebites/internal/httputil"
	"github.com/pdiddy/safebites/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const sampleOCRJSON = `{
  "result": [
    {"bbox": [[10, 10], [60, 10], [60, 20], [10, 20]], "text": "ingredients", "confident": 0.91},
    {"bbox": [[5, 30], [205, 30], [205, 90], [5, 90]], "text": "Choco Pie", "confident": 0.98}
  ]
}`

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "label.jpg")
	require.NoError(t, os.WriteFile(path, []byte("\xff\xd8jpegdata"), 0o644))
	return path
}

func TestHostedRecognize(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "scanner", r.Header.Get("username"))
		assert.Equal(t, "k_123", r.Header.Get("apikey"))

		file, hdr, err := r.FormFile("file")
		if assert.NoError(t, err) {
			defer file.Close()
			assert.Equal(t, "image.jpg", hdr.Filename)
			assert.Equal(t, "image/jpeg", hdr.Header.Get("Content-Type"))
			data, _ := io.ReadAll(file)
			assert.Equal(t, "\xff\xd8jpegdata", string(data))
		}
		fmt.Fprint(w, sampleOCRJSON)
	}))
	defer ts.Close()

	c := &HostedClient{HTTP: ts.Client(), URL: ts.URL, Username: "scanner", APIKey: "k_123"}
	regions, err := c.Recognize(context.Background(), writeImage(t))
	require.NoError(t, err)
	require.Len(t, regions, 2)

	assert.Equal(t, "Choco Pie", regions[1].Text)
	assert.Equal(t, types.Point{X: 205, Y: 90}, regions[1].BoundingBox[2])
}

func TestHostedRecognizeRetriesRateLimit(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _, err := r.FormFile("file")
		assert.NoError(t, err, "replayed upload must carry the image")
		fmt.Fprint(w, `{"result": []}`)
	}))
	defer ts.Close()

	c := &HostedClient{HTTP: ts.Client(), URL: ts.URL, MaxRetries: 2}
	regions, err := c.Recognize(context.Background(), writeImage(t))
	require.NoError(t, err)
	assert.Empty(t, regions)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHostedRecognizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"provider rejects credentials", http.StatusUnauthorized, `{"error":"bad key"}`, "HTTP 401"},
		{"malformed json", http.StatusOK, `{"result": [`, "parsing OCR response"},
		{"short bbox", http.StatusOK, `{"result": [{"bbox": [[0,0],[1,1]], "text": "x"}]}`, "2 corners"},
		{"short corner", http.StatusOK, `{"result": [{"bbox": [[0],[1,1],[2,2],[3,3]], "text": "x"}]}`, "corner 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			c := &HostedClient{HTTP: ts.Client(), URL: ts.URL}
			_, err := c.Recognize(context.Background(), writeImage(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHostedRecognizeMissingImage(t *testing.T) {
	c := &HostedClient{URL: "http://127.0.0.1:0"}
	_, err := c.Recognize(context.Background(), filepath.Join(t.TempDir(), "none.jpg"))
	assert.ErrorContains(t, err, "reading image")
}

func TestRegionFromRect(t *testing.T) {
	r := RegionFromRect(image.Rect(4, 8, 24, 18), "Oat Milk")
	assert.Equal(t, [4]types.Point{{X: 4, Y: 8}, {X: 24, Y: 8}, {X: 24, Y: 18}, {X: 4, Y: 18}}, r.BoundingBox)
	assert.Equal(t, "Oat Milk", r.Text)
}
