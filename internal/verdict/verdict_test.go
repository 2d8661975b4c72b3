// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verdict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/safebites/pkg/types"
)

var profile = types.AllergenProfile{Allergens: []string{"Milk", "Peanut"}}

func serviceServer(t *testing.T, status int, body string, calls *int32, got *Request) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

func TestResolveSafe(t *testing.T) {
	var calls int32
	var got Request
	ts := serviceServer(t, http.StatusOK, `{"status":"safe","productName":"Oat Milk","allergens":""}`, &calls, &got)
	defer ts.Close()

	r := NewResolver(&Client{HTTP: ts.Client(), URL: ts.URL}, nil)
	v, err := r.Resolve(context.Background(), types.Candidate{ProductName: "oat milk", Source: types.SourceScan}, profile)
	require.NoError(t, err)

	assert.Equal(t, types.Verdict{Status: types.StatusSafe, ProductName: "Oat Milk", Allergens: ""}, v)
	assert.Equal(t, Request{ProductName: "oat milk", UserAllergies: "Milk, Peanut"}, got)
	assert.Equal(t, int32(1), calls)
}

func TestResolveResponseMapping(t *testing.T) {
	cand := types.Candidate{ProductName: "Choco Pie", Source: types.SourceCatalog}
	tests := []struct {
		name string
		body string
		want types.Verdict
	}{
		{
			name: "not safe passes allergens through",
			body: `{"status":"not safe","productName":"Choco Pie","allergens":"Milk, Egg"}`,
			want: types.Verdict{Status: types.StatusNotSafe, ProductName: "Choco Pie", Allergens: "Milk, Egg"},
		},
		{
			name: "absent status is not safe",
			body: `{"productName":"Choco Pie","allergens":"Egg"}`,
			want: types.Verdict{Status: types.StatusNotSafe, ProductName: "Choco Pie", Allergens: "Egg"},
		},
		{
			name: "status match is exact",
			body: `{"status":"Safe","allergens":""}`,
			want: types.Verdict{Status: types.StatusNotSafe, ProductName: "Choco Pie"},
		},
		{
			name: "legacy product field is used when productName is absent",
			body: `{"status":"safe","product":"Lotte Choco Pie","allergens":"No allergens detected"}`,
			want: types.Verdict{Status: types.StatusSafe, ProductName: "Lotte Choco Pie", Allergens: "No allergens detected"},
		},
		{
			name: "candidate name is the fallback",
			body: `{"status":"safe"}`,
			want: types.Verdict{Status: types.StatusSafe, ProductName: "Choco Pie"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := serviceServer(t, http.StatusOK, tt.body, &calls, nil)
			defer ts.Close()

			r := NewResolver(&Client{HTTP: ts.Client(), URL: ts.URL}, nil)
			v, err := r.Resolve(context.Background(), cand, profile)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestResolveFailClosed(t *testing.T) {
	cand := types.Candidate{ProductName: "Mystery Bar", Source: types.SourceScan}
	want := types.Verdict{Status: types.StatusNotSafe, ProductName: "Mystery Bar", Allergens: "Milk, Peanut"}

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"product not found", http.StatusNotFound, `{"status":"error","message":"Product not found"}`},
		{"server error even with safe body", http.StatusInternalServerError, `{"status":"safe"}`},
		{"malformed body", http.StatusOK, `{"status":`},
		{"non-json body", http.StatusOK, `Server Running`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := serviceServer(t, tt.status, tt.body, &calls, nil)
			defer ts.Close()

			var log bytes.Buffer
			r := NewResolver(&Client{HTTP: ts.Client(), URL: ts.URL}, &log)
			v, err := r.Resolve(context.Background(), cand, profile)
			require.NoError(t, err)
			assert.Equal(t, want, v)
			assert.Contains(t, log.String(), "Mystery Bar")
		})
	}
}

func TestResolveTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	r := NewResolver(&Client{HTTP: &http.Client{Timeout: time.Second}, URL: url}, nil)
	cand := types.Candidate{ProductName: "Oat Milk", Source: types.SourceCatalog}
	v, err := r.Resolve(context.Background(), cand, profile)
	require.NoError(t, err)
	assert.Equal(t, types.Verdict{Status: types.StatusNotSafe, ProductName: "Oat Milk", Allergens: "Milk, Peanut"}, v)
}

func TestResolveTimeoutIsFailure(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		fmt.Fprint(w, `{"status":"safe"}`)
	}))
	defer ts.Close()
	defer close(release)

	r := NewResolver(&Client{HTTP: &http.Client{Timeout: 50 * time.Millisecond}, URL: ts.URL}, nil)
	v, err := r.Resolve(context.Background(), types.Candidate{ProductName: "Slow"}, profile)
	require.NoError(t, err)
	assert.False(t, v.Safe())
}

type countingService struct{ calls int32 }

func (s *countingService) Check(context.Context, Request) (Response, error) {
	atomic.AddInt32(&s.calls, 1)
	return Response{Status: statusSafe}, nil
}

func TestResolveEmptyProfileSendsNothing(t *testing.T) {
	svc := &countingService{}
	r := NewResolver(svc, nil)

	_, err := r.Resolve(context.Background(), types.Candidate{ProductName: "Oat Milk"}, types.AllergenProfile{})
	assert.ErrorIs(t, err, ErrNoProfile)
	assert.Equal(t, int32(0), atomic.LoadInt32(&svc.calls))

	_, err = r.Resolve(context.Background(), types.Candidate{ProductName: "Oat Milk"}, types.ParseAllergens(" , "))
	assert.ErrorIs(t, err, ErrNoProfile)
	assert.Equal(t, int32(0), atomic.LoadInt32(&svc.calls))
}
