// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verdict turns a candidate product name and an allergen profile
// into a safety verdict.
//
// Resolution is fail-closed: when the allergy-check service cannot be
// reached or answers with anything other than a decodable success, the
// verdict is "not-safe" with the user's own allergens as the display
// string. An unverifiable product is never reported as safe.
package verdict

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/safebites/pkg/types"
)

// ErrNoProfile is returned when the profile lists no allergens. No request
// is sent in that case.
var ErrNoProfile = errors.New("no allergies found in your profile")

// statusSafe is the only service status that maps to a safe verdict.
const statusSafe = "safe"

// Resolver issues one verdict request per call. It neither caches nor retries.
type Resolver struct {
	Service Service

	// Log receives a warning line for every absorbed failure. Nil discards.
	Log io.Writer
}

// NewResolver returns a resolver over svc.
func NewResolver(svc Service, log io.Writer) *Resolver {
	return &Resolver{Service: svc, Log: log}
}

// Resolve checks candidate against profile. The only error it returns is
// ErrNoProfile; every service failure is folded into a not-safe verdict.
func (r *Resolver) Resolve(ctx context.Context, candidate types.Candidate, profile types.AllergenProfile) (types.Verdict, error) {
	if profile.IsEmpty() {
		return types.Verdict{}, ErrNoProfile
	}

	resp, err := r.Service.Check(ctx, Request{
		ProductName:   candidate.ProductName,
		UserAllergies: profile.String(),
	})
	if err != nil {
		r.warnf("warning: verdict for %q unavailable, reporting not safe: %v\n", candidate.ProductName, err)
		return FailClosed(candidate, profile), nil
	}
	return FromResponse(candidate, resp), nil
}

// FailClosed is the verdict used when the service answer is unavailable.
func FailClosed(candidate types.Candidate, profile types.AllergenProfile) types.Verdict {
	return types.Verdict{
		Status:      types.StatusNotSafe,
		ProductName: candidate.ProductName,
		Allergens:   profile.String(),
	}
}

// FromResponse maps a service response. Only the exact status "safe" is
// safe; the service's product name is preferred over the candidate's.
func FromResponse(candidate types.Candidate, resp Response) types.Verdict {
	v := types.Verdict{
		Status:      types.StatusNotSafe,
		ProductName: candidate.ProductName,
		Allergens:   resp.Allergens,
	}
	if resp.Status == statusSafe {
		v.Status = types.StatusSafe
	}
	switch {
	case resp.ProductName != "":
		v.ProductName = resp.ProductName
	case resp.Product != "":
		v.ProductName = resp.Product
	}
	return v
}

func (r *Resolver) warnf(format string, args ...any) {
	if r.Log != nil {
		fmt.Fprintf(r.Log, format, args...)
	}
}
