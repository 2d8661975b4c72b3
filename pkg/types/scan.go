// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scan-to-verdict pipeline:
// recognized text regions, candidates, allergen profiles, catalog products,
// and verdicts.
package types

import "strings"

// Point is a 2-D coordinate in image space as emitted by a recognizer.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// TextRegion is one recognized text region. BoundingBox holds the four
// corners of the region polygon; recognizers are expected to emit corner 0
// as top-left and corner 2 as bottom-right, but callers must not rely on it.
type TextRegion struct {
	BoundingBox [4]Point `json:"bbox" yaml:"bbox"`
	Text        string   `json:"text" yaml:"text"`
}

// CandidateSource records which entry path proposed a candidate.
type CandidateSource string

const (
	SourceScan    CandidateSource = "scan"
	SourceCatalog CandidateSource = "catalog"
)

// Candidate is a product name proposed for allergy verification.
type Candidate struct {
	ProductName string          `json:"product_name" yaml:"product_name"`
	Source      CandidateSource `json:"source" yaml:"source"`
}

// AllergenProfile is the user's ordered list of allergens. Entries are
// trimmed and never empty.
type AllergenProfile struct {
	Allergens []string `json:"allergens" yaml:"allergens"`
}

// ParseAllergens splits a comma-separated allergy string into a profile,
// trimming each entry and dropping empty ones.
func ParseAllergens(s string) AllergenProfile {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if a := strings.TrimSpace(part); a != "" {
			out = append(out, a)
		}
	}
	return AllergenProfile{Allergens: out}
}

// IsEmpty reports whether the profile lists no allergens.
func (p AllergenProfile) IsEmpty() bool {
	return len(p.Allergens) == 0
}

// String joins the allergens for display and for the verdict request
// ("Milk, Peanut").
func (p AllergenProfile) String() string {
	return strings.Join(p.Allergens, ", ")
}

// Product is a static catalog entry.
type Product struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// VerdictStatus is the safety outcome of a resolution.
type VerdictStatus string

const (
	StatusSafe    VerdictStatus = "safe"
	StatusNotSafe VerdictStatus = "not-safe"
)

// Verdict is the resolved safety outcome for a candidate against a profile.
type Verdict struct {
	Status      VerdictStatus `json:"status" yaml:"status"`
	ProductName string        `json:"product_name" yaml:"product_name"`
	// Allergens is a display string and may be empty.
	Allergens string `json:"allergens" yaml:"allergens"`
}

// Safe reports whether the verdict allows consumption.
func (v Verdict) Safe() bool {
	return v.Status == StatusSafe
}

// Label returns the user-facing phrase for the verdict status.
func (v Verdict) Label() string {
	if v.Safe() {
		return "Safe to consume"
	}
	return "Not safe to consume"
}
