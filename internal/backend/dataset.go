// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend is the reference allergy-check service. It imports a
// product dataset, resolves scanned or searched names to a product by exact
// or fuzzy match, and reports whether the product carries any of the
// user's allergens. It also stores user accounts for login and signup.
package backend

import (
	"crypto/md5"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// NoAllergens is the display string for a product with no flagged allergen.
const NoAllergens = "No allergens detected"

// allergenColumns maps dataset flag columns to display names, in display order.
var allergenColumns = []struct {
	column string
	name   string
}{
	{"ContainsCrustacean", "Crustacean"},
	{"ContainsMilk", "Milk"},
	{"ContainsEgg", "Egg"},
	{"ContainsFish", "Fish"},
	{"ContainsNut", "Nut"},
	{"ContainsSoy", "Soy"},
	{"ContainsSulphite", "Sulphite"},
}

const nameColumn = "ProductName"

// Record is one dataset row.
type Record struct {
	Name      string
	Allergens []string
}

// AllergenString joins the flagged allergens for display.
func (r Record) AllergenString() string {
	if len(r.Allergens) == 0 {
		return NoAllergens
	}
	return strings.Join(r.Allergens, ", ")
}

// Hash is the exact-match key: md5 of the trimmed, lower-cased name.
func Hash(name string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(name))))
	return hex.EncodeToString(sum[:])
}

// ReadCSV parses a dataset with a ProductName column and one 0/1 column per
// allergen. Missing allergen columns count as 0. Rows without a name are
// skipped.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset is empty")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	nameIdx, ok := cols[nameColumn]
	if !ok {
		return nil, fmt.Errorf("dataset has no %s column", nameColumn)
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}
		name := strings.TrimSpace(field(row, nameIdx))
		if name == "" {
			continue
		}
		rec := Record{Name: name}
		for _, ac := range allergenColumns {
			idx, ok := cols[ac.column]
			if ok && flagged(field(row, idx)) {
				rec.Allergens = append(rec.Allergens, ac.name)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadCSV reads the dataset at path.
func LoadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()
	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// flagged reports whether a flag cell equals 1 ("1", "1.0", " 1 ").
func flagged(s string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && v == 1
}

// splitAllergens lower-cases a ", "-separated allergen list into a set.
func splitAllergens(s string) map[string]bool {
	set := make(map[string]bool)
	for _, a := range strings.Split(s, ", ") {
		set[strings.ToLower(a)] = true
	}
	return set
}

// Intersects reports whether the user's allergy list shares any entry with
// the product's allergen display string. Both are split on ", ".
func Intersects(userAllergies, productAllergens string) bool {
	user := splitAllergens(userAllergies)
	for a := range splitAllergens(productAllergens) {
		if user[a] {
			return true
		}
	}
	return false
}
