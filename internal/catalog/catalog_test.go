// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/safebites/pkg/types"
)

func TestLoadJSON(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "products.json"))
	require.NoError(t, err)
	assert.Equal(t, []types.Product{
		{ID: 1, Name: "Milk Bread"},
		{ID: 2, Name: "Milk Chocolate"},
		{ID: 3, Name: "Dark Chocolate"},
	}, c.Products())
}

func TestLoadDuplicateID(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "duplicate.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewRejectsEmptyName(t *testing.T) {
	_, err := New([]types.Product{{ID: 1, Name: "  "}})
	assert.ErrorContains(t, err, "empty name")
}

func TestProductsReturnsCopy(t *testing.T) {
	c, err := New([]types.Product{{ID: 7, Name: " Oat Milk "}})
	require.NoError(t, err)

	ps := c.Products()
	ps[0].Name = "changed"
	p, ok := c.Lookup(7)
	require.True(t, ok)
	assert.Equal(t, "Oat Milk", p.Name)

	_, ok = c.Lookup(8)
	assert.False(t, ok)
}

func TestDefaultCatalog(t *testing.T) {
	c, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, 30, c.Len())

	var names []string
	c.Each(func(p types.Product) bool {
		names = append(names, p.Name)
		return len(names) < 2
	})
	assert.Equal(t, []string{"Amul Taaza Toned Milk", "Amul Butter"}, names)
}
