package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_JSON(t *testing.T) {
	p := writeFile(t, "games.json", `[
		{"name": "Hollow Knight", "url": "https://example.com/hk", "password": "ab12"},
		{"name": "Hollow Knight: Silksong", "url": "https://example.com/ss"}
	]`)

	c, err := Load(context.Background(), p, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	got := c.Search("Silksong")
	require.Len(t, got, 1)
	assert.Equal(t, "https://example.com/ss", got[0].URL)
	assert.Empty(t, got[0].Password)
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, "games.YML", `
- name: Celeste
  url: https://example.com/celeste
  password: zz99
`)
	c, err := Load(context.Background(), p, logging.NewNopLogger())
	require.NoError(t, err)
	require.Equal(t, []Item{{Name: "Celeste", URL: "https://example.com/celeste", Password: "zz99"}}, c.Search("Cel"))
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	c, err := Load(context.Background(), filepath.Join(t.TempDir(), "none.json"), logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Search("anything"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(context.Background(), writeFile(t, "games.toml", "x = 1"), logging.NewNopLogger())
	require.ErrorIs(t, err, common.ErrorUnsupportedCatalogFormat)

	_, err = Load(context.Background(), writeFile(t, "games.json", "{"), logging.NewNopLogger())
	require.ErrorContains(t, err, "error parsing catalog")
}

func TestSearch_SubstringCaseSensitiveInOrder(t *testing.T) {
	c := New([]Item{{Name: "Dark Souls"}, {Name: "dark room"}, {Name: "Darkest Dungeon"}})

	names := func(items []Item) []string {
		var out []string
		for _, it := range items {
			out = append(out, it.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Dark Souls", "Darkest Dungeon"}, names(c.Search("Dark")))
	assert.Equal(t, []string{"dark room"}, names(c.Search("dark")))
	assert.Empty(t, c.Search("Zelda"))
}
