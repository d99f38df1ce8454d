package settings

import (
	"os"
	"path/filepath"
	"testing"

	"comment-ranker/internal/crawler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	want := crawler.RunRequest{
		PostURL:        "https://bj.afreecatv.com/243000/post/129323759",
		SheetName:      "Chuny_land",
		ShareEmail:     "me@example.com",
		FavoriteCutoff: 1000,
	}
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.ShareEmail = ""
	want.FavoriteCutoff = 0
	require.NoError(t, Save(path, want))
	got, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMissingFile(t *testing.T) {
	empty := crawler.RunRequest{FavoriteCutoff: CutoffUnset}
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, empty, got)

	got, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, empty, got)
}

func TestLoadWithoutCutoffKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("post_url: u\nsheet_name: s\n"), 0644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, CutoffUnset, got.FavoriteCutoff)
	assert.Equal(t, 700, Merge(got, crawler.RunRequest{FavoriteCutoff: 700}).FavoriteCutoff)
}

func TestSavedZeroCutoffSurvivesConfigDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, Save(path, crawler.RunRequest{PostURL: "u", SheetName: "s", FavoriteCutoff: 0}))

	saved, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, saved.FavoriteCutoff)

	fromConfig := crawler.RunRequest{SheetName: "cfg", FavoriteCutoff: 1000}
	got := Merge(saved, fromConfig)
	assert.Equal(t, 0, got.FavoriteCutoff)
	assert.Equal(t, "s", got.SheetName)

	flags := crawler.RunRequest{FavoriteCutoff: CutoffUnset}
	got = Merge(Merge(flags, saved), fromConfig)
	assert.Equal(t, 0, got.FavoriteCutoff)
	assert.False(t, got.EnrichmentEnabled())
}

func TestLoadBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("post_url: [unterminated"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	saved := crawler.RunRequest{PostURL: "u", SheetName: "s", ShareEmail: "e", FavoriteCutoff: 5}
	assert.Equal(t, saved, Merge(crawler.RunRequest{FavoriteCutoff: CutoffUnset}, saved))
	assert.Equal(t, "other", Merge(crawler.RunRequest{SheetName: "other", FavoriteCutoff: CutoffUnset}, saved).SheetName)
	assert.Equal(t, 0, Merge(crawler.RunRequest{}, saved).FavoriteCutoff)
}
