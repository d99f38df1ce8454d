// Package settings persists the last submitted form values so the next run
// starts prefilled.
package settings

import (
	"comment-ranker/internal/crawler"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// CutoffUnset marks a request whose favorite cutoff was never given. Zero is a
// real value: it disables the favorite check.
const CutoffUnset = -1

const (
	keyPostURL        = "post_url"
	keySheetName      = "sheet_name"
	keyShareEmail     = "share_email"
	keyFavoriteCutoff = "favorite_cutoff"
)

// Load reads the settings file. A missing file yields an empty request and no
// error. FavoriteCutoff is CutoffUnset unless the file carries the key.
func Load(path string) (crawler.RunRequest, error) {
	empty := crawler.RunRequest{FavoriteCutoff: CutoffUnset}
	path = strings.TrimSpace(path)
	if path == "" {
		return empty, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return empty, nil
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return empty, fmt.Errorf("read settings %s: %w", path, err)
	}
	req := crawler.RunRequest{
		PostURL:        strings.TrimSpace(v.GetString(keyPostURL)),
		SheetName:      strings.TrimSpace(v.GetString(keySheetName)),
		ShareEmail:     strings.TrimSpace(v.GetString(keyShareEmail)),
		FavoriteCutoff: CutoffUnset,
	}
	if v.IsSet(keyFavoriteCutoff) {
		req.FavoriteCutoff = v.GetInt(keyFavoriteCutoff)
	}
	return req, nil
}

// Save overwrites the settings file with req.
func Save(path string, req crawler.RunRequest) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	v := newViper()
	v.Set(keyPostURL, req.PostURL)
	v.Set(keySheetName, req.SheetName)
	v.Set(keyShareEmail, req.ShareEmail)
	if req.FavoriteCutoff >= 0 {
		v.Set(keyFavoriteCutoff, req.FavoriteCutoff)
	}
	return v.WriteConfigAs(path)
}

// Merge fills the empty fields of req from saved. The cutoff is taken from
// saved only when req's is CutoffUnset.
func Merge(req, saved crawler.RunRequest) crawler.RunRequest {
	if req.PostURL == "" {
		req.PostURL = saved.PostURL
	}
	if req.SheetName == "" {
		req.SheetName = saved.SheetName
	}
	if req.ShareEmail == "" {
		req.ShareEmail = saved.ShareEmail
	}
	if req.FavoriteCutoff < 0 {
		req.FavoriteCutoff = saved.FavoriteCutoff
	}
	return req
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	return v
}
