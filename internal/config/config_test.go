package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	if err := LoadConfig(t.TempDir()); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if AppConfig.AppendIntervalMs != 1100 {
		t.Fatalf("AppendIntervalMs = %d, want 1100", AppConfig.AppendIntervalMs)
	}
	if AppConfig.FormatRowCeiling != 999 {
		t.Fatalf("FormatRowCeiling = %d, want 999", AppConfig.FormatRowCeiling)
	}
	if AppConfig.HttpRetryCount != 0 {
		t.Fatalf("HttpRetryCount = %d, want 0", AppConfig.HttpRetryCount)
	}
	if AppConfig.UserAgent != DefaultUserAgent {
		t.Fatalf("UserAgent = %q", AppConfig.UserAgent)
	}
	if AppConfig.SheetBackend != "google" {
		t.Fatalf("SheetBackend = %q, want google", AppConfig.SheetBackend)
	}
	if AppConfig.Platform != "afreeca" {
		t.Fatalf("Platform = %q, want afreeca", AppConfig.Platform)
	}
}

func TestLoadConfig_NormalizesAliases(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	dir := t.TempDir()
	cfg := []byte("SHEET_BACKEND: \"Excel\"\nSTORE_BACKEND: \"SQLite\"\nAPI_BASE_URL: \"http://localhost:9000/\"\nUSER_AGENT: \"  \"\nFORMAT_ROW_CEILING: -1\nPLATFORM: \" SOOP \"\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), cfg, 0644); err != nil {
		t.Fatal(err)
	}

	if err := LoadConfig(dir); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if AppConfig.SheetBackend != "xlsx" {
		t.Fatalf("SheetBackend = %q, want %q", AppConfig.SheetBackend, "xlsx")
	}
	if AppConfig.StoreBackend != "sqlite" {
		t.Fatalf("StoreBackend = %q, want %q", AppConfig.StoreBackend, "sqlite")
	}
	if AppConfig.APIBaseURL != "http://localhost:9000" {
		t.Fatalf("APIBaseURL = %q", AppConfig.APIBaseURL)
	}
	if AppConfig.UserAgent != DefaultUserAgent {
		t.Fatalf("UserAgent = %q", AppConfig.UserAgent)
	}
	if AppConfig.FormatRowCeiling != 999 {
		t.Fatalf("FormatRowCeiling = %d", AppConfig.FormatRowCeiling)
	}
	if AppConfig.Platform != "soop" {
		t.Fatalf("Platform = %q, want soop", AppConfig.Platform)
	}
}
