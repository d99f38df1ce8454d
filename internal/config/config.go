package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Platform string `mapstructure:"PLATFORM"`

	// Form values. The settings file overrides these at startup.
	PostURL        string `mapstructure:"POST_URL"`
	SheetName      string `mapstructure:"SHEET_NAME"`
	ShareEmail     string `mapstructure:"SHARE_EMAIL"`
	FavoriteCutoff int    `mapstructure:"FAVORITE_CUTOFF"`
	SettingsFile   string `mapstructure:"SETTINGS_FILE"`

	// Sheet publishing
	SheetBackend          string `mapstructure:"SHEET_BACKEND"`
	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	XlsxDir               string `mapstructure:"XLSX_DIR"`
	AppendIntervalMs      int    `mapstructure:"APPEND_INTERVAL_MS"`
	SheetBatchAppend      bool   `mapstructure:"SHEET_BATCH_APPEND"`
	FormatRowCeiling      int    `mapstructure:"FORMAT_ROW_CEILING"`
	Timezone              string `mapstructure:"TIMEZONE"`

	// Comment source
	APIBaseURL           string `mapstructure:"API_BASE_URL"`
	StationAPIBaseURL    string `mapstructure:"STATION_API_BASE_URL"`
	UserAgent            string `mapstructure:"USER_AGENT"`
	HttpTimeoutSec       int    `mapstructure:"HTTP_TIMEOUT_SEC"`
	HttpRetryCount       int    `mapstructure:"HTTP_RETRY_COUNT"`
	HttpRetryBaseDelayMs int    `mapstructure:"HTTP_RETRY_BASE_DELAY_MS"`
	HttpRetryMaxDelayMs  int    `mapstructure:"HTTP_RETRY_MAX_DELAY_MS"`

	// Favorite-count cache
	CacheBackend        string `mapstructure:"CACHE_BACKEND"`
	FavoriteCacheTTLSec int    `mapstructure:"FAVORITE_CACHE_TTL_SEC"`
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
	RedisDB             int    `mapstructure:"REDIS_DB"`
	RedisKeyPrefix      string `mapstructure:"REDIS_KEY_PREFIX"`

	// Run archive
	StoreBackend   string `mapstructure:"STORE_BACKEND"`
	DataDir        string `mapstructure:"DATA_DIR"`
	SaveDataOption string `mapstructure:"SAVE_DATA_OPTION"`
	SQLitePath     string `mapstructure:"SQLITE_PATH"`
	MySQLDSN       string `mapstructure:"MYSQL_DSN"`
	PostgresDSN    string `mapstructure:"POSTGRES_DSN"`
	MongoURI       string `mapstructure:"MONGO_URI"`
	MongoDB        string `mapstructure:"MONGO_DB"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var AppConfig Config

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

func LoadConfig(path string) error {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("PLATFORM", "afreeca")
	viper.SetDefault("POST_URL", "")
	viper.SetDefault("SHEET_NAME", "")
	viper.SetDefault("SHARE_EMAIL", "")
	viper.SetDefault("FAVORITE_CUTOFF", 0)
	viper.SetDefault("SETTINGS_FILE", "settings.yaml")
	viper.SetDefault("SHEET_BACKEND", "google")
	viper.SetDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json")
	viper.SetDefault("XLSX_DIR", "data/sheets")
	viper.SetDefault("APPEND_INTERVAL_MS", 1100)
	viper.SetDefault("SHEET_BATCH_APPEND", false)
	viper.SetDefault("FORMAT_ROW_CEILING", 999)
	viper.SetDefault("TIMEZONE", "Asia/Seoul")
	viper.SetDefault("API_BASE_URL", "https://bjapi.afreecatv.com")
	viper.SetDefault("STATION_API_BASE_URL", "https://st.afreecatv.com")
	viper.SetDefault("USER_AGENT", DefaultUserAgent)
	viper.SetDefault("HTTP_TIMEOUT_SEC", 60)
	viper.SetDefault("HTTP_RETRY_COUNT", 0)
	viper.SetDefault("HTTP_RETRY_BASE_DELAY_MS", 500)
	viper.SetDefault("HTTP_RETRY_MAX_DELAY_MS", 4000)
	viper.SetDefault("CACHE_BACKEND", "memory")
	viper.SetDefault("FAVORITE_CACHE_TTL_SEC", 600)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_KEY_PREFIX", "comment_ranker:")
	viper.SetDefault("STORE_BACKEND", "file")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("SAVE_DATA_OPTION", "json")
	viper.SetDefault("SQLITE_PATH", "data/comment_ranker.db")
	viper.SetDefault("MYSQL_DSN", "")
	viper.SetDefault("POSTGRES_DSN", "")
	viper.SetDefault("MONGO_URI", "")
	viper.SetDefault("MONGO_DB", "comment_ranker")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	viper.SetEnvPrefix("COMMENT_RANKER")
	viper.AutomaticEnv()

	// If no config file found, just use defaults/env
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return err
	}
	Normalize(&AppConfig)
	return nil
}

func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Platform = strings.ToLower(strings.TrimSpace(cfg.Platform))
	if cfg.Platform == "" {
		cfg.Platform = "afreeca"
	}
	cfg.PostURL = strings.TrimSpace(cfg.PostURL)
	cfg.SheetName = strings.TrimSpace(cfg.SheetName)
	cfg.ShareEmail = strings.TrimSpace(cfg.ShareEmail)
	cfg.SheetBackend = strings.ToLower(strings.TrimSpace(cfg.SheetBackend))
	if cfg.SheetBackend == "gsheets" || cfg.SheetBackend == "sheets" {
		cfg.SheetBackend = "google"
	}
	if cfg.SheetBackend == "excel" {
		cfg.SheetBackend = "xlsx"
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.SaveDataOption = strings.ToLower(strings.TrimSpace(cfg.SaveDataOption))
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.StationAPIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.StationAPIBaseURL), "/")
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.FormatRowCeiling <= 0 {
		cfg.FormatRowCeiling = 999
	}
	if cfg.FavoriteCutoff < 0 {
		cfg.FavoriteCutoff = 0
	}
	if cfg.AppendIntervalMs < 0 {
		cfg.AppendIntervalMs = 0
	}
}
