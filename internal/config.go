package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	LogLevel string
	Port     int
	Sheet    SheetConfig
	Drive    DriveConfig
	Sync     SyncConfig
	Cache    CacheConfig
	Web      WebConfig
	Site     SiteConfig
	Admin    AdminConfig
}

// SheetConfig selects the spreadsheet and its tabs. ProductTabs is a
// "gid:category" list; the other gids are single optional tabs.
type SheetConfig struct {
	ID               string
	APIKey           string // enables the Sheets API path; public endpoints otherwise
	ProductTabs      string
	CategoriesGID    string
	TagsGID          string
	MenuGID          string
	PagesGID         string
	SizesGID         string
	TypesGID         string
	LevelsGID        string
	AnnouncementsGID string
}

// DriveConfig enables the image fallback index built from a shared folder.
type DriveConfig struct {
	FolderID string
}

type SyncConfig struct {
	Interval time.Duration
	FetchTTL time.Duration
}

type CacheConfig struct {
	Dir string
}

// WebConfig points at the built SPA.
type WebConfig struct {
	Dir   string
	Shell string
}

// SiteConfig is the public identity rendered into Open Graph tags.
type SiteConfig struct {
	URL          string
	Name         string
	DefaultTitle string
	DefaultDesc  string
	DefaultImage string
}

// AdminConfig holds the operator credentials and token settings.
// PasswordHash (bcrypt) wins over Password when both are set.
type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

func NewConfig() (*Config, error) {
	// Load .env from the working directory, walking up a couple of levels
	// so `go run ./cmd/server` works from subdirectories too.
	if err := godotenv.Load(); err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			log.Warn().Msg(".env file not found, using environment variables and defaults")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", 3000)
	v.SetDefault("SHEET_PRODUCT_TABS", "0:")
	v.SetDefault("SYNC_INTERVAL", "10m")
	v.SetDefault("SYNC_FETCH_TTL", "5m")
	v.SetDefault("CACHE_DIR", "./data/cache")
	v.SetDefault("WEB_DIR", "./web/dist")
	v.SetDefault("SITE_URL", "http://localhost:3000")
	v.SetDefault("SITE_NAME", "Cẩm Ly Bakery")
	v.SetDefault("SITE_DEFAULT_TITLE", "Cẩm Ly Bakery")
	v.SetDefault("SITE_DEFAULT_DESC", "Bánh kem và bánh ngọt đặt theo yêu cầu")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_JWT_SECRET", "dev-secret-change-in-production")
	v.SetDefault("ADMIN_TOKEN_TTL", "12h")

	webDir := v.GetString("WEB_DIR")
	cfg := &Config{
		Env:      v.GetString("ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Port:     v.GetInt("PORT"),
		Sheet: SheetConfig{
			ID:               v.GetString("SHEET_ID"),
			APIKey:           v.GetString("GOOGLE_API_KEY"),
			ProductTabs:      v.GetString("SHEET_PRODUCT_TABS"),
			CategoriesGID:    v.GetString("SHEET_CATEGORIES_GID"),
			TagsGID:          v.GetString("SHEET_TAGS_GID"),
			MenuGID:          v.GetString("SHEET_MENU_GID"),
			PagesGID:         v.GetString("SHEET_PAGES_GID"),
			SizesGID:         v.GetString("SHEET_SIZES_GID"),
			TypesGID:         v.GetString("SHEET_TYPES_GID"),
			LevelsGID:        v.GetString("SHEET_LEVELS_GID"),
			AnnouncementsGID: v.GetString("SHEET_ANNOUNCEMENTS_GID"),
		},
		Drive: DriveConfig{
			FolderID: v.GetString("DRIVE_IMAGES_FOLDER_ID"),
		},
		Sync: SyncConfig{
			Interval: v.GetDuration("SYNC_INTERVAL"),
			FetchTTL: v.GetDuration("SYNC_FETCH_TTL"),
		},
		Cache: CacheConfig{
			Dir: v.GetString("CACHE_DIR"),
		},
		Web: WebConfig{
			Dir:   webDir,
			Shell: filepath.Join(webDir, "index.html"),
		},
		Site: SiteConfig{
			URL:          v.GetString("SITE_URL"),
			Name:         v.GetString("SITE_NAME"),
			DefaultTitle: v.GetString("SITE_DEFAULT_TITLE"),
			DefaultDesc:  v.GetString("SITE_DEFAULT_DESC"),
			DefaultImage: v.GetString("SITE_DEFAULT_IMAGE"),
		},
		Admin: AdminConfig{
			Username:     v.GetString("ADMIN_USERNAME"),
			Password:     v.GetString("ADMIN_PASSWORD"),
			PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
			JWTSecret:    v.GetString("ADMIN_JWT_SECRET"),
			TokenTTL:     v.GetDuration("ADMIN_TOKEN_TTL"),
		},
	}

	if cfg.Env != "dev" && cfg.Env != "prod" {
		log.Warn().Str("env", cfg.Env).Msg("invalid environment, using prod")
		cfg.Env = "prod"
	}

	if cfg.Sheet.ID == "" {
		return nil, fmt.Errorf("SHEET_ID must be set")
	}
	if cfg.Env == "prod" {
		if cfg.Admin.JWTSecret == "dev-secret-change-in-production" {
			return nil, fmt.Errorf("ADMIN_JWT_SECRET must be set in production")
		}
		if cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "" {
			return nil, fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set in production")
		}
	}

	return cfg, nil
}
