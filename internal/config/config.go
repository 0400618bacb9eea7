package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type TelegramConfig struct {
	Token       string `yaml:"token" validate:"required"`
	Mode        string `yaml:"mode" validate:"oneof=polling webhook"`
	WebhookURL  string `yaml:"webhook_url" validate:"omitempty,url"`
	PollTimeout int    `yaml:"poll_timeout" validate:"gte=0"`
	Debug       bool   `yaml:"debug"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver" validate:"oneof=file postgres"`
	MembersFile string `yaml:"members_file"`
	InvitesFile string `yaml:"invites_file" validate:"required"`
	DSN         string `yaml:"url" validate:"required_if=Driver postgres"`
}

type WorkerConfig struct {
	Command string        `yaml:"command" validate:"required"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	// лимит попыток ввода кода на пользователя
	AttemptsPerHour int `yaml:"attempts_per_hour" validate:"gte=0"`
	AttemptBurst    int `yaml:"attempt_burst" validate:"gte=0"`
}

type BrowserConfig struct {
	BaseURL     string        `yaml:"base_url" validate:"required,url"`
	Headless    bool          `yaml:"headless"`
	ExecPath    string        `yaml:"exec_path"`
	CodeTimeout time.Duration `yaml:"code_timeout" validate:"gt=0"`
	HomeTimeout time.Duration `yaml:"home_timeout" validate:"gt=0"`
	JoinSettle  time.Duration `yaml:"join_settle" validate:"gte=0"`
	PageTimeout time.Duration `yaml:"page_timeout" validate:"gt=0"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email" validate:"omitempty,email"`
	AdminEmail   string `yaml:"admin_email" validate:"omitempty,email"`
}

type AdminConfig struct {
	Username     string        `yaml:"username"`
	PasswordHash string        `yaml:"password_hash"` // bcrypt
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

type FilesConfig struct {
	RootDir  string `yaml:"root_dir"`
	FontPath string `yaml:"font_path"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port" validate:"gte=0,lte=65535"`
	} `yaml:"server"`
	Telegram TelegramConfig `yaml:"telegram"`
	Storage  StorageConfig  `yaml:"storage"`
	Worker   WorkerConfig   `yaml:"worker"`
	Browser  BrowserConfig  `yaml:"browser"`
	Email    EmailConfig    `yaml:"email"`
	Admin    AdminConfig    `yaml:"admin"`
	Files    FilesConfig    `yaml:"files"`
}

var validate = validator.New()

// Default returns the built-in defaults: 90s worker timeout, 10s/15s login waits.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Telegram.Mode = "polling"
	cfg.Telegram.PollTimeout = 60
	cfg.Storage.Driver = "file"
	cfg.Storage.MembersFile = "users.json"
	cfg.Storage.InvitesFile = "invites.txt"
	cfg.Worker.Command = "joinworker"
	cfg.Worker.Timeout = 90 * time.Second
	cfg.Worker.AttemptsPerHour = 6
	cfg.Worker.AttemptBurst = 3
	cfg.Browser = DefaultBrowser()
	cfg.Email.SMTPPort = 587
	cfg.Admin.TokenTTL = 15 * time.Minute
	cfg.Files.RootDir = "./files"
	cfg.Files.FontPath = "assets/fonts/DejaVuSans.ttf"
	return cfg
}

func DefaultBrowser() BrowserConfig {
	return BrowserConfig{
		BaseURL:     "https://www.canva.com",
		Headless:    true,
		CodeTimeout: 10 * time.Second,
		HomeTimeout: 15 * time.Second,
		JoinSettle:  5 * time.Second,
		PageTimeout: 30 * time.Second,
	}
}

// Load reads .env (if any), the YAML file at path (optional when missing),
// applies env overrides and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// только env
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Files.RootDir == "" {
		cfg.Files.RootDir = "./files"
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Telegram.Mode == "webhook" && cfg.Telegram.WebhookURL == "" {
		return nil, fmt.Errorf("invalid config: telegram.webhook_url is required in webhook mode")
	}
	if cfg.Admin.Username != "" && (cfg.Admin.PasswordHash == "" || cfg.Admin.JWTSecret == "") {
		return nil, fmt.Errorf("invalid config: admin.password_hash and admin.jwt_secret are required with admin.username")
	}
	return cfg, nil
}

// LoadBrowser reads only the browser section; the worker needs no bot token.
func LoadBrowser(path string) (BrowserConfig, error) {
	_ = godotenv.Load()

	var wrapper struct {
		Browser BrowserConfig `yaml:"browser"`
	}
	wrapper.Browser = DefaultBrowser()
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return BrowserConfig{}, fmt.Errorf("open %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(b, &wrapper); err != nil {
			return BrowserConfig{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if v := os.Getenv("CHROME_PATH"); v != "" {
		wrapper.Browser.ExecPath = v
	}
	if err := validate.Struct(wrapper.Browser); err != nil {
		return BrowserConfig{}, fmt.Errorf("invalid browser config: %w", err)
	}
	return wrapper.Browser, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.Telegram.Mode, "TELEGRAM_MODE")
	setString(&cfg.Telegram.WebhookURL, "TELEGRAM_WEBHOOK_URL")
	setString(&cfg.Storage.DSN, "DATABASE_URL")
	setString(&cfg.Worker.Command, "WORKER_COMMAND")
	setString(&cfg.Browser.ExecPath, "CHROME_PATH")
	setString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.Admin.JWTSecret, "JWT_SECRET")
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
