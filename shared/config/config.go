package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/prolearn/prolearn/shared/domain"
	"github.com/prolearn/prolearn/shared/validation"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	ListenAddr     string   `yaml:"listen_addr"`
	APIBaseURL     string   `yaml:"api_base_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	SecureCookies  bool     `yaml:"secure_cookies"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	PageSize int `yaml:"page_size"`

	MaxAttachments        int           `yaml:"max_attachments"`
	MaxImageSizeBytes     int64         `yaml:"max_image_size_bytes"`
	MaxVideoSizeBytes     int64         `yaml:"max_video_size_bytes"`
	MaxVideoDuration      time.Duration `yaml:"max_video_duration"`
	AllowedImageMimeTypes []string      `yaml:"allowed_image_mime_types"`
	AllowedVideoMimeTypes []string      `yaml:"allowed_video_mime_types"`

	EditorIdleTTL       time.Duration `yaml:"editor_idle_ttl"`
	EditorSweepInterval time.Duration `yaml:"editor_sweep_interval"`
	UploadsPerMinute    float64       `yaml:"uploads_per_minute"` // per user, editor uploads and submits combined

	DemoUser domain.User `yaml:"demo_user"`
}

type Private struct {
	JwtKey string        `yaml:"jwt_key"`
	JwtTTL time.Duration `yaml:"jwt_ttl"`
}

// Limits is the attachment policy derived from the public config.
func (p Public) Limits() validation.Limits {
	return validation.Limits{
		MaxFiles:         p.MaxAttachments,
		MaxImageBytes:    p.MaxImageSizeBytes,
		MaxVideoBytes:    p.MaxVideoSizeBytes,
		MaxVideoDuration: p.MaxVideoDuration,
	}
}

func (p Public) AllowedTypes() validation.AllowedTypes {
	return validation.AllowedTypes{Images: p.AllowedImageMimeTypes, Videos: p.AllowedVideoMimeTypes}
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Private.JwtTTL
}

// Default returns a config usable without any files, e.g. for the CLI and tests.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (s *Config) applyDefaults() {
	limits := validation.DefaultLimits()
	p := &s.Public
	if p.ListenAddr == "" {
		p.ListenAddr = ":8081"
	}
	if p.APIBaseURL == "" {
		p.APIBaseURL = "http://localhost:8080/api"
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.PageSize <= 0 {
		p.PageSize = 10
	}
	if p.MaxAttachments <= 0 {
		p.MaxAttachments = limits.MaxFiles
	}
	if p.MaxImageSizeBytes <= 0 {
		p.MaxImageSizeBytes = limits.MaxImageBytes
	}
	if p.MaxVideoSizeBytes <= 0 {
		p.MaxVideoSizeBytes = limits.MaxVideoBytes
	}
	if p.MaxVideoDuration <= 0 {
		p.MaxVideoDuration = limits.MaxVideoDuration
	}
	if len(p.AllowedImageMimeTypes) == 0 {
		p.AllowedImageMimeTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	if len(p.AllowedVideoMimeTypes) == 0 {
		p.AllowedVideoMimeTypes = []string{"video/mp4", "video/webm", "video/quicktime"}
	}
	if p.EditorIdleTTL <= 0 {
		p.EditorIdleTTL = 30 * time.Minute
	}
	if p.EditorSweepInterval <= 0 {
		p.EditorSweepInterval = time.Minute
	}
	if p.UploadsPerMinute <= 0 {
		p.UploadsPerMinute = 30
	}
	if p.DemoUser.Username == "" {
		p.DemoUser = domain.User{Username: "demouser", DisplayName: "Demo User"}
	}
	if s.Private.JwtTTL <= 0 {
		s.Private.JwtTTL = time.Hour
	}
}

func loadPath(configPath string, output any) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("can't read config file %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		return fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
	}
	return nil
}

// Load reads public.yaml and private.yaml from configFolder.
// JWT_SECRET stands in for a missing jwt_key.
func Load(configFolder string) (*Config, error) {
	var cfg Config
	if err := loadPath(path.Join(configFolder, "public.yaml"), &cfg.Public); err != nil {
		return nil, err
	}
	if err := loadPath(path.Join(configFolder, "private.yaml"), &cfg.Private); err != nil {
		return nil, err
	}
	if cfg.Private.JwtKey == "" {
		cfg.Private.JwtKey = os.Getenv("JWT_SECRET")
	}
	if cfg.Private.JwtKey == "" {
		return nil, fmt.Errorf("jwt_key is required in private.yaml or JWT_SECRET")
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}
