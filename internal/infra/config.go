package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv                string
	Port                  string
	DatabaseURL           string
	StoragePath           string
	GeminiAPIKey          string
	GeminiModel           string
	GeminiBaseURL         string
	GeminiTimeout         time.Duration
	MaxVideoSeconds       float64
	FrameCount            int
	JPEGQuality           int
	SamplerStrict         bool
	FFmpegPath            string
	FFprobeTimeout        time.Duration
	MaxUploadBytes        int64
	GenerateTimeout       time.Duration
	CORSAllowedOrigins    []string
	DefaultLocale         string
	HTTPReadTimeout       time.Duration
	HTTPWriteTimeout      time.Duration
	HTTPIdleTimeout       time.Duration
	ShutdownGraceDuration time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// A missing GEMINI_API_KEY is not an error; requests fail when they are attempted.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		StoragePath:           getEnv("STORAGE_PATH", "./data"),
		GeminiAPIKey:          strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiTimeout:         time.Second * time.Duration(getEnvInt("GEMINI_TIMEOUT_SECONDS", 60)),
		MaxVideoSeconds:       getEnvFloat("MAX_VIDEO_SECONDS", 10.5),
		FrameCount:            getEnvInt("FRAME_COUNT", 8),
		JPEGQuality:           getEnvInt("JPEG_QUALITY", 80),
		SamplerStrict:         getEnvBool("SAMPLER_STRICT", false),
		FFmpegPath:            os.Getenv("FFMPEG_PATH"),
		FFprobeTimeout:        time.Second * time.Duration(getEnvInt("FFPROBE_TIMEOUT_SECONDS", 10)),
		MaxUploadBytes:        int64(getEnvInt("MAX_UPLOAD_MB", 100)) << 20,
		GenerateTimeout:       time.Second * time.Duration(getEnvInt("GENERATE_TIMEOUT_SECONDS", 120)),
		CORSAllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		DefaultLocale:         getEnv("DEFAULT_LOCALE", "en"),
		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:      time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:       time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		ShutdownGraceDuration: time.Second * time.Duration(getEnvInt("SHUTDOWN_GRACE_SECONDS", 10)),
	}

	if cfg.FrameCount < 2 {
		return nil, fmt.Errorf("FRAME_COUNT must be at least 2, got %d", cfg.FrameCount)
	}
	if cfg.MaxVideoSeconds <= 0 {
		return nil, fmt.Errorf("MAX_VIDEO_SECONDS must be positive")
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		return nil, fmt.Errorf("JPEG_QUALITY must be between 1 and 100, got %d", cfg.JPEGQuality)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if cfg.GenerateTimeout <= 0 {
		return nil, fmt.Errorf("GENERATE_TIMEOUT_SECONDS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
