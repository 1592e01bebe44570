// Package config handles loading and validating the kisanvani configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config is the root configuration for the kisanvani daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Language   LanguageConfig   `mapstructure:"language"`
	Completion CompletionConfig `mapstructure:"completion"`
	STT        STTConfig        `mapstructure:"stt"`
	TTS        TTSConfig        `mapstructure:"tts"`
	Audio      AudioConfig      `mapstructure:"audio"`
	Extract    ExtractConfig    `mapstructure:"extract"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Upload     UploadConfig     `mapstructure:"upload"`
	History    HistoryConfig    `mapstructure:"history"`
	Snapshot   SnapshotConfig   `mapstructure:"snapshot"`
	Privacy    PrivacyConfig    `mapstructure:"privacy"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	HTTPPort   int `mapstructure:"http_port"`
	GRPCPort   int `mapstructure:"grpc_port"`
	HealthPort int `mapstructure:"health_port"`
	// PublicBaseURL prefixes artifact URLs returned to clients. Empty means
	// relative URLs.
	PublicBaseURL string     `mapstructure:"public_base_url"`
	GRPC          GRPCConfig `mapstructure:"grpc"`
}

// GRPCConfig toggles the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LanguageConfig sets the speech and response languages (ISO-639-1).
type LanguageConfig struct {
	Primary  string `mapstructure:"primary"`
	Fallback string `mapstructure:"fallback"`
	Response string `mapstructure:"response"`
}

// CompletionConfig selects and configures the language model backend.
type CompletionConfig struct {
	Backend string        `mapstructure:"backend"` // "gemini", "openai" or "mock"
	Timeout time.Duration `mapstructure:"timeout"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens"`
}

// OpenAIConfig holds settings for an OpenAI-compatible chat completions API.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// STTConfig selects and configures the speech-to-text backend.
type STTConfig struct {
	Backend  string         `mapstructure:"backend"` // "deepgram" or "whisper"
	Timeout  time.Duration  `mapstructure:"timeout"`
	Deepgram DeepgramConfig `mapstructure:"deepgram"`
	Whisper  WhisperConfig  `mapstructure:"whisper"`
}

// DeepgramConfig holds Deepgram prerecorded API settings.
type DeepgramConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// WhisperConfig targets an OpenAI-compatible /v1/audio/transcriptions
// endpoint, hosted or self-hosted.
type WhisperConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	Backend    string           `mapstructure:"backend"` // "piper" or "elevenlabs"
	Timeout    time.Duration    `mapstructure:"timeout"`
	Piper      PiperConfig      `mapstructure:"piper"`
	ElevenLabs ElevenLabsConfig `mapstructure:"elevenlabs"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// Endpoints maps language codes to per-language Wyoming servers; Endpoint is
// the fallback for languages without one.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`
	Endpoints map[string]string `mapstructure:"endpoints"`
	Voices    map[string]string `mapstructure:"voices"`
}

// ElevenLabsConfig holds ElevenLabs stream-input settings.
type ElevenLabsConfig struct {
	APIKey       string `mapstructure:"api_key"`
	VoiceID      string `mapstructure:"voice_id"`
	ModelID      string `mapstructure:"model_id"`
	OutputFormat string `mapstructure:"output_format"`
	BaseURL      string `mapstructure:"base_url"`
}

// AudioConfig controls audio normalization.
type AudioConfig struct {
	FFmpegPath string `mapstructure:"ffmpeg_path"`
	MaxBytes   int64  `mapstructure:"max_bytes"`
}

// ExtractConfig controls remote document fetching.
type ExtractConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxChars  int           `mapstructure:"max_chars"`
	MaxBytes  int64         `mapstructure:"max_bytes"`
	UserAgent string        `mapstructure:"user_agent"`
}

// StorageConfig locates artifact directories and their retention.
type StorageConfig struct {
	AudioDir      string        `mapstructure:"audio_dir"`
	UploadDir     string        `mapstructure:"upload_dir"`
	Retention     time.Duration `mapstructure:"retention"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// UploadConfig restricts raw audio uploads.
type UploadConfig struct {
	AllowedExtension string `mapstructure:"allowed_extension"`
}

// HistoryConfig sizes the prompt context window.
type HistoryConfig struct {
	Window int `mapstructure:"window"`
}

// SnapshotConfig points at an optional YAML domain snapshot.
type SnapshotConfig struct {
	File string `mapstructure:"file"`
}

// PrivacyConfig toggles masking of personal data in logs.
type PrivacyConfig struct {
	RedactPII bool `mapstructure:"redact_pii"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.public_base_url", "")
	v.SetDefault("server.grpc.enabled", true)
	v.SetDefault("language.primary", "ml")
	v.SetDefault("language.fallback", "en")
	v.SetDefault("language.response", "ml")
	v.SetDefault("completion.backend", "gemini")
	v.SetDefault("completion.timeout", "30s")
	v.SetDefault("completion.gemini.api_key", "${GEMINI_API_KEY}")
	v.SetDefault("completion.gemini.model", "gemini-2.0-flash")
	v.SetDefault("completion.gemini.temperature", 0.4)
	v.SetDefault("completion.gemini.max_output_tokens", 256)
	v.SetDefault("completion.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("completion.openai.model", "gpt-4o-mini")
	v.SetDefault("completion.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("stt.backend", "deepgram")
	v.SetDefault("stt.timeout", "30s")
	v.SetDefault("stt.deepgram.api_key", "${DEEPGRAM_API_KEY}")
	v.SetDefault("stt.deepgram.model", "nova-2")
	v.SetDefault("stt.whisper.endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("stt.whisper.api_key", "")
	v.SetDefault("stt.whisper.model", "whisper-1")
	v.SetDefault("tts.enabled", true)
	v.SetDefault("tts.backend", "piper")
	v.SetDefault("tts.timeout", "30s")
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("tts.elevenlabs.api_key", "${ELEVENLABS_API_KEY}")
	v.SetDefault("tts.elevenlabs.model_id", "eleven_multilingual_v2")
	v.SetDefault("tts.elevenlabs.output_format", "mp3_44100_128")
	v.SetDefault("tts.elevenlabs.base_url", "wss://api.elevenlabs.io")
	v.SetDefault("audio.ffmpeg_path", "ffmpeg")
	v.SetDefault("audio.max_bytes", 25<<20)
	v.SetDefault("extract.timeout", "15s")
	v.SetDefault("extract.max_chars", 5000)
	v.SetDefault("extract.max_bytes", 5<<20)
	v.SetDefault("extract.user_agent", "Mozilla/5.0 (compatible; kisanvani/1.0)")
	v.SetDefault("storage.audio_dir", "./data/audio")
	v.SetDefault("storage.upload_dir", "./data/uploads")
	v.SetDefault("storage.retention", "0s")
	v.SetDefault("storage.sweep_interval", "1h")
	v.SetDefault("upload.allowed_extension", ".mp3")
	v.SetDefault("history.window", 5)
	v.SetDefault("snapshot.file", "")
	v.SetDefault("privacy.redact_pii", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./kisanvani.yaml, ./configs/kisanvani.yaml, /etc/kisanvani/kisanvani.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("kisanvani")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/kisanvani")
	}

	// Environment variables: KISANVANI_STT_BACKEND, KISANVANI_LANGUAGE_PRIMARY, etc.
	v.SetEnvPrefix("KISANVANI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in secrets (e.g., "${GEMINI_API_KEY}").
	cfg.Completion.Gemini.APIKey = resolveEnvRef(cfg.Completion.Gemini.APIKey)
	cfg.Completion.OpenAI.APIKey = resolveEnvRef(cfg.Completion.OpenAI.APIKey)
	cfg.STT.Deepgram.APIKey = resolveEnvRef(cfg.STT.Deepgram.APIKey)
	cfg.STT.Whisper.APIKey = resolveEnvRef(cfg.STT.Whisper.APIKey)
	cfg.TTS.ElevenLabs.APIKey = resolveEnvRef(cfg.TTS.ElevenLabs.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the daemon cannot start with.
func (c *Config) Validate() error {
	switch c.Completion.Backend {
	case "gemini", "openai", "mock":
	default:
		return fmt.Errorf("unknown completion backend: %q", c.Completion.Backend)
	}
	switch c.STT.Backend {
	case "deepgram", "whisper":
	default:
		return fmt.Errorf("unknown stt backend: %q", c.STT.Backend)
	}
	if c.TTS.Enabled {
		switch c.TTS.Backend {
		case "piper", "elevenlabs":
		default:
			return fmt.Errorf("unknown tts backend: %q", c.TTS.Backend)
		}
	}
	if c.Language.Primary == "" || c.Language.Response == "" {
		return fmt.Errorf("language.primary and language.response are required")
	}
	if !strings.HasPrefix(c.Upload.AllowedExtension, ".") {
		return fmt.Errorf("upload.allowed_extension must start with a dot: %q", c.Upload.AllowedExtension)
	}
	if c.History.Window <= 0 {
		return fmt.Errorf("history.window must be positive, got %d", c.History.Window)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
// An unset variable resolves to the empty string.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
