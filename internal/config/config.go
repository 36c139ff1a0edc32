// Package config provides configuration loading, validation, and defaults
// for the edubot application. Values come from built-in defaults, an optional
// YAML file and EDUBOT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override file values,
// e.g. EDUBOT_TELEGRAM_TOKEN or EDUBOT_GEMINI_API_KEY.
const EnvPrefix = "EDUBOT"

// ErrConfiguration wraps every error returned by LoadConfig.
var ErrConfiguration = errors.New("configuration error")

// Config is the root configuration of the application.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Memory    MemoryConfig    `mapstructure:"memory"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls the slog handler.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials. BotInfo is filled at runtime from getMe.
type TelegramConfig struct {
	Token       string       `mapstructure:"token"         validate:"required"`
	AdminUserID int64        `mapstructure:"admin_user_id" validate:"gte=0"`
	BotInfo     *models.User `mapstructure:"-"`
}

// GeminiConfig configures the text-generation service.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"             validate:"required"`
	ModelName         string  `mapstructure:"model_name"          validate:"required"`
	Temperature       float32 `mapstructure:"temperature"         validate:"min=0,max=2"`
	SystemInstruction string  `mapstructure:"system_instruction"`
	MaxRetries        int     `mapstructure:"max_retries"         validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=60"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path           string        `mapstructure:"path"            validate:"required"`
	OpTimeout      time.Duration `mapstructure:"op_timeout"      validate:"min=100ms,max=5m"`
	HistoryRetries int           `mapstructure:"history_retries" validate:"min=1,max=10"`
}

// MemoryConfig configures the per-user conversation memory.
type MemoryConfig struct {
	ShortTermCapacity int           `mapstructure:"short_term_capacity" validate:"min=2,max=200"`
	ShortWindow       int           `mapstructure:"short_window"        validate:"min=1,max=200"`
	FactWindow        int           `mapstructure:"fact_window"         validate:"min=1,max=20"`
	TruncateRunes     int           `mapstructure:"truncate_runes"      validate:"min=10,max=2000"`
	Extractor         string        `mapstructure:"extractor"           validate:"oneof=pattern delegated"`
	ExtractTimeout    time.Duration `mapstructure:"extract_timeout"     validate:"min=1s,max=5m"`
	IdleTTL           time.Duration `mapstructure:"idle_ttl"            validate:"min=0"`
}

// EngineConfig configures the orchestration pipeline.
type EngineConfig struct {
	GenerateTimeout  time.Duration `mapstructure:"generate_timeout"   validate:"min=1s,max=10m"`
	PersistTimeout   time.Duration `mapstructure:"persist_timeout"    validate:"min=100ms,max=5m"`
	ExamHistoryLimit int           `mapstructure:"exam_history_limit" validate:"min=0,max=50"`
}

// SchedulerConfig lists the scheduled tasks by registry name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a task and sets its cron schedule (seconds field included).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig contains every user-facing text the bot sends on its own.
type MessagesConfig struct {
	Welcome           string `mapstructure:"welcome"            validate:"required"`
	WelcomeNewUser    string `mapstructure:"welcome_new_user"   validate:"required"`
	Help              string `mapstructure:"help"               validate:"required"`
	ProfileMissing    string `mapstructure:"profile_missing"    validate:"required"`
	ProfileIncomplete string `mapstructure:"profile_incomplete" validate:"required"`
	ProfileRequired   string `mapstructure:"profile_required"   validate:"required"`
	ProfileStart      string `mapstructure:"profile_start"      validate:"required"`
	ProfileCancelled  string `mapstructure:"profile_cancelled"  validate:"required"`
	ProfileSaved      string `mapstructure:"profile_saved"      validate:"required"`
	ProfileRetry      string `mapstructure:"profile_retry"      validate:"required"`
	PlanPrompt        string `mapstructure:"plan_prompt"        validate:"required"`
	AnalysisPrompt    string `mapstructure:"analysis_prompt"    validate:"required"`
	AnalysisEmpty     string `mapstructure:"analysis_empty"     validate:"required"`
	Cancelled         string `mapstructure:"cancelled"          validate:"required"`
	Apology           string `mapstructure:"apology"            validate:"required"`
	EmptyReply        string `mapstructure:"empty_reply"        validate:"required"`
	Unauthorized      string `mapstructure:"unauthorized"       validate:"required"`
	ResetConfirm      string `mapstructure:"reset_confirm"      validate:"required"`
	ResetError        string `mapstructure:"reset_error"        validate:"required"`
}

// LoadConfig reads the configuration file at path (a missing file is not an
// error), applies EDUBOT_* environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read %s: %w", ErrConfiguration, path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrConfiguration, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	return validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
}
