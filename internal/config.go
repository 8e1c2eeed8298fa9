package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	BackendNative   = "native"
	BackendExifTool = "exiftool"
)

type Config struct {
	Workers           int           `mapstructure:"workers" validate:"gte=1,lte=256"`
	ImageExt          []string      `mapstructure:"image_extensions" validate:"required,dive,oneof=.jpg .jpeg .png .JPG .JPEG .PNG"`
	JPEGBackend       string        `mapstructure:"jpeg_backend" validate:"oneof=native exiftool"`
	CreateMissingExif bool          `mapstructure:"create_missing_exif"`
	DryRun            bool          `mapstructure:"dry_run"`
	JournalDir        string        `mapstructure:"journal_dir"`
	LogLevel          string        `mapstructure:"log_level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	LogFile           string        `mapstructure:"log_file"`
	Color             string        `mapstructure:"color" validate:"oneof=auto always never"`
	SettleDelay       time.Duration `mapstructure:"watch_settle_delay" validate:"gt=0"`
}

// validate is the singleton validator instance
var validate = validator.New()

// setDefaults registers the default of every key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", 8)
	v.SetDefault("image_extensions", DefaultImageExtensions)
	v.SetDefault("jpeg_backend", BackendNative)
	v.SetDefault("create_missing_exif", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("journal_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("color", "auto")
	v.SetDefault("watch_settle_delay", "2s")
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// LoadConfig reads backdate.toml from path, or from the user config dir when
// path is empty, then applies BACKDATE_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("backdate")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to find user config dir: %w", err)
		}
		v.SetConfigName("backdate")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(configDir, "backdate"))
	}

	if err := v.ReadInConfig(); err != nil {
		// Missing default config file is fine, an explicit one is not.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the rules tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	seen := make(map[string]bool)
	for i, ext := range c.ImageExt {
		ext = strings.ToLower(ext)
		if seen[ext] {
			return fmt.Errorf("image_extensions[%d]: duplicate extension %q", i, ext)
		}
		seen[ext] = true
	}
	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
