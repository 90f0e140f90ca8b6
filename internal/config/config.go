package config

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrInvalidConfig is returned for values that cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the settings of the change report tool.
type Config struct {
	Database DatabaseConfig
	Logging  LoggingConfig
	Report   ReportConfig
}

// DatabaseConfig locates the sqlite catalog database.
type DatabaseConfig struct {
	Path string
}

// LoggingConfig sets the minimum log level: debug, info, warn or error.
type LoggingConfig struct {
	Level string
}

// ReportConfig controls how changes are rendered.
type ReportConfig struct {
	DateFormats    DateFormats
	BooleanLabels  BooleanLabels
	FloatPrecision int
	AcceptedFields []AcceptedFields
}

// DateFormats are Go time layouts per temporal kind.
type DateFormats struct {
	Date     string `mapstructure:"date"`
	Time     string `mapstructure:"time"`
	DateTime string `mapstructure:"datetime"`
}

// BooleanLabels are the rendered values of true and false.
type BooleanLabels struct {
	Checked   string `mapstructure:"checked"`
	Unchecked string `mapstructure:"unchecked"`
}

// AcceptedFields restricts the reported paths of one root entity type.
type AcceptedFields struct {
	Type   string   `mapstructure:"type"`
	Fields []string `mapstructure:"fields"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: "catalog.db"},
		Logging:  LoggingConfig{Level: "info"},
		Report: ReportConfig{
			DateFormats: DateFormats{
				Date:     "2006-01-02",
				Time:     "15:04:05",
				DateTime: "2006-01-02 15:04:05",
			},
			BooleanLabels:  BooleanLabels{Checked: "Checked", Unchecked: "Unchecked"},
			FloatPrecision: 2,
		},
	}
}

// SlogLevel parses the configured level.
func (c LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: logging level %q", ErrInvalidConfig, c.Level)
	}
	return level, nil
}

// AcceptedFieldsByType indexes the accepted field lists by entity type.
func (c ReportConfig) AcceptedFieldsByType() map[string][]string {
	byType := make(map[string][]string, len(c.AcceptedFields))
	for _, accepted := range c.AcceptedFields {
		byType[accepted.Type] = append(byType[accepted.Type], accepted.Fields...)
	}
	return byType
}

// Validate checks the values that have no usable fallback.
func (c Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database path is empty", ErrInvalidConfig)
	}
	if c.Report.FloatPrecision < 0 {
		return fmt.Errorf("%w: float precision %d", ErrInvalidConfig, c.Report.FloatPrecision)
	}
	for _, accepted := range c.Report.AcceptedFields {
		if accepted.Type == "" {
			return fmt.Errorf("%w: accepted fields without type", ErrInvalidConfig)
		}
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	return nil
}
