package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. CHANGES_DATABASE_PATH.
const EnvPrefix = "CHANGES"

// Load reads the configuration file at path on top of Default. An empty path
// looks for an optional config.yaml in the working directory. Environment
// variables override both.
func Load(path string) (Config, error) {
	// Start with default
	cfg := Default()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"database.path",
		"logging.level",
		"report.date_formats.date",
		"report.date_formats.time",
		"report.date_formats.datetime",
		"report.boolean_labels.checked",
		"report.boolean_labels.unchecked",
		"report.float_precision",
	} {
		if err := v.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Override defaults if values exist
	if v.IsSet("database.path") {
		cfg.Database.Path = v.GetString("database.path")
	}
	if v.IsSet("logging.level") {
		cfg.Logging.Level = v.GetString("logging.level")
	}
	if v.IsSet("report.date_formats.date") {
		cfg.Report.DateFormats.Date = v.GetString("report.date_formats.date")
	}
	if v.IsSet("report.date_formats.time") {
		cfg.Report.DateFormats.Time = v.GetString("report.date_formats.time")
	}
	if v.IsSet("report.date_formats.datetime") {
		cfg.Report.DateFormats.DateTime = v.GetString("report.date_formats.datetime")
	}
	if v.IsSet("report.boolean_labels.checked") {
		cfg.Report.BooleanLabels.Checked = v.GetString("report.boolean_labels.checked")
	}
	if v.IsSet("report.boolean_labels.unchecked") {
		cfg.Report.BooleanLabels.Unchecked = v.GetString("report.boolean_labels.unchecked")
	}
	if v.IsSet("report.float_precision") {
		cfg.Report.FloatPrecision = v.GetInt("report.float_precision")
	}
	if v.IsSet("report.accepted_fields") {
		if err := v.UnmarshalKey("report.accepted_fields", &cfg.Report.AcceptedFields); err != nil {
			return cfg, fmt.Errorf("failed to decode accepted fields: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
