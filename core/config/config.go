package config

import (
	"reflect"
	"strings"

	"arxml-merger/core/database"
	"arxml-merger/core/logger"
	"arxml-merger/core/server"
	"arxml-merger/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the artifact archive (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the merge-job history database.
	Database database.Config `mapstructure:"database"`
	// Merge holds the default merge engine settings.
	Merge MergeSettings `mapstructure:"merge"`
}

// MergeSettings configures merge engine defaults for the CLI and web layers.
// The engine itself receives an explicit Options value; these settings only
// say how to build it.
type MergeSettings struct {
	// Strategy is the default conflict resolution strategy.
	Strategy string `mapstructure:"strategy" default:"conservative"`
	// RulesFile is the path of the JSON rule set for the rule_based strategy.
	RulesFile string `mapstructure:"rules_file" default:""`
	// ReferencePatterns is a comma-separated list of reference name suffixes;
	// empty keeps the built-in ARXML conventions.
	ReferencePatterns string `mapstructure:"reference_patterns" default:""`
}

// Patterns splits the configured reference suffixes; empty input yields nil
// so the engine falls back to its defaults.
func (m MergeSettings) Patterns() []string {
	if strings.TrimSpace(m.ReferencePatterns) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(m.ReferencePatterns, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
