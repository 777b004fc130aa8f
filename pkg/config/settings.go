// Package config loads orchestrator settings from forge.yaml, FORGE_*
// environment variables and built-in defaults, in that order of precedence
// (highest last written wins per viper's usual rules: env over file over
// defaults).
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Settings tune the orchestrator itself; project decisions stay interactive.
type Settings struct {
	// StartTimeout bounds the local datastore start, which may pull images
	// on first run.
	StartTimeout time.Duration `mapstructure:"startTimeout"`
	// InstallTimeout bounds dependency installation.
	InstallTimeout time.Duration `mapstructure:"installTimeout"`
	// AssumeDefaults answers every prompt with its default, for CI smoke
	// runs of the pipeline.
	AssumeDefaults bool `mapstructure:"assumeDefaults"`
}

// Load reads settings for a project root. A missing forge.yaml is fine; a
// malformed one is an error the operator should see.
func Load(root string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("forge")
	v.SetConfigType("yaml")
	v.AddConfigPath(root)

	v.SetEnvPrefix("FORGE")
	v.AutomaticEnv()

	v.SetDefault("startTimeout", 10*time.Minute)
	v.SetDefault("installTimeout", 10*time.Minute)
	v.SetDefault("assumeDefaults", false)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
