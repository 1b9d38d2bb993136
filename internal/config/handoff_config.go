package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type HandoffConfig struct {
	CVGeneratorURL string `mapstructure:"cv_generator_url"`
}

func (config HandoffConfig) validate() error {
	if config.CVGeneratorURL == "" {
		return fmt.Errorf("missing variable: cv_generator_url")
	}
	return nil
}

func (config HandoffConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("handoff.cv_generator_url", "CV_GENERATOR_URL")
}
