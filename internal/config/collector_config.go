package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type CollectorConfig struct {
	APIURL               string        `mapstructure:"api_url"`
	APIKey               string        `mapstructure:"api_key"`
	DatasetID            string        `mapstructure:"dataset_id"`
	WebhookURL           string        `mapstructure:"webhook_url"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	PollInterval         time.Duration `mapstructure:"poll_interval"`
}

func (config CollectorConfig) validate() error {

	var missingFields []string

	if config.APIKey == "" {
		missingFields = append(missingFields, "api_key")
	}

	if config.DatasetID == "" {
		missingFields = append(missingFields, "dataset_id")
	}

	if config.WebhookURL == "" {
		missingFields = append(missingFields, "webhook_url")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	if config.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}

	if config.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}

	return nil
}

func (config CollectorConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("collector.api_key", "COLLECTOR_API_KEY"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("collector.dataset_id", "COLLECTOR_DATASET_ID"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("collector.webhook_url", "COLLECTOR_WEBHOOK_URL"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
