package config

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Server    ServerConfig    `mapstructure:"server"`
	Collector CollectorConfig `mapstructure:"collector"`
	Warehouse WarehouseConfig `mapstructure:"warehouse"`
	Handoff   HandoffConfig   `mapstructure:"handoff"`
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	if value, ok := os.LookupEnv("CONFIG_PATH"); ok {
		configFile = value
	}

	config, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	viper.SetConfigFile(file)
	viper.AutomaticEnv()

	setDefaults()

	err := bindEnvironmentVariables()
	if err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("logger.log_level", "INFO")
	viper.SetDefault("logger.output_file", "./logs/errors.log")
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.metrics_port", 9090)
	viper.SetDefault("server.cors_origin", "*")
	viper.SetDefault("server.session_ttl", "2h")
	viper.SetDefault("collector.api_url", "https://api.brightdata.com/datasets/v3")
	viper.SetDefault("collector.max_requests_per_second", 5)
	viper.SetDefault("collector.request_timeout", "30s")
	viper.SetDefault("collector.poll_interval", "30s")
	viper.SetDefault("warehouse.table", "linkedin_jobs")
	viper.SetDefault("warehouse.timestamp_column", "collected_at")
	viper.SetDefault("warehouse.retention_days", 30)
}

func bindEnvironmentVariables() error {
	var errs []error

	server, collector, warehouse := ServerConfig{}, CollectorConfig{}, WarehouseConfig{}
	handoff, logger := HandoffConfig{}, LoggerConfig{}

	if err := server.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("ServerConfig: %w", err))
	}

	if err := collector.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("CollectorConfig: %w", err))
	}

	if err := warehouse.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("WarehouseConfig: %w", err))
	}

	if err := handoff.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("HandoffConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if err := config.Server.validate(); err != nil {
		errs = append(errs, fmt.Errorf("ServerConfig: %w", err))
	}

	if err := config.Collector.validate(); err != nil {
		errs = append(errs, fmt.Errorf("CollectorConfig: %w", err))
	}

	if err := config.Warehouse.validate(); err != nil {
		errs = append(errs, fmt.Errorf("WarehouseConfig: %w", err))
	}

	if err := config.Handoff.validate(); err != nil {
		errs = append(errs, fmt.Errorf("HandoffConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func createMultiError(errs []error) error {
	return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
}
