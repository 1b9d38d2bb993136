package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type WarehouseConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	Table            string `mapstructure:"table"`
	TimestampColumn  string `mapstructure:"timestamp_column"`
	RetentionDays    int    `mapstructure:"retention_days"`
}

func (config WarehouseConfig) validate() error {

	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: warehouse connection string")
	}

	if config.Table == "" {
		return fmt.Errorf("missing variable: warehouse table")
	}

	if config.RetentionDays <= 0 {
		return fmt.Errorf("retention_days must be greater than zero")
	}

	return nil
}

func (config WarehouseConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("warehouse.connection_string", "WAREHOUSE_CONNECTION_STRING")
}
