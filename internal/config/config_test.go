package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {

	os.Setenv("CONFIG_PATH", "../../configs/config.yaml")
	os.Setenv("COLLECTOR_API_KEY", "overrideKey")
	os.Setenv("COLLECTOR_DATASET_ID", "gd_override")
	os.Setenv("COLLECTOR_WEBHOOK_URL", "https://hook.example/override")
	os.Setenv("WAREHOUSE_CONNECTION_STRING", "override.db")
	os.Setenv("CV_GENERATOR_URL", "https://cv.example")
	os.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Get()

	assert.Equal(t, "overrideKey", cfg.Collector.APIKey)
	assert.Equal(t, "gd_override", cfg.Collector.DatasetID)
	assert.Equal(t, "https://hook.example/override", cfg.Collector.WebhookURL)
	assert.Equal(t, "override.db", cfg.Warehouse.ConnectionString)
	assert.Equal(t, "https://cv.example", cfg.Handoff.CVGeneratorURL)
	assert.Equal(t, LevelDebug, cfg.Logger.LogLevel)
}

func Test_Config_DefaultsAreApplied(t *testing.T) {

	os.Setenv("CONFIG_PATH", "../../configs/config.yaml")
	os.Setenv("COLLECTOR_API_KEY", "someKey")
	os.Setenv("WAREHOUSE_CONNECTION_STRING", "warehouse.db")

	cfg := Get()

	assert.Equal(t, "linkedin_jobs", cfg.Warehouse.Table)
	assert.Equal(t, "collected_at", cfg.Warehouse.TimestampColumn)
	assert.Greater(t, cfg.Warehouse.RetentionDays, 0)
	assert.Positive(t, cfg.Collector.RequestTimeout)
	assert.Positive(t, cfg.Collector.PollInterval)
	assert.Positive(t, cfg.Server.SessionTTL)
}
