package repositories

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

// EnsureSnapshotIndex creates the lookup index the panel relies on. The
// warehouse table itself is owned by the ingestion webhook, not by us.
func (c *DbContext) EnsureSnapshotIndex(table string) error {
	if err := c.DB.Exec(fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_%s_snapshot_id ON %s (snapshot_id)", table, table)).
		Error; err != nil {
		return fmt.Errorf("failed to create snapshot index: %w", err)
	}
	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
