package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/smartcv/searchpanel/internal/entities"
	"gorm.io/gorm"
)

// ErrQuery marks a warehouse read that failed server-side, as opposed to a
// read that succeeded with zero matching rows.
var ErrQuery = errors.New("warehouse query failed")

// DefaultFetchLimit caps how many rows a single fetch returns. The original
// panel fixed this at 25 with no UI control; it stays a system constant.
const DefaultFetchLimit = 25

type Results struct {
	db              *gorm.DB
	table           string
	timestampColumn string
}

func NewResultsRepository(db *gorm.DB, table string, timestampColumn string) *Results {
	return &Results{db: db, table: table, timestampColumn: timestampColumn}
}

// FetchBySnapshot reads up to limit rows collected for one snapshot. The
// identifier is always a bound parameter. Zero rows is a valid, empty result.
func (repo *Results) FetchBySnapshot(ctx context.Context, snapshotID string, limit int) (*entities.ResultSet, error) {

	if limit <= 0 {
		limit = DefaultFetchLimit
	}

	rows, err := repo.db.WithContext(ctx).
		Table(repo.table).
		Where("snapshot_id = ?", snapshotID).
		Limit(limit).
		Rows()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	resultSet := &entities.ResultSet{SnapshotID: snapshotID, Columns: columns}

	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQuery, err)
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			if raw, ok := values[i].([]byte); ok {
				row[column] = string(raw)
			} else {
				row[column] = values[i]
			}
		}
		resultSet.Rows = append(resultSet.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	return resultSet, nil
}

// RemoveOldRows drops rows whose ingestion timestamp is before the cutoff.
func (repo *Results) RemoveOldRows(ctx context.Context, before time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).Exec(
		fmt.Sprintf("DELETE FROM %s WHERE %s < ?", repo.table, repo.timestampColumn), before)
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %v", ErrQuery, result.Error)
	}
	return result.RowsAffected, nil
}
