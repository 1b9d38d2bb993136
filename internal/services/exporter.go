package services

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/samber/lo"
	"github.com/smartcv/searchpanel/internal/entities"
)

func ExportFilename(snapshotID string) string {
	return "linkedin_jobs_" + snapshotID + ".csv"
}

// ToCSV renders a ResultSet as UTF-8 CSV: one header row in the original
// column order, no index column.
func ToCSV(resultSet *entities.ResultSet) ([]byte, error) {

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(resultSet.Columns); err != nil {
		return nil, err
	}

	for _, row := range resultSet.Rows {
		record := lo.Map(resultSet.Columns, func(column string, _ int) string {
			return cellToString(row[column])
		})
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func cellToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
